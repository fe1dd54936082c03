// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package inventory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/stockroom/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrQuantityTooLarge  = fmt.Errorf("quantity must not exceed %d", MaxQuantity)
	ErrUnknownFilter     = errors.New("unknown filter")
)

// Item list filters
const (
	FilterAll      = "all"
	FilterLowStock = "low_stock"
)

// MaxQuantity bounds stock levels and movement quantities; the columns are 32-bit on postgres
const MaxQuantity = math.MaxInt32

var hundred = decimal.NewFromInt(100)

// Status classifies an item's stock level
func Status(item models.Item) string {
	if item.Stock == 0 {
		return models.StockOut
	}
	if item.Stock <= item.MinStock {
		return models.StockLow
	}
	return models.StockOK
}

// IsLow reports whether an item is at or below its minimum. Out of stock counts as low.
func IsLow(item models.Item) bool {
	return item.Stock <= item.MinStock
}

// LowStock returns the low items in input order
func LowStock(items []models.Item) []models.Item {
	low := []models.Item{}
	for _, it := range items {
		if IsLow(it) {
			low = append(low, it)
		}
	}
	return low
}

// Filter applies a case-insensitive name search followed by a kind or low-stock filter.
// An empty filter means "all".
func Filter(items []models.Item, query, filter string) ([]models.Item, error) {
	if filter == "" {
		filter = FilterAll
	}
	if filter != FilterAll && filter != FilterLowStock && !models.IsItemKind(filter) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Item{}
	for _, it := range items {
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		switch filter {
		case FilterAll:
		case FilterLowStock:
			if !IsLow(it) {
				continue
			}
		default:
			if it.Kind != filter {
				continue
			}
		}
		out = append(out, it)
	}
	return out, nil
}

// WithStatus decorates items with their stock status
func WithStatus(items []models.Item) []models.ItemWithStatus {
	out := make([]models.ItemWithStatus, 0, len(items))
	for _, it := range items {
		out = append(out, models.ItemWithStatus{Item: it, Status: Status(it)})
	}
	return out
}

// Value is stock × price
func Value(item models.Item) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Stock)))
}

// Share returns value as a percentage of total, rounded to one decimal place
func Share(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(hundred).Round(1)
}

// Valuate computes per-item asset values and the aggregate summary.
// Lines are ordered by price descending, then name.
func Valuate(items []models.Item) models.AssetReport {
	lines := make([]models.AssetLine, 0, len(items))
	total := decimal.Zero
	raw := decimal.Zero
	finished := decimal.Zero

	for _, it := range items {
		v := Value(it)
		total = total.Add(v)
		switch it.Kind {
		case models.KindRawMaterial:
			raw = raw.Add(v)
		case models.KindFinishedGood:
			finished = finished.Add(v)
		}
		lines = append(lines, models.AssetLine{
			ItemID: it.ID,
			Name:   it.Name,
			Kind:   it.Kind,
			Stock:  it.Stock,
			Price:  it.Price,
			Value:  v,
		})
	}

	for i := range lines {
		lines[i].Share = Share(lines[i].Value, total)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if c := lines[i].Price.Cmp(lines[j].Price); c != 0 {
			return c > 0
		}
		return lines[i].Name < lines[j].Name
	})

	return models.AssetReport{
		Summary: models.AssetSummary{
			TotalAssets:   total,
			RawMaterial:   raw,
			FinishedGoods: finished,
			RawShare:      Share(raw, total),
			FinishedShare: Share(finished, total),
			TotalItems:    len(items),
		},
		Lines: lines,
	}
}

// Overview builds the dashboard summary of the current stock
func Overview(items []models.Item) models.InventoryOverview {
	ov := models.InventoryOverview{
		TotalItems: len(items),
		TotalValue: decimal.Zero,
		LowStock:   LowStock(items),
	}
	for _, it := range items {
		switch it.Kind {
		case models.KindRawMaterial:
			ov.RawMaterials++
		case models.KindFinishedGood:
			ov.FinishedGoods++
		}
		ov.TotalUnits += it.Stock
		ov.TotalValue = ov.TotalValue.Add(Value(it))
		if it.Stock == 0 {
			ov.OutOfStock++
		}
	}
	ov.LowStockCount = len(ov.LowStock)
	return ov
}

// IsOutbound reports whether a transaction kind removes stock
func IsOutbound(kind string) bool {
	return kind != models.TxnInbound && models.IsTransactionKind(kind)
}

// Apply returns the stock level after a transaction of the given kind
func Apply(stock int, kind string, qty int) (int, error) {
	if qty <= 0 {
		return stock, ErrInvalidQuantity
	}
	if qty > MaxQuantity {
		return stock, ErrQuantityTooLarge
	}
	if !models.IsTransactionKind(kind) {
		return stock, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if kind == models.TxnInbound {
		if stock > MaxQuantity-qty {
			return stock, fmt.Errorf("%w: stock %d plus %d", ErrQuantityTooLarge, stock, qty)
		}
		return stock + qty, nil
	}
	if qty > stock {
		return stock, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, stock, qty)
	}
	return stock - qty, nil
}

// TransactionTotals sums quantities per transaction kind. Every kind is present.
func TransactionTotals(txns []models.Transaction) map[string]int {
	totals := make(map[string]int, len(models.TransactionKinds))
	for _, k := range models.TransactionKinds {
		totals[k] = 0
	}
	for _, t := range txns {
		totals[t.Kind] += t.Quantity
	}
	return totals
}

// FilterTransactions matches query against item name and note, then narrows by kind
func FilterTransactions(txns []models.Transaction, query, kind string) ([]models.Transaction, error) {
	if kind == "" {
		kind = FilterAll
	}
	if kind != FilterAll && !models.IsTransactionKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, kind)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Transaction{}
	for _, t := range txns {
		if q != "" {
			inName := strings.Contains(strings.ToLower(t.ItemName), q)
			inNote := t.Note != nil && strings.Contains(strings.ToLower(*t.Note), q)
			if !inName && !inNote {
				continue
			}
		}
		if kind != FilterAll && t.Kind != kind {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
