// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package report renders the HTML table exports offered for download and archiving.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/models"
)

// Report kinds
const (
	KindStock        = "stock"
	KindTransactions = "transactions"
	KindEmployees    = "employees"
	KindAssets       = "assets"
	KindPayroll      = "payroll"
)

var Kinds = []string{KindStock, KindTransactions, KindEmployees, KindAssets, KindPayroll}

func IsKind(k string) bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Table is a titled grid of preformatted cells
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"cell": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #333; text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; font-weight: bold; }
.export-date { color: #666; font-size: 12px; }
.footer { margin-top: 30px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="export-date">Diekspor pada: {{.ExportedAt}}</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{cell .}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<div class="footer"><p>Total Record: {{len .Rows}}</p></div>
</body>
</html>
`))

// Render writes t as a standalone HTML document
func Render(w io.Writer, t Table, exportedAt time.Time) error {
	data := struct {
		Table
		ExportedAt string
	}{t, FormatDate(exportedAt)}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// RenderBytes renders t into memory
func RenderBytes(t Table, exportedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, t, exportedAt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is <kind>_<YYYY-MM-DD>.html
func Filename(kind string, at time.Time) string {
	return kind + "_" + at.Format("2006-01-02") + ".html"
}

// FormatCurrency renders an IDR amount without fraction digits, e.g. "Rp 150.000"
func FormatCurrency(amount decimal.Decimal) string {
	n := amount.Round(0).IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + "Rp " + humanize.FormatInteger("#.###,", int(n))
}

// FormatDate renders day/month/year hour:minute
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

func kindLabel(kind string) string {
	switch kind {
	case models.KindRawMaterial:
		return "Bahan Baku"
	case models.KindFinishedGood:
		return "Barang Jadi"
	case models.TxnInbound:
		return "Masuk"
	case models.TxnOutProduction:
		return "Keluar (Produksi)"
	case models.TxnOutSale:
		return "Keluar (Penjualan)"
	case models.TxnOutOther:
		return "Keluar (Lainnya)"
	}
	return kind
}

func statusLabel(status string) string {
	switch status {
	case models.StockOut:
		return "Habis"
	case models.StockLow:
		return "Menipis"
	}
	return "Aman"
}

func itoa(n int) string { return strconv.Itoa(n) }

// StockTable lists items with their stock status
func StockTable(items []models.Item) Table {
	t := Table{
		Title:   "Laporan Stok Barang",
		Headers: []string{"Nama Barang", "Jenis", "Stok", "Min. Stok", "Status", "Harga"},
		Rows:    [][]string{},
	}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{
			it.Name,
			kindLabel(it.Kind),
			itoa(it.Stock),
			itoa(it.MinStock),
			statusLabel(inventory.Status(it)),
			FormatCurrency(it.Price),
		})
	}
	return t
}

// TransactionTable lists stock movements
func TransactionTable(txns []models.Transaction) Table {
	t := Table{
		Title:   "Laporan Transaksi",
		Headers: []string{"Tanggal", "Barang", "Jenis", "Jumlah", "Nilai", "Keterangan"},
		Rows:    [][]string{},
	}
	for _, tx := range txns {
		note := ""
		if tx.Note != nil {
			note = *tx.Note
		}
		value := tx.ItemPrice.Mul(decimal.NewFromInt(int64(tx.Quantity)))
		t.Rows = append(t.Rows, []string{
			FormatDate(tx.Date),
			tx.ItemName,
			kindLabel(tx.Kind),
			itoa(tx.Quantity),
			FormatCurrency(value),
			note,
		})
	}
	return t
}

// EmployeeTable lists employees
func EmployeeTable(employees []models.Employee) Table {
	t := Table{
		Title:   "Daftar Karyawan",
		Headers: []string{"Nama", "Divisi", "Terdaftar"},
		Rows:    [][]string{},
	}
	for _, e := range employees {
		t.Rows = append(t.Rows, []string{e.Name, e.Division, FormatDate(e.CreatedAt)})
	}
	return t
}

// AssetTable lists the valuation lines followed by the totals
func AssetTable(r models.AssetReport) Table {
	t := Table{
		Title:   "Laporan Nilai Aset",
		Headers: []string{"Nama Barang", "Jenis", "Stok", "Harga", "Nilai Total", "Persentase"},
		Rows:    [][]string{},
	}
	for _, l := range r.Lines {
		t.Rows = append(t.Rows, []string{
			l.Name,
			kindLabel(l.Kind),
			itoa(l.Stock),
			FormatCurrency(l.Price),
			FormatCurrency(l.Value),
			l.Share.StringFixed(1) + "%",
		})
	}
	t.Rows = append(t.Rows, []string{"Total Aset", "", "", "", FormatCurrency(r.Summary.TotalAssets), "100.0%"})
	return t
}

// PayrollTable lists one row per employee in the recap
func PayrollTable(r models.PayrollRecap) Table {
	t := Table{
		Title:   "Rekap Produksi & Gaji " + r.Period,
		Headers: []string{"Nama", "Divisi", "Total Produksi", "Gaji Dasar", "Bonus Produksi", "Total Gaji"},
		Rows:    [][]string{},
	}
	for _, e := range r.Employees {
		t.Rows = append(t.Rows, []string{
			e.Name,
			e.Division,
			itoa(e.TotalUnits),
			FormatCurrency(e.BasePay),
			FormatCurrency(e.Bonus),
			FormatCurrency(e.TotalPay),
		})
	}
	return t
}
