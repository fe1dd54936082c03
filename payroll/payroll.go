// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package payroll prices monthly production output per division.
package payroll

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/stockroom/models"
)

var ErrUnknownDivision = errors.New("unknown division")

// Rate is the monthly pay scheme for one division
type Rate struct {
	Base         decimal.Decimal `json:"base"`
	BonusPerUnit decimal.Decimal `json:"bonus_per_unit"`
}

// Rates maps division to its pay scheme
type Rates map[string]Rate

// DefaultRates returns the standard IDR pay schemes
func DefaultRates() Rates {
	return Rates{
		models.DivisionCylinder:  {Base: decimal.NewFromInt(3500000), BonusPerUnit: decimal.NewFromInt(1500)},
		models.DivisionAccessory: {Base: decimal.NewFromInt(3200000), BonusPerUnit: decimal.NewFromInt(1200)},
		models.DivisionPacking:   {Base: decimal.NewFromInt(3000000), BonusPerUnit: decimal.NewFromInt(1000)},
	}
}

type rateFile struct {
	Divisions map[string]struct {
		Base         string `yaml:"base"`
		BonusPerUnit string `yaml:"bonus_per_unit"`
	} `yaml:"divisions"`
}

// LoadRates reads division overrides from a YAML file on top of DefaultRates.
// An empty path returns the defaults.
//
//	divisions:
//	  tabung:
//	    base: 3750000
//	    bonus_per_unit: 1750
func LoadRates(path string) (Rates, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payroll rates: %w", err)
	}
	return ParseRates(data)
}

// ParseRates applies YAML overrides to DefaultRates
func ParseRates(data []byte) (Rates, error) {
	rates := DefaultRates()

	var f rateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse payroll rates: %w", err)
	}

	for div, raw := range f.Divisions {
		if !models.IsDivision(div) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDivision, div)
		}
		r := rates[div]
		if raw.Base != "" {
			v, err := decimal.NewFromString(raw.Base)
			if err != nil {
				return nil, fmt.Errorf("division %s: invalid base: %w", div, err)
			}
			r.Base = v
		}
		if raw.BonusPerUnit != "" {
			v, err := decimal.NewFromString(raw.BonusPerUnit)
			if err != nil {
				return nil, fmt.Errorf("division %s: invalid bonus_per_unit: %w", div, err)
			}
			r.BonusPerUnit = v
		}
		if r.Base.IsNegative() || r.BonusPerUnit.IsNegative() {
			return nil, fmt.Errorf("division %s: amounts must not be negative", div)
		}
		rates[div] = r
	}
	return rates, nil
}

// Period returns the UTC month containing [start, end)
func Period(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ParseMonth parses "YYYY-MM". An empty string selects the month of now.
func ParseMonth(s string, now time.Time) (start, end time.Time, err error) {
	if s == "" {
		now = now.UTC()
		start, end = Period(now.Year(), now.Month())
		return start, end, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be YYYY-MM: %w", err)
	}
	start, end = Period(t.Year(), t.Month())
	return start, end, nil
}

// Recap groups a month's production rows per employee and prices them with rates.
// Only employees with production appear; they are sorted by name.
func Recap(rates Rates, period string, rows []models.Production) (models.PayrollRecap, error) {
	byEmployee := map[string]*models.EmployeePay{}

	for _, p := range rows {
		pay, ok := byEmployee[p.EmployeeID]
		if !ok {
			rate, found := rates[p.Division]
			if !found {
				return models.PayrollRecap{}, fmt.Errorf("%w: %q for employee %s", ErrUnknownDivision, p.Division, p.EmployeeID)
			}
			pay = &models.EmployeePay{
				EmployeeID:  p.EmployeeID,
				Name:        p.EmployeeName,
				Division:    p.Division,
				BasePay:     rate.Base,
				Bonus:       decimal.Zero,
				TotalPay:    rate.Base,
				Productions: []models.ProductionLine{},
			}
			byEmployee[p.EmployeeID] = pay
		}
		pay.TotalUnits += p.Quantity
		pay.Productions = append(pay.Productions, models.ProductionLine{
			ItemName: p.ItemName,
			Quantity: p.Quantity,
			Date:     p.Date,
		})
	}

	recap := models.PayrollRecap{
		Period:       period,
		Employees:    make([]models.EmployeePay, 0, len(byEmployee)),
		TotalPayroll: decimal.Zero,
	}
	for _, pay := range byEmployee {
		rate := rates[pay.Division]
		pay.Bonus = rate.BonusPerUnit.Mul(decimal.NewFromInt(int64(pay.TotalUnits)))
		pay.TotalPay = pay.BasePay.Add(pay.Bonus)
		sort.SliceStable(pay.Productions, func(i, j int) bool {
			return pay.Productions[i].Date.After(pay.Productions[j].Date)
		})

		recap.TotalUnits += pay.TotalUnits
		recap.TotalPayroll = recap.TotalPayroll.Add(pay.TotalPay)
		recap.Employees = append(recap.Employees, *pay)
	}

	sort.Slice(recap.Employees, func(i, j int) bool {
		a, b := recap.Employees[i], recap.Employees[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.EmployeeID < b.EmployeeID
	})

	return recap, nil
}
