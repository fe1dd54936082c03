// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item kinds (jenis_barang)
const (
	KindRawMaterial  = "bahan_baku"
	KindFinishedGood = "barang_jadi"
)

// Transaction kinds (jenis_transaksi)
const (
	TxnInbound       = "masuk"
	TxnOutProduction = "keluar_produksi"
	TxnOutSale       = "keluar_penjualan"
	TxnOutOther      = "keluar_lainnya"
)

// Divisions (divisi_karyawan)
const (
	DivisionCylinder  = "tabung"
	DivisionAccessory = "asesoris"
	DivisionPacking   = "packing"
)

// Staff roles
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Stock status labels
const (
	StockOut = "habis"
	StockLow = "menipis"
	StockOK  = "aman"
)

var (
	ItemKinds        = []string{KindRawMaterial, KindFinishedGood}
	TransactionKinds = []string{TxnInbound, TxnOutProduction, TxnOutSale, TxnOutOther}
	Divisions        = []string{DivisionCylinder, DivisionAccessory, DivisionPacking}
	Roles            = []string{RoleAdmin, RoleManager, RoleEmployee}
)

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func IsItemKind(v string) bool        { return contains(ItemKinds, v) }
func IsTransactionKind(v string) bool { return contains(TransactionKinds, v) }
func IsDivision(v string) bool        { return contains(Divisions, v) }
func IsRole(v string) bool            { return contains(Roles, v) }

// Domain types

type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ItemWithStatus struct {
	Item
	Status string `json:"status"`
}

type Transaction struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Kind      string    `json:"kind"`
	Quantity  int       `json:"quantity"`
	Note      *string   `json:"note,omitempty"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined from the item row
	ItemName  string          `json:"item_name"`
	ItemPrice decimal.Decimal `json:"item_price"`
	ItemKind  string          `json:"item_kind"`
}

type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Division  string    `json:"division"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Production struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	ItemID     string    `json:"item_id"`
	Quantity   int       `json:"quantity"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Joined from employee and item rows
	EmployeeName string `json:"employee_name"`
	Division     string `json:"division"`
	ItemName     string `json:"item_name"`
}

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	Division  *string   `json:"division,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Computed views

type AssetLine struct {
	ItemID string          `json:"item_id"`
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Stock  int             `json:"stock"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
	Share  decimal.Decimal `json:"share_percent"`
}

type AssetSummary struct {
	TotalAssets   decimal.Decimal `json:"total_assets"`
	RawMaterial   decimal.Decimal `json:"raw_material_assets"`
	FinishedGoods decimal.Decimal `json:"finished_goods_assets"`
	RawShare      decimal.Decimal `json:"raw_material_share_percent"`
	FinishedShare decimal.Decimal `json:"finished_goods_share_percent"`
	TotalItems    int             `json:"total_items"`
}

type AssetReport struct {
	Summary AssetSummary `json:"summary"`
	Lines   []AssetLine  `json:"lines"`
}

type InventoryOverview struct {
	TotalItems    int             `json:"total_items"`
	RawMaterials  int             `json:"raw_materials"`
	FinishedGoods int             `json:"finished_goods"`
	TotalUnits    int             `json:"total_units"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
	OutOfStock    int             `json:"out_of_stock_count"`
	LowStock      []Item          `json:"low_stock"`
}

type ProductionLine struct {
	ItemName string    `json:"item_name"`
	Quantity int       `json:"quantity"`
	Date     time.Time `json:"date"`
}

type EmployeePay struct {
	EmployeeID  string           `json:"employee_id"`
	Name        string           `json:"name"`
	Division    string           `json:"division"`
	TotalUnits  int              `json:"total_units"`
	BasePay     decimal.Decimal  `json:"base_pay"`
	Bonus       decimal.Decimal  `json:"bonus"`
	TotalPay    decimal.Decimal  `json:"total_pay"`
	Productions []ProductionLine `json:"productions"`
}

type PayrollRecap struct {
	Period       string          `json:"period"`
	Employees    []EmployeePay   `json:"employees"`
	TotalUnits   int             `json:"total_units"`
	TotalPayroll decimal.Decimal `json:"total_payroll"`
}

// Request types

type CreateItemRequest struct {
	Name     string           `json:"name"`
	Kind     string           `json:"kind"`
	Stock    *int             `json:"stock"`
	MinStock *int             `json:"min_stock"`
	Price    *decimal.Decimal `json:"price"`
}

type UpdateItemRequest struct {
	Name     *string          `json:"name"`
	Kind     *string          `json:"kind"`
	Stock    *int             `json:"stock"`
	MinStock *int             `json:"min_stock"`
	Price    *decimal.Decimal `json:"price"`
}

type CreateTransactionRequest struct {
	ItemID   string     `json:"item_id"`
	Kind     string     `json:"kind"`
	Quantity int        `json:"quantity"`
	Note     string     `json:"note"`
	Date     *time.Time `json:"date"`
}

type CreateEmployeeRequest struct {
	Name     string `json:"name"`
	Division string `json:"division"`
}

type CreateProductionRequest struct {
	EmployeeID string     `json:"employee_id"`
	ItemID     string     `json:"item_id"`
	Quantity   int        `json:"quantity"`
	Date       *time.Time `json:"date"`
}

type CreateProfileRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Division string `json:"division"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Division *string `json:"division"`
	IsActive *bool   `json:"is_active"`
}

// Response types

type CreatedResponse struct {
	ID string `json:"id"`
}

type ItemListResponse struct {
	Items         []ItemWithStatus `json:"items"`
	Total         int              `json:"total"`
	LowStockCount int              `json:"low_stock_count"`
	OutOfStock    int              `json:"out_of_stock_count"`
}

type TransactionListResponse struct {
	Transactions []Transaction  `json:"transactions"`
	Total        int            `json:"total"`
	Totals       map[string]int `json:"totals"`
}

type CreateTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	NewStock      int    `json:"new_stock"`
}

type EmployeeListResponse struct {
	Employees  []Employee     `json:"employees"`
	ByDivision map[string]int `json:"by_division"`
}

type ProductionListResponse struct {
	Period     string       `json:"period"`
	Production []Production `json:"production"`
}

type DashboardResponse struct {
	Overview           InventoryOverview `json:"overview"`
	RecentTransactions []Transaction     `json:"recent_transactions"`
	Employees          int               `json:"employees"`
	MonthProduction    int               `json:"month_production_units"`
}

type CreateProfileResponse struct {
	ProfileID string `json:"profile_id"`
	Token     string `json:"token"`
}

type SeedResponse struct {
	Items        int `json:"items"`
	Employees    int `json:"employees"`
	Transactions int `json:"transactions"`
	Production   int `json:"production"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
