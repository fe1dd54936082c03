// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Rows stored in the database:

  - Item: a stock item (barang) with stock, minimum stock and unit price
  - Transaction: an inbound or outbound stock movement (transaksi)
  - Employee: a production worker (karyawan) assigned to a division
  - Production: units produced by an employee on a date (produksi)
  - Profile: a staff login with a role

Money is github.com/shopspring/decimal and serializes as a JSON string.

# Computed Types

Built from rows on every request, never stored:

  - AssetReport, AssetLine, AssetSummary: inventory valuation
  - InventoryOverview: dashboard counts and the low-stock list
  - PayrollRecap, EmployeePay: monthly payroll per employee

# Constants

Item kinds:

	KindRawMaterial  = "bahan_baku"
	KindFinishedGood = "barang_jadi"

Transaction kinds:

	TxnInbound       = "masuk"
	TxnOutProduction = "keluar_produksi"
	TxnOutSale       = "keluar_penjualan"
	TxnOutOther      = "keluar_lainnya"

Divisions:

	DivisionCylinder  = "tabung"
	DivisionAccessory = "asesoris"
	DivisionPacking   = "packing"

Roles, from most to least privileged:

	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
*/
package models
