// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package inventory holds the stock computations behind the item, asset and
dashboard endpoints.

Everything here is a pure function over rows the caller already loaded, so a
result always reflects one read of the table:

	items, _ := loadItems(ctx, db)
	report := inventory.Valuate(items)
	overview := inventory.Overview(items)

# Stock Status

	habis   stock == 0
	menipis stock <= min_stock
	aman    otherwise

# Transactions

Apply is the single place stock moves. Inbound (masuk) adds; the three
outbound kinds subtract and fail with ErrInsufficientStock rather than go
negative.
*/
package inventory
