// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the stockroom API.

# Handler Types

Each handler is a struct with database and config dependencies, plus
whatever shared service it touches:

  - ItemHandler: Stock item catalogue and low-stock view
  - TransactionHandler: Stock movements (inbound and outbound)
  - EmployeeHandler: Production staff roster
  - ProductionHandler: Per-employee production output
  - SummaryHandler: Payroll recap, asset valuation and dashboard
  - ReportHandler: HTML exports and the report archive
  - EventHandler: Server-Sent Events change feed
  - ProfileHandler: Staff profiles and roles
  - DemoHandler: Sample data seeding and clearing

Handlers are created via constructor functions:

	itemHandler := handlers.NewItemHandler(db, cfg, broker)

# Authentication

Authenticator.Require wraps a handler with a minimum role. Staff send

	Authorization: Bearer <profile-id>.<signature>

Missing or invalid tokens and inactive profiles get 401; a role below the
minimum gets 403. The authenticated profile is available through
ProfileFromContext.

# Stock Movements

CreateTransaction inserts the movement row and writes the new stock level in
one database transaction. Outbound movements larger than the current stock
fail with 409 and change nothing. Production records never move stock.

# Change Feed

Every successful write publishes a feed.Change after commit. Stream relays
them to clients as

	event: change
	data: {"table":"barang","op":"update","id":"...","at":"..."}

A change without an id means the whole table was rewritten.
*/
package handlers
