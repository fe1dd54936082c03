// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package feed broadcasts row changes so clients can re-fetch what they display.

# Subscribe and Reconcile

Handlers publish after a write commits:

	broker.Publish(feed.Change{Table: feed.TableItems, Op: feed.OpUpdate, ID: itemID})

Subscribers filter by table and receive on a buffered channel:

	changes := broker.Subscribe(ctx, feed.TableItems, feed.TableTransactions)
	for c := range changes {
		// reload the affected view
	}

A change only says that something happened. Consumers re-read the rows they
need, so a dropped change (full buffer) costs one stale view until the next
change arrives, never a wrong one.

# HTTP

GET /events exposes a subscription as Server-Sent Events. See
handlers.EventsHandler.
*/
package feed
