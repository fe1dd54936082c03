// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed unexpectedly")
		}
		return c
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for change")
	}
	return Change{}
}

func TestPublishSubscribe(t *testing.T) {
	b := NewBroker(8)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all := b.Subscribe(ctx)
	items := b.Subscribe(ctx, TableItems)

	b.Publish(Change{Table: TableTransactions, Op: OpInsert, ID: "t1"})
	b.Publish(Change{Table: TableItems, Op: OpUpdate, ID: "i1"})

	if c := receive(t, all); c.ID != "t1" {
		t.Errorf("Expected t1 first, got %s", c.ID)
	}
	if c := receive(t, all); c.ID != "i1" {
		t.Errorf("Expected i1 second, got %s", c.ID)
	}

	c := receive(t, items)
	if c.Table != TableItems || c.ID != "i1" {
		t.Errorf("Filtered subscriber got %+v", c)
	}
	if c.At.IsZero() {
		t.Error("Expected Publish to stamp the change time")
	}

	select {
	case extra := <-items:
		t.Errorf("Filtered subscriber received unexpected change %+v", extra)
	default:
	}
}

func TestSlowSubscriberDrops(t *testing.T) {
	b := NewBroker(2)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	for i := 0; i < 5; i++ {
		b.Publish(Change{Table: TableItems, Op: OpUpdate, ID: "i1"})
	}

	if b.Dropped() != 3 {
		t.Errorf("Expected 3 dropped deliveries, got %d", b.Dropped())
	}
	if len(ch) != 2 {
		t.Errorf("Expected buffer of 2, got %d", len(ch))
	}
}

func TestContextCancelUnsubscribes(t *testing.T) {
	b := NewBroker(4)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	if b.Subscribers() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", b.Subscribers())
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after cancel")
	}
	if b.Subscribers() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", b.Subscribers())
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewBroker(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after Close")
	}

	late := b.Subscribe(ctx)
	if _, ok := <-late; ok {
		t.Error("Expected closed channel when subscribing after Close")
	}

	// publishing after close is a no-op
	b.Publish(Change{Table: TableItems})
}

func TestConcurrentPublish(t *testing.T) {
	b := NewBroker(1000)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := b.Subscribe(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Publish(Change{Table: TableProduction, Op: OpInsert})
			}
		}()
	}
	wg.Wait()

	if got := len(ch) + int(b.Dropped()); got != 500 {
		t.Errorf("Expected 500 deliveries accounted for, got %d", got)
	}
}
