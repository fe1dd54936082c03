// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/stockroom/feed"
	"github.com/danielhkuo/stockroom/inventory"
	"github.com/danielhkuo/stockroom/metrics"
	"github.com/danielhkuo/stockroom/models"
	"github.com/danielhkuo/stockroom/testutil"
)

func TestCreateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTransactionHandler(db, testutil.GetTestConfig(), newTestBroker(t), metrics.New())

	itemID := testutil.CreateTestItem(t, db, "Tabung Gas 3kg", models.KindFinishedGood, 25, 10, 150000)

	// Steps run in order against the same item
	steps := []struct {
		name       string
		request    models.CreateTransactionRequest
		wantStatus int
		wantStock  int
	}{
		{"inbound adds", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnInbound, Quantity: 50, Note: "Pembelian stock awal"}, http.StatusCreated, 75},
		{"sale subtracts", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnOutSale, Quantity: 10}, http.StatusCreated, 65},
		{"production issue subtracts", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnOutProduction, Quantity: 60}, http.StatusCreated, 5},
		{"insufficient stock", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnOutOther, Quantity: 6}, http.StatusConflict, 5},
		{"inbound past the maximum stock", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnInbound, Quantity: inventory.MaxQuantity}, http.StatusBadRequest, 5},
		{"quantity past the maximum", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnOutOther, Quantity: inventory.MaxQuantity + 1}, http.StatusBadRequest, 5},
		{"exact stock empties", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnOutOther, Quantity: 5}, http.StatusCreated, 0},
		{"zero quantity", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnInbound, Quantity: 0}, http.StatusBadRequest, 0},
		{"negative quantity", models.CreateTransactionRequest{ItemID: itemID, Kind: models.TxnInbound, Quantity: -3}, http.StatusBadRequest, 0},
		{"unknown kind", models.CreateTransactionRequest{ItemID: itemID, Kind: "retur", Quantity: 1}, http.StatusBadRequest, 0},
		{"missing item id", models.CreateTransactionRequest{Kind: models.TxnInbound, Quantity: 1}, http.StatusBadRequest, 0},
	}

	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.CreateTransaction(w, testutil.MakeRequest("POST", "/transactions", st.request, nil))
			testutil.AssertStatus(t, w, st.wantStatus)

			if st.wantStatus == http.StatusCreated {
				var resp models.CreateTransactionResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.NewStock != st.wantStock {
					t.Errorf("Expected new stock %d, got %d", st.wantStock, resp.NewStock)
				}
			}

			item, err := loadItem(context.Background(), db, itemID)
			if err != nil {
				t.Fatal(err)
			}
			if item.Stock != st.wantStock {
				t.Errorf("Expected stored stock %d, got %d", st.wantStock, item.Stock)
			}
		})
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transaksi`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("Expected 4 stored transactions, got %d", count)
	}
}

func TestCreateTransactionUnknownItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTransactionHandler(db, testutil.GetTestConfig(), newTestBroker(t), metrics.New())

	w := httptest.NewRecorder()
	handler.CreateTransaction(w, testutil.MakeRequest("POST", "/transactions", models.CreateTransactionRequest{
		ItemID: "missing", Kind: models.TxnInbound, Quantity: 1,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCreateTransactionPublishesBothRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	broker := newTestBroker(t)
	handler := NewTransactionHandler(db, testutil.GetTestConfig(), broker, metrics.New())

	itemID := testutil.CreateTestItem(t, db, "Besi Plat", models.KindRawMaterial, 200, 100, 12000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := broker.Subscribe(ctx)

	date := time.Date(2026, 10, 3, 8, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	w := httptest.NewRecorder()
	handler.CreateTransaction(w, testutil.MakeRequest("POST", "/transactions", models.CreateTransactionRequest{
		ItemID: itemID, Kind: models.TxnOutProduction, Quantity: 40, Date: timePtr(date),
	}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateTransactionResponse
	testutil.AssertJSON(t, w, &resp)

	got := drain(changes)
	if len(got) != 2 {
		t.Fatalf("Expected 2 changes, got %+v", got)
	}
	if got[0].Table != feed.TableTransactions || got[0].ID != resp.TransactionID || got[0].Op != feed.OpInsert {
		t.Errorf("Unexpected transaction change %+v", got[0])
	}
	if got[1].Table != feed.TableItems || got[1].ID != itemID || got[1].Op != feed.OpUpdate {
		t.Errorf("Unexpected item change %+v", got[1])
	}

	// The supplied date is stored as the same instant
	txns, err := loadTransactions(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if !txns[0].Date.Equal(date) {
		t.Errorf("Expected date %v, got %v", date, txns[0].Date)
	}
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTransactionHandler(db, testutil.GetTestConfig(), newTestBroker(t), metrics.New())

	gas := testutil.CreateTestItem(t, db, "Tabung Gas 3kg", models.KindFinishedGood, 65, 10, 150000)
	plate := testutil.CreateTestItem(t, db, "Besi Plat", models.KindRawMaterial, 200, 100, 12000)

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	testutil.CreateTestTransaction(t, db, gas, models.TxnInbound, 50, "Pembelian stock awal", base)
	testutil.CreateTestTransaction(t, db, gas, models.TxnOutSale, 10, "Penjualan ke customer", base.Add(time.Hour))
	testutil.CreateTestTransaction(t, db, plate, models.TxnOutProduction, 25, "Digunakan untuk produksi tabung", base.Add(2*time.Hour))
	testutil.CreateTestTransaction(t, db, plate, models.TxnOutOther, 5, "Barang rusak/hilang", base.Add(3*time.Hour))

	wantTotals := map[string]int{
		models.TxnInbound:       50,
		models.TxnOutSale:       10,
		models.TxnOutProduction: 25,
		models.TxnOutOther:      5,
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNotes  []string
	}{
		{"newest first", "", http.StatusOK, []string{"Barang rusak/hilang", "Digunakan untuk produksi tabung", "Penjualan ke customer", "Pembelian stock awal"}},
		{"search by item name", "?q=tabung+gas", http.StatusOK, []string{"Penjualan ke customer", "Pembelian stock awal"}},
		{"search by note", "?q=RUSAK", http.StatusOK, []string{"Barang rusak/hilang"}},
		{"by kind", "?kind=masuk", http.StatusOK, []string{"Pembelian stock awal"}},
		{"unknown kind", "?kind=retur", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ListTransactions(w, httptest.NewRequest("GET", "/transactions"+tt.query, nil))
			testutil.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp models.TransactionListResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Total != len(tt.wantNotes) {
				t.Fatalf("Expected %d transactions, got %d", len(tt.wantNotes), resp.Total)
			}
			for i, note := range tt.wantNotes {
				if resp.Transactions[i].Note == nil || *resp.Transactions[i].Note != note {
					t.Errorf("Transaction %d: expected note %q, got %v", i, note, resp.Transactions[i].Note)
				}
			}
			// Totals cover every row regardless of the filter
			for kind, want := range wantTotals {
				if resp.Totals[kind] != want {
					t.Errorf("Expected total %d for %s, got %d", want, kind, resp.Totals[kind])
				}
			}
		})
	}
}

// TestConcurrentOutbound verifies that racing withdrawals never drive stock negative
func TestConcurrentOutbound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTransactionHandler(db, testutil.GetTestConfig(), newTestBroker(t), metrics.New())

	itemID := testutil.CreateTestItem(t, db, "Regulator Gas", models.KindFinishedGood, 10, 2, 45000)

	const workers = 20
	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.CreateTransaction(w, testutil.MakeRequest("POST", "/transactions", models.CreateTransactionRequest{
				ItemID: itemID, Kind: models.TxnOutSale, Quantity: 1,
			}, nil))
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	if created.Load() != 10 {
		t.Errorf("Expected exactly 10 successful withdrawals, got %d", created.Load())
	}
	item, err := loadItem(context.Background(), db, itemID)
	if err != nil {
		t.Fatal(err)
	}
	if item.Stock != 0 {
		t.Errorf("Expected stock 0, got %d", item.Stock)
	}
}
