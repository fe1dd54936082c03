// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/stockroom/archive"
	"github.com/danielhkuo/stockroom/models"
	"github.com/danielhkuo/stockroom/payroll"
	"github.com/danielhkuo/stockroom/report"
	"github.com/danielhkuo/stockroom/testutil"
)

func kindRequest(method, path, kind string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.SetPathValue("kind", kind)
	return req
}

func TestExportReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewReportHandler(db, testutil.GetTestConfig(), payroll.DefaultRates(), nil)

	gas := testutil.CreateTestItem(t, db, "Tabung Gas 3kg", models.KindFinishedGood, 25, 10, 150000)
	emp := testutil.CreateTestEmployee(t, db, "Ahmad Surya", models.DivisionCylinder)
	testutil.CreateTestTransaction(t, db, gas, models.TxnOutSale, 10, "Penjualan ke customer", now())
	testutil.CreateTestProduction(t, db, emp, gas, 20, time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC))

	tests := []struct {
		kind     string
		query    string
		contains []string
	}{
		{report.KindStock, "", []string{"Laporan Stok Barang", "<td>Tabung Gas 3kg</td>", "<td>Rp 150.000</td>"}},
		{report.KindTransactions, "", []string{"Laporan Transaksi", "<td>Keluar (Penjualan)</td>", "<td>Rp 1.500.000</td>"}},
		{report.KindEmployees, "", []string{"Daftar Karyawan", "<td>Ahmad Surya</td>"}},
		{report.KindAssets, "", []string{"Laporan Nilai Aset", "<td>Total Aset</td>", "<td>Rp 3.750.000</td>"}},
		{report.KindPayroll, "?month=2024-05", []string{"Rekap Produksi &amp; Gaji 2024-05", "<td>Rp 3.530.000</td>"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Export(w, kindRequest("GET", "/reports/"+tt.kind+tt.query, tt.kind))
			testutil.AssertStatus(t, w, http.StatusOK)

			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Expected HTML content type, got %s", ct)
			}
			want := `attachment; filename="` + report.Filename(tt.kind, now()) + `"`
			if cd := w.Header().Get("Content-Disposition"); cd != want {
				t.Errorf("Expected disposition %s, got %s", want, cd)
			}
			body := w.Body.String()
			for _, c := range tt.contains {
				if !strings.Contains(body, c) {
					t.Errorf("Expected report to contain %q", c)
				}
			}
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Export(w, kindRequest("GET", "/reports/sales", "sales"))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("bad payroll month", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Export(w, kindRequest("GET", "/reports/payroll?month=may", report.KindPayroll))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestArchiveDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewReportHandler(db, testutil.GetTestConfig(), payroll.DefaultRates(), nil)

	w := httptest.NewRecorder()
	handler.Archive(w, kindRequest("POST", "/reports/stock/archive", report.KindStock))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)

	w = httptest.NewRecorder()
	handler.ListArchive(w, httptest.NewRequest("GET", "/reports/archive", nil))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}

func TestArchiveReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := archive.NewMemory()
	handler := NewReportHandler(db, testutil.GetTestConfig(), payroll.DefaultRates(), store)

	testutil.CreateTestItem(t, db, "Tabung Gas 3kg", models.KindFinishedGood, 25, 10, 150000)

	var stored archive.Info
	t.Run("archive stock", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Archive(w, kindRequest("POST", "/reports/stock/archive", report.KindStock))
		testutil.AssertStatus(t, w, http.StatusCreated)

		testutil.AssertJSON(t, w, &stored)
		want := archive.ReportKey(report.KindStock, report.Filename(report.KindStock, now()))
		if stored.Key != want {
			t.Errorf("Expected key %s, got %s", want, stored.Key)
		}
		if stored.Size == 0 {
			t.Error("Expected non-empty archived report")
		}
	})

	t.Run("same day archive conflicts", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Archive(w, kindRequest("POST", "/reports/stock/archive", report.KindStock))
		testutil.AssertStatus(t, w, http.StatusConflict)
	})

	t.Run("archive assets", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Archive(w, kindRequest("POST", "/reports/assets/archive", report.KindAssets))
		testutil.AssertStatus(t, w, http.StatusCreated)
	})

	t.Run("list all", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListArchive(w, httptest.NewRequest("GET", "/reports/archive", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var infos []archive.Info
		testutil.AssertJSON(t, w, &infos)
		if len(infos) != 2 {
			t.Errorf("Expected 2 archived reports, got %d", len(infos))
		}
	})

	t.Run("list by kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListArchive(w, httptest.NewRequest("GET", "/reports/archive?kind=stock", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var infos []archive.Info
		testutil.AssertJSON(t, w, &infos)
		if len(infos) != 1 || infos[0].Key != stored.Key {
			t.Errorf("Unexpected stock listing %+v", infos)
		}
	})

	t.Run("list unknown kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListArchive(w, httptest.NewRequest("GET", "/reports/archive?kind=sales", nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("fetch", func(t *testing.T) {
		file := report.Filename(report.KindStock, now())
		req := httptest.NewRequest("GET", "/reports/archive/stock/"+file, nil)
		req.SetPathValue("kind", report.KindStock)
		req.SetPathValue("file", file)

		w := httptest.NewRecorder()
		handler.FetchArchived(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		if !strings.Contains(w.Body.String(), "<td>Tabung Gas 3kg</td>") {
			t.Error("Expected archived report body")
		}
	})

	t.Run("fetch missing", func(t *testing.T) {
		for _, file := range []string{"stock_2000-01-01.html", "..", "../assets/x.html"} {
			req := httptest.NewRequest("GET", "/reports/archive/stock/x", nil)
			req.SetPathValue("kind", report.KindStock)
			req.SetPathValue("file", file)

			w := httptest.NewRecorder()
			handler.FetchArchived(w, req)
			testutil.AssertStatus(t, w, http.StatusNotFound)
		}
	})
}
