package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/domain"
)

func testServer(t *testing.T, byGID map[string]string, statusByGID map[string]int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gid := r.URL.Query().Get("gid")
		if status, ok := statusByGID[gid]; ok {
			w.WriteHeader(status)
			return
		}
		body, ok := byGID[gid]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, gids map[domain.Category]string) *Client {
	t.Helper()
	return NewClient(Config{
		SpreadsheetID: "sheet-1",
		GIDs:          gids,
		BaseURL:       srv.URL,
	}, zap.NewNop())
}

func TestLoadAll_ParsesHeaderedCSV(t *testing.T) {
	srv := testServer(t, map[string]string{
		"0":  "number,name,gender\n1,สมชาย,ชาย\n2,สมหญิง,หญิง\n",
		"10": "name,specialize\nฐาปนันท์,Network\n",
	}, nil)

	client := newTestClient(t, srv, map[domain.Category]string{
		domain.CategoryStudent: "0",
		domain.CategoryTeacher: "10",
	})

	snap := client.LoadAll(context.Background())

	if len(snap.Students) != 2 {
		t.Fatalf("loaded %d students, want 2", len(snap.Students))
	}
	if snap.Students[0].Get("name") != "สมชาย" || snap.Students[0].Get("gender") != "ชาย" {
		t.Errorf("unexpected first student: %v", snap.Students[0])
	}
	if len(snap.Teachers) != 1 || snap.Teachers[0].Get("specialize") != "Network" {
		t.Errorf("unexpected teachers: %v", snap.Teachers)
	}
	if len(snap.Rooms) != 0 {
		t.Errorf("unconfigured category must load empty, got %d rooms", len(snap.Rooms))
	}
}

func TestLoadAll_FailureIsolatedPerCategory(t *testing.T) {
	srv := testServer(t,
		map[string]string{"0": "number,name\n1,ก\n"},
		map[string]int{"10": http.StatusInternalServerError},
	)

	client := newTestClient(t, srv, map[domain.Category]string{
		domain.CategoryStudent: "0",
		domain.CategoryTeacher: "10",
	})

	snap := client.LoadAll(context.Background())

	if len(snap.Students) != 1 {
		t.Errorf("healthy category must still load, got %d students", len(snap.Students))
	}
	if len(snap.Teachers) != 0 {
		t.Errorf("failed category must come back empty, got %d teachers", len(snap.Teachers))
	}
}

func TestParseCSV_RaggedAndEmptyRows(t *testing.T) {
	srv := testServer(t, map[string]string{
		"0": "number,name,gender\n1,ก\n,,\n2,ข,หญิง\n",
	}, nil)

	client := newTestClient(t, srv, map[domain.Category]string{domain.CategoryStudent: "0"})
	snap := client.LoadAll(context.Background())

	if len(snap.Students) != 2 {
		t.Fatalf("loaded %d students, want 2 (empty row skipped)", len(snap.Students))
	}
	if got := snap.Students[0].Get("gender"); got != "" {
		t.Errorf("missing trailing cell = %q, want empty", got)
	}
}

func TestParseCSV_BOMStrippedFromHeader(t *testing.T) {
	srv := testServer(t, map[string]string{
		"0": "\ufeffnumber,name\n1,ก\n",
	}, nil)

	client := newTestClient(t, srv, map[domain.Category]string{domain.CategoryStudent: "0"})
	snap := client.LoadAll(context.Background())

	if len(snap.Students) != 1 || snap.Students[0].Get("number") != "1" {
		t.Errorf("BOM header not handled: %v", snap.Students)
	}
}
