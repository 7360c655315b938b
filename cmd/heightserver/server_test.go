package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/heightview/internal/presence"
	"github.com/Faultbox/heightview/pkg/formats"
)

func newTestServer(t *testing.T) (*httptest.Server, *presence.Hub) {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	hd := &formats.HeightData{Rows: 2, Cols: 2, Values: []float32{1, 2, 3, 4}}
	if err := hd.WriteFile(filepath.Join(dir, "data", "test.bin")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := zaptest.NewLogger(t)
	hub := presence.NewHub(log)
	srv := httptest.NewServer(NewServer(dir, hub, log).Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub
}

func TestServesHeightData(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/data/test.bin")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	hd, err := formats.ParseHeightData(body)
	if err != nil {
		t.Fatalf("ParseHeightData() error = %v", err)
	}
	if hd.Rows != 2 || hd.Cols != 2 || hd.At(1, 1) != 4 {
		t.Errorf("decoded %dx%d, At(1,1) = %v", hd.Rows, hd.Cols, hd.At(1, 1))
	}
}

func TestServesStaticFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q, want text/html", resp.Header.Get("Content-Type"))
	}

	resp, err = http.Get(srv.URL + "/data/missing.bin")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestClientsEndpoint(t *testing.T) {
	srv, hub := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"User-Agent": {"viewer-test"}})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Count() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get(srv.URL + "/api/clients")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count   int `json:"count"`
		Clients []struct {
			UserAgent string `json:"user_agent"`
		} `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Count != 1 || len(body.Clients) != 1 {
		t.Fatalf("count = %d (%d clients), want 1", body.Count, len(body.Clients))
	}
	if body.Clients[0].UserAgent != "viewer-test" {
		t.Errorf("user agent = %q, want viewer-test", body.Clients[0].UserAgent)
	}
}
