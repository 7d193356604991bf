package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"chancellery/apps/server/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>chancellery</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return config.Config{
		GameID:        "001",
		Seed:          1,
		StaticDir:     static,
		LedgerMode:    config.LedgerMemory,
		KeyCost:       bcrypt.MinCost,
		ViewCacheSize: 16,
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAppRoutes(t *testing.T) {
	a, err := newApp(testConfig(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()
	srv := httptest.NewServer(a.mux)
	defer srv.Close()

	if status, body := get(t, srv.URL+"/health"); status != http.StatusOK || body != "ok" {
		t.Fatalf("health: %d %q", status, body)
	}
	if status, body := get(t, srv.URL+"/"); status != http.StatusOK || body != "<html>chancellery</html>" {
		t.Fatalf("static: %d %q", status, body)
	}
	if status, _ := get(t, srv.URL+"/api/tables/001/history"); status != http.StatusOK {
		t.Fatalf("history: %d", status)
	}
	if status, _ := get(t, srv.URL+"/api/tables/nope/history"); status != http.StatusNotFound {
		t.Fatalf("unknown table history: %d", status)
	}
	if status, _ := get(t, srv.URL+"/api/tables"); status != http.StatusOK {
		t.Fatalf("tables: %d", status)
	}
}

func TestAppRejectsBadKeyCost(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeyCost = 1
	if _, err := newApp(cfg); err == nil {
		t.Fatalf("expected invalid key cost to fail")
	}
}

func TestRootCmdRejectsBadEnv(t *testing.T) {
	t.Setenv("CHANCELLERY_LEDGER_MODE", "redis")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected invalid ledger mode to fail")
	}
}
