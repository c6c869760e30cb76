package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"qween/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentials(t *testing.T) {
	if r := CheckCredentials(config.Credentials{AppID: "a", LicenseKey: "l", SecretKey: "s"}); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	r := CheckCredentials(config.Credentials{AppID: "a"})
	if r.Passed {
		t.Fatal("expected failure for partial credentials")
	}
	if r.Detail != "missing license_key, secret_key" {
		t.Fatalf("unexpected detail %q", r.Detail)
	}
}

func TestCheckCameraDevice(t *testing.T) {
	if r := CheckCameraDevice(""); r.Passed {
		t.Fatal("expected failure for empty device")
	}
	missing := CheckCameraDevice(filepath.Join(t.TempDir(), "video9"))
	if missing.Passed || !strings.Contains(missing.Detail, "no camera found") {
		t.Fatalf("unexpected result for missing device: %+v", missing)
	}

	regular := filepath.Join(t.TempDir(), "video0")
	if err := os.WriteFile(regular, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckCameraDevice(regular); r.Passed || !strings.Contains(r.Detail, "not a character device") {
		t.Fatalf("unexpected result for regular file: %+v", r)
	}
}

func TestCheckCameraDevice_CharDevice(t *testing.T) {
	if _, err := os.Stat("/dev/null"); err != nil {
		t.Skip("/dev/null unavailable")
	}
	if r := CheckCameraDevice("/dev/null"); !r.Passed {
		t.Fatalf("expected character device to pass, got %s", r.Detail)
	}
}

func TestCheckEngine_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		_, _, _ = conn.Read(r.Context())
	}))
	defer srv.Close()

	result := CheckEngine(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckEngine_NotWebsocket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if r := CheckEngine(context.Background(), srv.URL); r.Passed {
		t.Fatal("expected failure for plain HTTP endpoint")
	}
}

func TestCheckEngine_MissingURL(t *testing.T) {
	if r := CheckEngine(context.Background(), " "); r.Passed || r.Detail != "missing url" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestRunAllAndFailed(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Camera.Device = filepath.Join(t.TempDir(), "absent")
	cfg.Engine.URL = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("expected four results, got %d", len(results))
	}
	failed := Failed(results)
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "Credentials,Camera,AR engine" {
		t.Fatalf("unexpected failures %q", got)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
