package tip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newHTTPFixture(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	MountRoutes(engine, newTestServer(t))

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPClientListTools(t *testing.T) {
	ts := newHTTPFixture(t)
	client := NewHTTPClient(ts.URL, 0)

	specs, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "add_numbers" {
		t.Fatalf("unexpected specs: %+v", specs)
	}
	if len(specs[0].Params) != 3 {
		t.Errorf("param schema lost in transit: %+v", specs[0].Params)
	}
}

func TestHTTPClientCallTool(t *testing.T) {
	ts := newHTTPFixture(t)
	client := NewHTTPClient(ts.URL, 0)

	res := client.CallTool(context.Background(), "add_numbers", map[string]any{"a": 12.5, "b": 7.25})
	if !res.OK() {
		t.Fatalf("call failed: %s", res.ErrorDetail)
	}
	if res.Value != 19.75 {
		t.Errorf("Value = %v, want 19.75", res.Value)
	}
}

func TestHTTPClientValidationErrorTravelsAsResult(t *testing.T) {
	ts := newHTTPFixture(t)
	client := NewHTTPClient(ts.URL, 0)

	res := client.CallTool(context.Background(), "add_numbers", map[string]any{"a": 1.0})
	if res.OK() {
		t.Fatal("expected error result")
	}
	if res.ErrorDetail != "missing_field:b" {
		t.Errorf("ErrorDetail = %q, want missing_field:b", res.ErrorDetail)
	}
}

func TestHTTPClientTransportFailure(t *testing.T) {
	ts := newHTTPFixture(t)
	url := ts.URL
	ts.Close()

	client := NewHTTPClient(url, 0)
	res := client.CallTool(context.Background(), "add_numbers", map[string]any{"a": 1.0, "b": 2.0})

	if res.OK() {
		t.Fatal("expected error result")
	}
	if res.ErrorDetail != DetailTransportFailure {
		t.Errorf("ErrorDetail = %q, want %q", res.ErrorDetail, DetailTransportFailure)
	}
	if res.Tool != "add_numbers" {
		t.Errorf("Tool = %q, want add_numbers", res.Tool)
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	client := NewHTTPClient(slow.URL, 20*time.Millisecond)
	res := client.CallTool(context.Background(), "add_numbers", map[string]any{"a": 1.0, "b": 2.0})

	if res.ErrorDetail != DetailTimeout {
		t.Errorf("ErrorDetail = %q, want %q", res.ErrorDetail, DetailTimeout)
	}
}

func TestHTTPClientNon200IsTransportFailure(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	client := NewHTTPClient(failing.URL, 0)
	res := client.CallTool(context.Background(), "add_numbers", map[string]any{"a": 1.0, "b": 2.0})

	if res.ErrorDetail != DetailTransportFailure {
		t.Errorf("ErrorDetail = %q, want %q", res.ErrorDetail, DetailTransportFailure)
	}
}
