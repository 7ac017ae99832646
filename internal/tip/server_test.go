package tip

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.New()
	if err := reg.Register(adderSpec()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	srv := NewServer(reg)
	err := srv.Handle("add_numbers", func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	return srv
}

func TestServerCallSuccess(t *testing.T) {
	srv := newTestServer(t)

	res := srv.Call(context.Background(), CallRequest{
		Name: "add_numbers",
		Args: map[string]any{"a": 12.5, "b": 7.25},
	})

	if !res.OK() {
		t.Fatalf("call failed: %s", res.ErrorDetail)
	}
	if res.Tool != "add_numbers" {
		t.Errorf("Tool = %q, want add_numbers", res.Tool)
	}
	if res.Value != 19.75 {
		t.Errorf("Value = %v, want 19.75", res.Value)
	}
}

func TestServerCallUnknownTool(t *testing.T) {
	srv := newTestServer(t)

	res := srv.Call(context.Background(), CallRequest{Name: "teleport"})
	if res.OK() {
		t.Fatal("expected error result")
	}
	if res.ErrorDetail != "unknown_tool:teleport" {
		t.Errorf("ErrorDetail = %q, want unknown_tool:teleport", res.ErrorDetail)
	}
}

func TestServerCallValidationStopsBeforeHandler(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(adderSpec()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	srv := NewServer(reg)

	invoked := false
	_ = srv.Handle("add_numbers", func(_ context.Context, _ map[string]any) (any, error) {
		invoked = true
		return nil, nil
	})

	res := srv.Call(context.Background(), CallRequest{
		Name: "add_numbers",
		Args: map[string]any{"a": 1.0},
	})

	if res.ErrorDetail != "missing_field:b" {
		t.Errorf("ErrorDetail = %q, want missing_field:b", res.ErrorDetail)
	}
	if invoked {
		t.Error("handler ran despite validation failure")
	}
}

func TestServerCallExecutionError(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(adderSpec()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	srv := NewServer(reg)
	_ = srv.Handle("add_numbers", func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("backend exploded")
	})

	res := srv.Call(context.Background(), CallRequest{
		Name: "add_numbers",
		Args: map[string]any{"a": 1.0, "b": 2.0},
	})

	if res.OK() {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(res.ErrorDetail, "execution_failed:") {
		t.Errorf("ErrorDetail = %q, want execution_failed prefix", res.ErrorDetail)
	}
}

func TestLocalClientTimeout(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(adderSpec()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	srv := NewServer(reg)
	_ = srv.Handle("add_numbers", func(ctx context.Context, _ map[string]any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return 0.0, nil
		}
	})

	client := NewLocalClient(srv, 10*time.Millisecond)
	res := client.CallTool(context.Background(), "add_numbers", map[string]any{"a": 1.0, "b": 2.0})

	if res.OK() {
		t.Fatal("expected timeout result")
	}
	if res.ErrorDetail != DetailTimeout {
		t.Errorf("ErrorDetail = %q, want %q", res.ErrorDetail, DetailTimeout)
	}
}

func TestLocalClientListTools(t *testing.T) {
	srv := newTestServer(t)
	client := NewLocalClient(srv, 0)

	specs, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "add_numbers" {
		t.Errorf("unexpected specs: %+v", specs)
	}
}
