package tip

import (
	"context"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// Client is the orchestrator-side view of a TIP endpoint. ListTools can fail
// (discovery happens once, at loop start, where a hard error is the right
// outcome); CallTool never returns a Go error: transport trouble is folded
// into the CallResult so the agent loop has one uniform error path.
type Client interface {
	ListTools(ctx context.Context) ([]registry.ToolSpec, error)
	CallTool(ctx context.Context, name string, args map[string]any) CallResult
}

// LocalClient invokes a Server in-process. It still applies the per-call
// timeout so a slow handler surfaces as a timeout result, exactly as it would
// over the network.
type LocalClient struct {
	srv     *Server
	timeout time.Duration
}

// NewLocalClient wraps a server. A zero timeout disables the deadline.
func NewLocalClient(srv *Server, timeout time.Duration) *LocalClient {
	return &LocalClient{srv: srv, timeout: timeout}
}

func (c *LocalClient) ListTools(ctx context.Context) ([]registry.ToolSpec, error) {
	return c.srv.ListTools(), nil
}

func (c *LocalClient) CallTool(ctx context.Context, name string, args map[string]any) CallResult {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.srv.Call(ctx, CallRequest{Name: name, Args: args})
}
