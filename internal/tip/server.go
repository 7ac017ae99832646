package tip

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

// Handler runs the actual logic of one tool. It receives the canonicalized,
// schema-valid argument set and returns a JSON-encodable value. Handlers must
// be independent and side-effect-free across concurrent invocations.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Server binds a tool registry to handler functions and serves the two TIP
// operations. Arguments are validated against the spec before the handler
// runs; a validation failure never reaches the tool function.
type Server struct {
	reg      *registry.Registry
	handlers map[string]Handler
}

// NewServer creates a TIP server over the given registry.
func NewServer(reg *registry.Registry) *Server {
	return &Server{
		reg:      reg,
		handlers: make(map[string]Handler),
	}
}

// Handle attaches the handler for a registered tool. The spec must already
// be present in the registry.
func (s *Server) Handle(name string, h Handler) error {
	if _, err := s.reg.Get(name); err != nil {
		return fmt.Errorf("cannot attach handler: %w", err)
	}
	s.handlers[name] = h
	return nil
}

// ListTools serves the list_tools operation.
func (s *Server) ListTools() []registry.ToolSpec {
	return s.reg.List()
}

// Call serves the call_tool operation: look up the spec, validate the
// arguments, then execute. Every outcome is a CallResult; the only way a
// handler error escapes as a Go error is never.
func (s *Server) Call(ctx context.Context, req CallRequest) CallResult {
	spec, err := s.reg.Get(req.Name)
	if err != nil {
		return errorResult(req.Name, UnknownToolDetail(req.Name))
	}

	if v := ValidateArgs(spec, req.Args); !v.OK {
		log.Printf("⚠️ Rejected call to %s: %s", req.Name, v.Detail)
		return errorResult(req.Name, v.Detail)
	}

	h, ok := s.handlers[req.Name]
	if !ok {
		return errorResult(req.Name, UnknownToolDetail(req.Name))
	}

	value, err := h(ctx, req.Args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errorResult(req.Name, DetailTimeout)
		}
		return errorResult(req.Name, fmt.Sprintf("execution_failed:%v", err))
	}

	return CallResult{Tool: req.Name, Status: StatusSuccess, Value: value}
}
