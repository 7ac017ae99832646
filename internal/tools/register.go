package tools

import (
	"fmt"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
	"github.com/dileep-u-k/tool-orchestrator/internal/tip"
)

// RegisterAll wires every built-in tool into the registry and attaches its
// handler to the TIP server. baseURL points at the backing REST service.
func RegisterAll(reg *registry.Registry, srv *tip.Server, baseURL string) error {
	adder := NewAddNumbers(baseURL)
	hello := NewSayHello(baseURL)

	for _, tool := range []struct {
		spec    registry.ToolSpec
		handler tip.Handler
	}{
		{AddNumbersSpec(), adder.Invoke},
		{SayHelloSpec(), hello.Invoke},
	} {
		if err := reg.Register(tool.spec); err != nil {
			return fmt.Errorf("failed to register %s: %w", tool.spec.Name, err)
		}
		if err := srv.Handle(tool.spec.Name, tool.handler); err != nil {
			return fmt.Errorf("failed to attach handler for %s: %w", tool.spec.Name, err)
		}
	}
	return nil
}
