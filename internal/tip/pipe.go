package tip

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/dileep-u-k/tool-orchestrator/internal/registry"
)

const (
	pipeOpListTools = "list_tools"
	pipeOpCallTool  = "call_tool"

	pipeMaxLine = 1 << 20
)

// pipeRequest is one line of the pipe protocol, orchestrator to server.
type pipeRequest struct {
	Op   string         `json:"op"`
	Name string         `json:"name,omitempty"`
	Args map[string]any `json:"args,omitempty"`
}

// pipeResponse is one line back. Exactly one of Tools, Result, or Error is
// populated depending on the request op.
type pipeResponse struct {
	Tools  []registry.ToolSpec `json:"tools,omitempty"`
	Result *CallResult         `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// ServePipe serves TIP over a byte-stream pipe: one JSON request per line on
// r, one JSON response per line on w. It returns when the input stream closes,
// which is how the orchestrator shuts a spawned tool server down.
func ServePipe(ctx context.Context, srv *Server, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), pipeMaxLine)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req pipeRequest
		var resp pipeResponse
		if err := json.Unmarshal(line, &req); err != nil {
			resp.Error = fmt.Sprintf("malformed request line: %v", err)
		} else {
			switch req.Op {
			case pipeOpListTools:
				resp.Tools = srv.ListTools()
			case pipeOpCallTool:
				result := srv.Call(ctx, CallRequest{Name: req.Name, Args: req.Args})
				resp.Result = &result
			default:
				resp.Error = fmt.Sprintf("unknown op %q", req.Op)
			}
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write pipe response: %w", err)
		}
	}
	return scanner.Err()
}

// PipeClient spawns a tool-server subprocess and speaks the pipe protocol over
// its stdin and stdout. The protocol is strictly request/response, so calls
// are serialized; the subprocess's stderr passes through for its own logging.
type PipeClient struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	timeout time.Duration
	broken  bool
}

// Statically verify that PipeClient implements the Client interface.
var _ Client = (*PipeClient)(nil)

// NewPipeClient starts the given command and attaches to its pipes. The
// subprocess inherits the parent environment. A zero timeout falls back to 30s.
func NewPipeClient(name string, args []string, timeout time.Duration) (*PipeClient, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start tool server %q: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), pipeMaxLine)

	return &PipeClient{
		cmd:     cmd,
		stdin:   stdin,
		scanner: scanner,
		timeout: timeout,
	}, nil
}

func (c *PipeClient) ListTools(ctx context.Context) ([]registry.ToolSpec, error) {
	resp, err := c.roundTrip(ctx, pipeRequest{Op: pipeOpListTools})
	if err != nil {
		return nil, fmt.Errorf("tool discovery failed: %w", err)
	}
	return resp.Tools, nil
}

// CallTool performs one call_tool exchange. As with the HTTP transport,
// transport failures and timeouts come back as error results rather than
// Go errors.
func (c *PipeClient) CallTool(ctx context.Context, name string, args map[string]any) CallResult {
	resp, err := c.roundTrip(ctx, pipeRequest{Op: pipeOpCallTool, Name: name, Args: args})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errorResult(name, DetailTimeout)
		}
		return errorResult(name, DetailTransportFailure)
	}
	if resp.Result == nil {
		return errorResult(name, DetailTransportFailure)
	}

	result := *resp.Result
	if result.Tool == "" {
		result.Tool = name
	}
	return result
}

// Close shuts the subprocess down by closing its stdin and waits for it to
// exit. The client is unusable afterwards.
func (c *PipeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken = true
	_ = c.stdin.Close()
	return c.cmd.Wait()
}

// roundTrip writes one request line and reads one response line, holding the
// stream lock for the whole exchange. A timed-out or failed read leaves the
// stream desynchronized, so the subprocess is killed and the client marked
// broken rather than risk pairing a stale response with a later request.
func (c *PipeClient) roundTrip(ctx context.Context, req pipeRequest) (pipeResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var resp pipeResponse
	if c.broken {
		return resp, errors.New("pipe transport is closed")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}
	if _, err := c.stdin.Write(append(payload, '\n')); err != nil {
		c.fail()
		return resp, fmt.Errorf("failed to write request: %w", err)
	}

	type scanResult struct {
		line []byte
		err  error
	}
	ch := make(chan scanResult, 1)
	go func() {
		if c.scanner.Scan() {
			line := make([]byte, len(c.scanner.Bytes()))
			copy(line, c.scanner.Bytes())
			ch <- scanResult{line: line}
			return
		}
		err := c.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		ch <- scanResult{err: err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			c.fail()
			return resp, fmt.Errorf("failed to read response: %w", r.err)
		}
		if err := json.Unmarshal(r.line, &resp); err != nil {
			c.fail()
			return resp, fmt.Errorf("malformed response line: %w", err)
		}
		if resp.Error != "" {
			return resp, errors.New(resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		c.fail()
		return resp, ctx.Err()
	case <-timer.C:
		c.fail()
		return resp, context.DeadlineExceeded
	}
}

// fail is called with the lock held once the stream can no longer be trusted.
func (c *PipeClient) fail() {
	c.broken = true
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
}
