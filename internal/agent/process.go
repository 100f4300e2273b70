package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Definition describes one invocable agent: the executable to spawn and the
// environment it runs with. Definitions come from the loaded configuration.
type Definition struct {
	Name    string
	Enabled bool
	Command string
	Env     map[string]string
}

// request is the JSON document written to an agent process on stdin.
type request struct {
	Agent  string                 `json:"agent"`
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// ProcessBridge invokes agents by spawning their configured executables.
// One invocation spawns one process: the request is written as JSON on
// stdin and the response is read as JSON from stdout. The context carries
// the effective timeout; expiry kills the child process best-effort.
type ProcessBridge struct {
	agents map[string]Definition
}

// NewProcessBridge creates a bridge over the given agent definitions.
func NewProcessBridge(agents map[string]Definition) *ProcessBridge {
	if agents == nil {
		agents = map[string]Definition{}
	}
	return &ProcessBridge{agents: agents}
}

// Invoke runs the named agent's executable and decodes its response.
func (b *ProcessBridge) Invoke(ctx context.Context, agent, action string, params map[string]interface{}) (*Response, error) {
	def, ok := b.agents[agent]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", agent)
	}
	if !def.Enabled {
		return nil, fmt.Errorf("agent %q is disabled", agent)
	}

	input, err := json.Marshal(request{Agent: agent, Action: action, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, def.Command)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Env = os.Environ()
	for k, v := range def.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("agent %q exited: %v: %s", agent, err, stderr.String())
		}
		return nil, fmt.Errorf("agent %q exited: %w", agent, err)
	}

	resp, err := ParseResponse(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", agent, err)
	}
	return resp, nil
}

// ParseResponse decodes an agent's stdout into a Response. A missing status
// defaults to "success", matching the invocation contract.
func ParseResponse(output []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("invalid response JSON: %w", err)
	}
	if resp.Status == "" {
		resp.Status = "success"
	}
	if resp.Data == nil {
		resp.Data = map[string]interface{}{}
	}
	return &resp, nil
}
