// Package agent provides the invocation boundary between the execution core
// and concrete agent implementations. The core only sees the Bridge
// interface; process-backed and mock implementations live behind it.
package agent

import "context"

// Response is the structured result an agent returns for one invocation.
// Status is "success" or "error"; on an in-band error the message is carried
// under Data["error"].
type Response struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data"`
}

// Bridge invokes a named agent action. Implementations return an error only
// for transport-level failures (spawn failure, malformed output, cancelled
// context); agent-reported failures come back as a Response with status
// "error".
type Bridge interface {
	Invoke(ctx context.Context, agent, action string, params map[string]interface{}) (*Response, error)
}
