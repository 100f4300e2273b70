package models

import "errors"

// Task represents a single unit of work: one action performed by one agent.
// Tasks are built by the caller before execution and never mutated.
type Task struct {
	Agent  string                 `json:"agent" yaml:"agent"`
	Action string                 `json:"action" yaml:"action"`
	Params map[string]interface{} `json:"params" yaml:"params"`
}

// NewTask creates a task. A nil params map is normalized to an empty map so
// downstream serialization always produces an object.
func NewTask(agent, action string, params map[string]interface{}) Task {
	if params == nil {
		params = map[string]interface{}{}
	}
	return Task{Agent: agent, Action: action, Params: params}
}

// Validate checks that the task has all required fields.
func (t Task) Validate() error {
	if t.Agent == "" {
		return errors.New("task agent is required")
	}
	if t.Action == "" {
		return errors.New("task action is required")
	}
	return nil
}
