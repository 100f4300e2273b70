package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMockBridge_DefaultResponse(t *testing.T) {
	bridge := NewMockBridge()

	resp, err := bridge.Invoke(context.Background(), "pm", "track_tasks", map[string]interface{}{"path": "."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
	if resp.Data["agent"] != "pm" || resp.Data["action"] != "track_tasks" {
		t.Errorf("default response should echo the invocation, got %v", resp.Data)
	}
}

func TestMockBridge_ProgrammedResponseAndError(t *testing.T) {
	bridge := NewMockBridge()
	bridge.Respond("pm.track_tasks", &Response{
		Status: "error",
		Data:   map[string]interface{}{"error": "tracker offline"},
	})
	bridge.Fail("research.analyze_document", errors.New("spawn failed"))

	resp, err := bridge.Invoke(context.Background(), "pm", "track_tasks", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "error" || resp.Data["error"] != "tracker offline" {
		t.Errorf("programmed response not returned: %+v", resp)
	}

	if _, err := bridge.Invoke(context.Background(), "research", "analyze_document", nil); err == nil {
		t.Error("expected programmed transport error")
	}
}

func TestMockBridge_RecordsInvocationsConcurrently(t *testing.T) {
	bridge := NewMockBridge()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = bridge.Invoke(context.Background(), "pm", "track_tasks", nil)
		}()
	}
	wg.Wait()

	if got := len(bridge.Invocations()); got != 20 {
		t.Errorf("recorded %d invocations, want 20", got)
	}
}
