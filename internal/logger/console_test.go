package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectDebug bool
		expectInfo  bool
		expectWarn  bool
		expectError bool
	}{
		{"debug level shows everything", "debug", true, true, true, true},
		{"info level hides debug", "info", false, true, true, true},
		{"warn level hides info", "warn", false, false, true, true},
		{"error level hides warn", "error", false, false, false, true},
		{"empty level defaults to info", "", false, true, true, true},
		{"unknown level defaults to info", "loud", false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.level)

			log.Debugf("debug message")
			log.Infof("info message")
			log.Warnf("warn message")
			log.Errorf("error message")

			output := buf.String()
			checks := []struct {
				expect bool
				text   string
			}{
				{tt.expectDebug, "debug message"},
				{tt.expectInfo, "info message"},
				{tt.expectWarn, "warn message"},
				{tt.expectError, "error message"},
			}
			for _, c := range checks {
				if got := strings.Contains(output, c.text); got != c.expect {
					t.Errorf("output contains %q = %v, want %v", c.text, got, c.expect)
				}
			}
		})
	}
}

func TestConsoleLogger_TimestampPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	log.Infof("hello")

	if !strings.HasPrefix(buf.String(), "[") {
		t.Errorf("expected timestamp prefix, got %q", buf.String())
	}
}

func TestConsoleLogger_NilSafe(t *testing.T) {
	var log *ConsoleLogger
	log.Infof("should not panic")

	log = New(nil, "info")
	log.Infof("discarded")
}

func TestConsoleLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Infof("message %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Count(buf.String(), "\n")
	if lines != 10 {
		t.Errorf("expected 10 lines, got %d", lines)
	}
}
