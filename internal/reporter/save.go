package reporter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/maestro/internal/filelock"
	"github.com/harrison/maestro/internal/models"
)

// SaveResults writes a batch of results as a timestamped JSON file under
// dir and returns the written path. The write goes through the shared file
// lock so concurrent invocations targeting the same directory never corrupt
// each other's files.
func SaveResults(dir string, results []models.AgentResult) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("results_%s.json", timestampSlug()))
	if err := filelock.WriteJSON(path, results); err != nil {
		return "", fmt.Errorf("save results: %w", err)
	}
	return path, nil
}

// SaveWorkflowResult writes a workflow run summary named after the workflow.
func SaveWorkflowResult(dir string, result models.WorkflowResult) (string, error) {
	name := slugify(result.WorkflowName)
	if name == "" {
		name = "workflow"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", name, timestampSlug()))
	if err := filelock.WriteJSON(path, result); err != nil {
		return "", fmt.Errorf("save workflow result: %w", err)
	}
	return path, nil
}

func timestampSlug() string {
	return time.Now().Format("20060102_150405")
}

// slugify lowercases the name and keeps only filename-safe runes.
func slugify(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}
