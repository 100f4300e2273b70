package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/maestro/internal/models"
)

// LoadWorkflow reads a workflow definition from a YAML or Markdown file and
// validates its dependency graph. A workflow that fails validation is never
// returned: bad references surface as a *ValidationError before any step
// could run.
func LoadWorkflow(path string) (models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Workflow{}, NewConfigError(path, "failed to read workflow file", err)
	}

	var wf models.Workflow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		wf, err = parseMarkdownWorkflow(data)
		if err != nil {
			return models.Workflow{}, NewConfigError(path, "failed to parse workflow markdown", err)
		}
	default:
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return models.Workflow{}, NewConfigError(path, "failed to parse workflow file", err)
		}
	}

	if wf.Name == "" {
		wf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(wf.Steps) == 0 {
		return models.Workflow{}, NewValidationError(wf.Name, []string{"workflow has no steps"})
	}

	if problems := wf.ValidateDependencies(); len(problems) > 0 {
		return models.Workflow{}, NewValidationError(wf.Name, problems)
	}
	return wf, nil
}
