package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/maestro/internal/models"
)

// Workflows can be authored as Markdown documents:
//
//	# Workflow Name
//	Optional description paragraph.
//	## Step: step-name
//	```yaml
//	agent: pm
//	action: track_tasks
//	```
//	## Quality Gates
//	```yaml
//	max_fixmes: 5
//	```
//
// The first H1 names the workflow, the first paragraph after it becomes the
// description, and each "## Step:" heading contributes one step from its
// fenced yaml block.
func parseMarkdownWorkflow(source []byte) (models.Workflow, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var wf models.Workflow
	var pendingStep string
	inGates := false
	descriptionDone := false

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := extractHeadingText(node, source)
			switch {
			case node.Level == 1 && wf.Name == "":
				wf.Name = headingText
			case node.Level == 2 && strings.HasPrefix(headingText, "Step:"):
				pendingStep = strings.TrimSpace(strings.TrimPrefix(headingText, "Step:"))
				inGates = false
				descriptionDone = true
			case node.Level == 2 && strings.EqualFold(headingText, "Quality Gates"):
				pendingStep = ""
				inGates = true
				descriptionDone = true
			default:
				pendingStep = ""
				inGates = false
			}

		case *ast.Paragraph:
			if wf.Name != "" && !descriptionDone && wf.Description == "" {
				wf.Description = extractHeadingText(node, source)
				descriptionDone = true
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			if string(node.Language(source)) != "yaml" {
				return ast.WalkContinue, nil
			}
			body := fencedBlockContent(node, source)
			switch {
			case pendingStep != "":
				var step models.WorkflowStep
				if err := yaml.Unmarshal(body, &step); err != nil {
					return ast.WalkStop, fmt.Errorf("step %q: %w", pendingStep, err)
				}
				step.Name = pendingStep
				wf.Steps = append(wf.Steps, step)
				pendingStep = ""
			case inGates:
				if err := yaml.Unmarshal(body, &wf.QualityGates); err != nil {
					return ast.WalkStop, fmt.Errorf("quality gates: %w", err)
				}
				inGates = false
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return models.Workflow{}, err
	}

	return wf, nil
}

func extractHeadingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(buf.String())
}

func fencedBlockContent(n *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}
