package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates that no prompt template could be resolved.
// A missing template is a structural error: it fails the run before any
// document processing begins.
var ErrNotFound = errors.New("prompt template not found")

// Template is a parsed prompt file. The on-disk form is a YAML document with
// name, model, modelParameters, and messages fields:
//
//	name: doc-analysis
//	model: gpt-4o-mini
//	modelParameters:
//	  temperature: 0
//	messages:
//	  - role: system
//	    content: ...
//	  - role: user
//	    content: ...
type Template struct {
	Name            string         `yaml:"name"`
	Model           string         `yaml:"model"`
	ModelParameters map[string]any `yaml:"modelParameters"`
	Messages        []Message      `yaml:"messages"`

	// Path records where the template was loaded from, for provenance.
	Path string `yaml:"-"`
}

// Message is one chat message in a template.
type Message struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// Load parses a prompt template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("load prompt %s: %w", path, err)
	}

	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", path, err)
	}
	if len(tmpl.Messages) == 0 {
		return nil, fmt.Errorf("prompt %s has no messages", path)
	}
	tmpl.Path = path
	return &tmpl, nil
}

// Render returns the template messages with {placeholder} occurrences in
// message content replaced by the given values.
func (t *Template) Render(vars map[string]string) []Message {
	rendered := make([]Message, len(t.Messages))
	for i, msg := range t.Messages {
		content := msg.Content
		for key, val := range vars {
			content = strings.ReplaceAll(content, "{"+key+"}", val)
		}
		rendered[i] = Message{Role: msg.Role, Content: content}
	}
	return rendered
}

// Temperature returns the temperature model parameter if set.
func (t *Template) Temperature() (float64, bool) {
	v, ok := t.ModelParameters["temperature"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
