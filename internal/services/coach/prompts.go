// Package coach generates the end-of-program coaching message.
package coach

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
	"github.com/j-veylop/yoga-coach-tui/internal/models"
)

// Prompt file names looked up in the prompt directory.
const (
	SystemPromptFile = "system-prompt.txt"
	UserPromptFile   = "user-prompt.txt"

	summaryPlaceholder = "{summary}"
)

// Built-in prompts used when the files are missing.
const (
	DefaultSystemPrompt = "You are a gentle yoga coach who speaks with empathy and poetic warmth."
	DefaultUserPrompt   = "Here is the summary of today's practice:\n\n{summary}\n\n" +
		"In 3-4 gentle, poetic sentences, encourage me the way a coach would at the end of class."
)

// Prompts loads and caches the prompt templates.
type Prompts struct {
	dir string

	mu     sync.Mutex
	system string
	user   string
}

// NewPrompts reads templates from dir on first use.
func NewPrompts(dir string) *Prompts {
	return &Prompts{dir: dir}
}

// System returns the system prompt.
func (p *Prompts) System() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.system == "" {
		p.system = p.read(SystemPromptFile, DefaultSystemPrompt)
	}
	return p.system
}

// User returns the user prompt template.
func (p *Prompts) User() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == "" {
		p.user = p.read(UserPromptFile, DefaultUserPrompt)
	}
	return p.user
}

// Build fills the templates with summary rendered as indented JSON. Only
// the first placeholder is replaced.
func (p *Prompts) Build(summary models.SummaryData) (system, user string, err error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode summary: %w", err)
	}
	user = strings.Replace(p.User(), summaryPlaceholder, string(data), 1)
	return strings.TrimSpace(p.System()), strings.TrimSpace(user), nil
}

// read returns the file content, or fallback when it is missing or blank.
func (p *Prompts) read(name, fallback string) string {
	if p.dir == "" {
		return fallback
	}
	path := filepath.Join(p.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("prompt file not loaded, using default", "path", path, "error", err)
		return fallback
	}
	if strings.TrimSpace(string(data)) == "" {
		return fallback
	}
	return string(data)
}
