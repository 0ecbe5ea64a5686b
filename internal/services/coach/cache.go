package coach

import (
	"strings"

	"github.com/j-veylop/yoga-coach-tui/internal/services/runs"
	"github.com/j-veylop/yoga-coach-tui/internal/store"
)

// FeedbackPrefix namespaces cached coach messages in the store.
const FeedbackPrefix = "ai_feedback_"

// FeedbackKey is the store key for runID's message.
func FeedbackKey(runID string) string {
	return FeedbackPrefix + runID
}

// FeedbackCache keeps one generated message per run so revisiting a
// summary does not call the model again.
type FeedbackCache struct {
	store *store.Store
}

// NewFeedbackCache caches in s.
func NewFeedbackCache(s *store.Store) *FeedbackCache {
	return &FeedbackCache{store: s}
}

// Get returns the cached message for runID.
func (c *FeedbackCache) Get(runID string) (string, bool) {
	var text string
	if !c.store.Get(FeedbackKey(runID), &text) || text == "" {
		return "", false
	}
	return text, true
}

// Set caches text for runID.
func (c *FeedbackCache) Set(runID, text string) {
	c.store.Set(FeedbackKey(runID), text)
}

// Remove drops runID's message.
func (c *FeedbackCache) Remove(runID string) {
	c.store.Remove(FeedbackKey(runID))
}

// Cleanup removes every cached message whose run is not in validRunIDs.
func (c *FeedbackCache) Cleanup(validRunIDs []string) {
	valid := make(map[string]struct{}, len(validRunIDs))
	for _, id := range validRunIDs {
		valid[id] = struct{}{}
	}
	for _, key := range c.store.Keys(FeedbackPrefix) {
		if _, ok := valid[strings.TrimPrefix(key, FeedbackPrefix)]; !ok {
			c.store.Remove(key)
		}
	}
}

// CleanupProgram is Cleanup restricted to the runs of program, so archiving
// one program never touches another program's messages.
func (c *FeedbackCache) CleanupProgram(program string, validRunIDs []string) {
	valid := make(map[string]struct{}, len(validRunIDs))
	for _, id := range validRunIDs {
		valid[id] = struct{}{}
	}
	for _, key := range c.store.Keys(FeedbackKey(program + "-")) {
		runID := strings.TrimPrefix(key, FeedbackPrefix)
		if !runs.BelongsTo(program, runID) {
			continue
		}
		if _, ok := valid[runID]; !ok {
			c.store.Remove(key)
		}
	}
}
