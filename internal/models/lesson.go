package models

import "time"

// Lesson is one catalog entry.
type Lesson struct {
	Slug        string `json:"slug" yaml:"slug"`
	Title       string `json:"title" yaml:"title"`
	VideoID     string `json:"videoId,omitempty" yaml:"videoId,omitempty"`
	DurationSec int    `json:"durationSec" yaml:"durationSec"`
}

// Duration returns DurationSec as a time.Duration.
func (l Lesson) Duration() time.Duration {
	return time.Duration(l.DurationSec) * time.Second
}

// DisplayTitle falls back to the slug when no title is set.
func (l Lesson) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	return l.Slug
}

// Program is an ordered list of lessons.
type Program struct {
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Lessons []Lesson `json:"lessons" yaml:"lessons"`
}

// Order returns the lesson slugs in catalog order.
func (p Program) Order() []string {
	order := make([]string, len(p.Lessons))
	for i, l := range p.Lessons {
		order[i] = l.Slug
	}
	return order
}
