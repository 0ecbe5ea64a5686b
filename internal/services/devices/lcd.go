package devices

import (
	"context"
	"net/http"
	"time"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
)

// LCD actions understood by the display service.
const (
	LCDInit        = "init"
	LCDLessonStart = "lesson-start"
	LCDLessonNext  = "lesson-next"
)

const lcdTimeout = 2 * time.Second

// LCDClient drives the progress display. Calls never fail the caller; the
// display is informational.
type LCDClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewLCDClient creates a client. A nil httpClient uses a 2s timeout.
func NewLCDClient(baseURL string, httpClient *http.Client) *LCDClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: lcdTimeout}
	}
	return &LCDClient{httpClient: httpClient, baseURL: baseURL}
}

// Init resets the display.
func (c *LCDClient) Init(ctx context.Context) {
	c.send(ctx, LCDInit, nil)
}

// LessonStart shows a program of total lessons.
func (c *LCDClient) LessonStart(ctx context.Context, total int) {
	c.send(ctx, LCDLessonStart, map[string]int{"total": total})
}

// LessonNext advances the progress bar.
func (c *LCDClient) LessonNext(ctx context.Context) {
	c.send(ctx, LCDLessonNext, nil)
}

func (c *LCDClient) send(ctx context.Context, action string, body any) {
	if c == nil || c.baseURL == "" {
		return
	}
	if _, err := do(ctx, c.httpClient, http.MethodPost, joinURL(c.baseURL, action), body); err != nil {
		logger.Debug("lcd update failed", "action", action, "error", err)
	}
}
