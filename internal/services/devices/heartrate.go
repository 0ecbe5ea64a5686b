package devices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HeartRateReading is the latest sample of the selected band.
type HeartRateReading struct {
	Stats      map[string]int `json:"stats,omitempty"`
	DeviceID   string         `json:"device_id"`
	DeviceName string         `json:"device_name"`
	Timestamp  string         `json:"timestamp"`
	HeartRate  int            `json:"heart_rate"`
	RSSI       int            `json:"rssi"`
}

// HeartRateClient polls the heart-rate service.
type HeartRateClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewHeartRateClient creates a client. A nil httpClient uses a 10s timeout.
func NewHeartRateClient(baseURL string, httpClient *http.Client) *HeartRateClient {
	return &HeartRateClient{httpClient: defaultClient(httpClient), baseURL: baseURL}
}

// Current returns the latest reading, or nil when no band is selected.
func (c *HeartRateClient) Current(ctx context.Context) (*HeartRateReading, error) {
	data, err := do(ctx, c.httpClient, http.MethodGet, joinURL(c.baseURL, "heartrate/current"), nil)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var reading HeartRateReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("failed to parse heart rate: %w", err)
	}
	return &reading, nil
}
