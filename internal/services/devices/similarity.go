package devices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
)

// Score is one pose similarity result.
type Score struct {
	Percent   float64
	BodyFound bool
}

type similarityRequest struct {
	ImagePath  string `json:"image_path"`
	TargetPose string `json:"target_pose"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
	BodyFound  bool    `json:"body_found"`
}

// SimilarityClient grabs a camera frame and scores it against a target pose.
// The scorer reads the frame from disk, so both services must share
// SnapshotDir.
type SimilarityClient struct {
	httpClient    *http.Client
	cameraURL     string
	similarityURL string
	snapshotDir   string
}

// NewSimilarityClient creates a client. A nil httpClient uses a 10s timeout.
func NewSimilarityClient(cameraURL, similarityURL, snapshotDir string, httpClient *http.Client) *SimilarityClient {
	return &SimilarityClient{
		httpClient:    defaultClient(httpClient),
		cameraURL:     cameraURL,
		similarityURL: similarityURL,
		snapshotDir:   snapshotDir,
	}
}

// Score snaps a frame and scores it against slug's target pose.
func (c *SimilarityClient) Score(ctx context.Context, slug string) (Score, error) {
	frame, err := do(ctx, c.httpClient, http.MethodGet, joinURL(c.cameraURL, "snap"), nil)
	if err != nil {
		return Score{}, fmt.Errorf("snapshot failed: %w", err)
	}

	path, err := c.writeFrame(frame)
	if err != nil {
		return Score{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Debug("failed to remove snapshot", "path", path, "error", err)
		}
	}()

	data, err := do(ctx, c.httpClient, http.MethodPost, joinURL(c.similarityURL, "similarity"),
		similarityRequest{ImagePath: path, TargetPose: slug})
	if err != nil {
		return Score{}, fmt.Errorf("similarity failed: %w", err)
	}

	var resp similarityResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Score{}, fmt.Errorf("failed to parse similarity response: %w", err)
	}
	return Score{Percent: resp.Similarity, BodyFound: resp.BodyFound}, nil
}

func (c *SimilarityClient) writeFrame(frame []byte) (string, error) {
	if err := os.MkdirAll(c.snapshotDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	f, err := os.CreateTemp(c.snapshotDir, "snap_*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if _, err := f.Write(frame); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close snapshot: %w", err)
	}
	return f.Name(), nil
}
