package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// HTTPEstimator calls an external pose-estimation model server over REST.
// The server receives the raw frame bytes and responds with the detected
// poses; the engine treats it as a black box.
type HTTPEstimator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEstimator creates an estimator client for the model server at
// baseURL (e.g. "http://localhost:5000").
func NewHTTPEstimator(baseURL string, timeout time.Duration) *HTTPEstimator {
	return &HTTPEstimator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type estimateResponse struct {
	Poses []Pose `json:"poses"`
}

// Estimate posts the frame to the model server's /estimate endpoint and
// decodes the detected poses. Frame dimensions travel as headers so the
// body stays the unmodified image bytes.
func (e *HTTPEstimator) Estimate(ctx context.Context, frame *Frame) ([]Pose, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/estimate", bytes.NewReader(frame.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to build estimate request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("X-Frame-Width", strconv.Itoa(frame.Width))
	req.Header.Set("X-Frame-Height", strconv.Itoa(frame.Height))

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var decoded estimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode estimate response: %w", err)
	}
	return decoded.Poses, nil
}
