// Package detector wraps the HTTP fight-detection inference service.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

// Client calls the model-serving API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a detector client against the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Predict submits a video clip for inference. The threshold is forwarded so
// the model server applies the same cut-off the platform alerts on.
func (c *Client) Predict(ctx context.Context, filename string, clip io.Reader, threshold float64) (*models.Prediction, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := io.Copy(part, clip); err != nil {
		return nil, fmt.Errorf("copy clip into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/predict?%s", c.baseURL, url.Values{
		"threshold": []string{strconv.FormatFloat(threshold, 'f', -1, 64)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "detector unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("detector returned %d: %s", resp.StatusCode, string(payload)))
	}

	var prediction models.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "detector returned malformed response")
	}
	return &prediction, nil
}
