// Package client talks to the external face-recognition HTTP API. The API
// contract (multipart POST with a "file" field, JSON response) is owned by
// the server; this client only moves bytes and decodes the answer.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/andresmejia3/facebatch/internal/logging"
	"github.com/andresmejia3/facebatch/internal/types"
)

// Options configures a Client.
type Options struct {
	APIURL           string
	Timeout          time.Duration
	DisableSSLVerify bool
}

// Client issues recognition requests against a single endpoint
type Client struct {
	apiURL     string
	timeout    time.Duration
	httpClient *http.Client
}

// New builds a Client. The per-request timeout is enforced via context so a
// caller's cancellation (Ctrl+C) also aborts in-flight requests.
func New(opts Options) *Client {
	transport := http.DefaultTransport
	if opts.DisableSSLVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiURL:  opts.APIURL,
		timeout: timeout,
		httpClient: &http.Client{
			Transport: transport,
		},
	}
}

// Recognize uploads one image file and returns the decoded API response.
func (c *Client) Recognize(ctx context.Context, filePath string) (*types.RecognitionResponse, error) {
	imageData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	logging.Debugf("recognition request for %s took %s", filepath.Base(filePath), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// Some deployments wrap errors in a JSON object
		var apiErr types.ErrorResult
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API returned error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API returned error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result types.RecognitionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Ping checks whether the recognition API is reachable. Any HTTP response
// counts as reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}
