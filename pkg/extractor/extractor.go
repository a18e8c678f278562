// Package extractor turns a face image and a fingerprint image into a binary
// biometric template by calling an external feature-extraction service.
package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

// ErrExtraction wraps every failure to produce a template.
var ErrExtraction = errors.New("extractor: extraction failed")

// Extractor derives a fixed-length template from a pair of images.
type Extractor interface {
	Extract(ctx context.Context, face, fingerprint []byte) (biohash.Template, error)
}

type extractRequest struct {
	FaceImage        string `json:"face_image"`
	FingerprintImage string `json:"fingerprint_image"`
}

type extractResponse struct {
	Template string `json:"template"`
	Error    string `json:"error,omitempty"`
}

// Client calls POST {BaseURL}/extract with both images base64 encoded and
// expects the template back in its text encoding.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Bits is the template length the service must return.
	Bits int
}

// NewClient returns a Client expecting templates of bits length.
func NewClient(baseURL string, bits int) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Bits:       bits,
	}
}

func (c *Client) Extract(ctx context.Context, face, fingerprint []byte) (biohash.Template, error) {
	if len(face) == 0 || len(fingerprint) == 0 {
		return biohash.Template{}, fmt.Errorf("%w: both images are required", ErrExtraction)
	}

	body, err := json.Marshal(extractRequest{
		FaceImage:        base64.StdEncoding.EncodeToString(face),
		FingerprintImage: base64.StdEncoding.EncodeToString(fingerprint),
	})
	if err != nil {
		return biohash.Template{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return biohash.Template{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return biohash.Template{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	var out extractResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return biohash.Template{}, fmt.Errorf("%w: decode response (HTTP %d): %v", ErrExtraction, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return biohash.Template{}, fmt.Errorf("%w: HTTP %d: %s", ErrExtraction, resp.StatusCode, out.Error)
	}

	tpl, err := biohash.Decode(out.Template, c.Bits)
	if err != nil {
		return biohash.Template{}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return tpl, nil
}

// DecodeImage decodes a base64 image, accepting an optional data URL prefix
// such as "data:image/png;base64,".
func DecodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty image", ErrExtraction)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64: %v", ErrExtraction, err)
	}
	return data, nil
}
