package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type predictRequest struct {
	ImageData string          `json:"image_data"`
	Metadata  predictMetadata `json:"metadata"`
}

type predictMetadata struct {
	Source string `json:"source"`
}

// Client submits images to the external classification endpoint over HTTP.
// It performs no persistence; recording outcomes is the case lifecycle's job.
type Client struct {
	http    *http.Client
	baseURL string
	source  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a classification client from the given configuration.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{},
		baseURL: cfg.BaseURL,
		source:  cfg.Source,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("system", "analysis"),
	}
}

// Classify sends image bytes to the /predict endpoint and returns the
// normalized result. Failures are typed: TimeoutError when the configured
// window elapses, ServiceError for transport or service-reported failures,
// ValidationError when the image itself is rejected, and SchemaError when
// the response matches no known generation.
func (c *Client) Classify(ctx context.Context, image []byte) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(predictRequest{
		ImageData: base64.StdEncoding.EncodeToString(image),
		Metadata:  predictMetadata{Source: c.source},
	})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("submitting image for analysis", "bytes", len(image), "url", c.baseURL)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Configured: c.timeout}
		}
		return nil, &ServiceError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &ServiceError{Status: resp.StatusCode}
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		// The window can elapse mid-body after headers already arrived.
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Configured: c.timeout}
		}
		return nil, &SchemaError{Missing: "valid JSON body"}
	}

	if decoded.Result.Status == "error" {
		return nil, serviceFailure(&decoded.Result)
	}

	result, err := normalize(c.logger, &decoded)
	if err != nil {
		return nil, err
	}

	c.logger.Info("analysis completed",
		"request_id", decoded.Result.RequestID,
		"structured", result.Structured(),
	)
	return result, nil
}

// serviceFailure classifies a service-reported error as either an image
// validation rejection or an infrastructure failure.
func serviceFailure(res *apiResult) error {
	msg := res.Error
	if msg == "" {
		msg = res.ErrorMessage
	}
	if msg == "" {
		msg = "unknown analysis service error"
	}

	if isValidationFailure(res) {
		return &ValidationError{Code: res.ErrorCode, Message: msg}
	}
	return &ServiceError{Code: res.ErrorCode, Message: msg}
}

func isValidationFailure(res *apiResult) bool {
	switch res.ErrorType {
	case "validation", "image_validation":
		return true
	}
	switch res.ErrorCode {
	case "invalid_image", "image_invalid", "not_cervical_image":
		return true
	}
	return res.ImageInfo != nil && res.ImageInfo.Valid != nil && !*res.ImageInfo.Valid
}
