package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	errs "github.com/MPAN-cpu/Automation-Test/pkg/errors"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/retry"
)

// Client fetches the CSV export of publicly shared Google Sheets
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	retrier    *retry.HTTPRetrier
	logger     logger.Logger
}

// NewClient creates a new sheets client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "sheetwatch/2.0 (+https://github.com/MPAN-cpu/Automation-Test)",
			"Accept":          "text/csv,text/plain;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
		},
		retrier: retry.NewHTTPRetrier(3, log),
		logger:  log,
	}
}

// NewClientWithConfig creates a sheets client wired from the application
// configuration: fetch timeout, user agent and retry policy.
func NewClientWithConfig(cfg *config.Config, log logger.Logger) *Client {
	client := NewClient(cfg.HTTP.Timeout(), log)

	if cfg.HTTP.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.HTTP.UserAgent)
	}

	backoff := &retry.ExponentialBackoff{
		BaseDelay:    cfg.Retry.InitialBackoff(),
		MaxDelay:     cfg.Retry.MaxBackoff(),
		Multiplier:   cfg.Retry.Multiplier,
		JitterFactor: 0.1,
	}
	// Rate limiting gets a longer leash than other transient failures
	rateLimitBackoff := &retry.ExponentialBackoff{
		BaseDelay:    cfg.Retry.InitialBackoff() * 15,
		MaxDelay:     cfg.Retry.MaxBackoff() * 2,
		Multiplier:   cfg.Retry.Multiplier,
		JitterFactor: 0.3,
	}
	client.retrier = retry.NewHTTPRetrier(cfg.Retry.MaxAttempts, log).
		WithErrorTypeBackoff(&retry.ErrorTypeBackoff{
			NetworkErrorBackoff: backoff,
			ServerErrorBackoff:  backoff,
			RateLimitBackoff:    rateLimitBackoff,
			DefaultBackoff:      backoff,
		})

	return client
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying HTTP client. Integration tests use
// this to point the export fetch at a local server.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	// Set all headers
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	// Log the request
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	// Log successful response
	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("access denied", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeAccessDenied,
			Message: "sheet is not shared publicly (share it with 'Anyone with the link can view')",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("spreadsheet not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "spreadsheet or sheet not found (check the spreadsheet ID and sheet name)",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected response status", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.String(),
			})
			return &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// FetchCSV fetches the raw CSV export of the named sheet, retrying
// transient failures with error-type specific backoff
func (c *Client) FetchCSV(ctx context.Context, spreadsheetID, sheetName string) ([]byte, error) {
	url := GetCSVExportURL(spreadsheetID, sheetName)

	c.logger.DebugWithFields("fetching CSV export", map[string]interface{}{
		"sheet_name": sheetName,
		"url":        url,
	})

	var data []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("failed to create request: %v", err),
				Code:    0,
			}
		}

		resp, err := c.doRequest(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := c.checkResponseStatus(resp); err != nil {
			return err
		}

		// A sheet that is not shared publicly redirects to a login page
		// which comes back 200 with an HTML body
		if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
			c.logger.WarnWithFields("export returned HTML instead of CSV", map[string]interface{}{
				"url":          url,
				"content_type": ct,
			})
			return &errs.Error{
				Type:    errs.ErrorTypeAccessDenied,
				Message: "sheet is not shared publicly (share it with 'Anyone with the link can view')",
				Code:    resp.StatusCode,
			}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &errs.Error{
				Type:    errs.ErrorTypeNetwork,
				Message: fmt.Sprintf("failed to read response body: %v", err),
				Code:    resp.StatusCode,
			}
		}

		data = body
		return nil
	}

	if err := c.retrier.DoWithErrorType(ctx, op); err != nil {
		c.logger.ErrorWithFields("failed to fetch CSV export", map[string]interface{}{
			"sheet_name": sheetName,
			"error":      err.Error(),
		})
		return nil, err
	}

	return data, nil
}

// FetchSnapshot fetches and parses the current content of the named sheet
func (c *Client) FetchSnapshot(ctx context.Context, spreadsheetID, sheetName string) (*Snapshot, error) {
	data, err := c.FetchCSV(ctx, spreadsheetID, sheetName)
	if err != nil {
		return nil, err
	}

	snapshot, err := ParseCSV(data)
	if err != nil {
		// Create a preview of the body for debugging
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse CSV export", map[string]interface{}{
			"sheet_name":   sheetName,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, err
	}

	c.logger.DebugWithFields("successfully fetched sheet snapshot", map[string]interface{}{
		"sheet_name": sheetName,
		"rows":       snapshot.RowCount(),
		"columns":    snapshot.ColumnCount(),
	})

	return snapshot, nil
}

// ParseCSV parses raw CSV export content into a Snapshot. Empty content
// yields an empty Snapshot, not an error; callers decide how to treat a
// sheet with no data.
func ParseCSV(data []byte) (*Snapshot, error) {
	// The gviz export may lead with a UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if len(bytes.TrimSpace(data)) == 0 {
		return &Snapshot{}, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse CSV: %v", err),
			Code:    0,
		}
	}

	if len(records) == 0 {
		return &Snapshot{}, nil
	}

	return &Snapshot{
		Header: records[0],
		Rows:   records[1:],
	}, nil
}
