package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/deftunes/goextract/internal/config"
	"github.com/deftunes/goextract/internal/errors"
	"github.com/deftunes/goextract/internal/logger"
	"github.com/deftunes/goextract/internal/ratelimit"
	"github.com/deftunes/goextract/internal/retry"
	"github.com/deftunes/goextract/internal/types"
)

// APISource extracts user and session records from the sessions API.
// Requests are rate limited to the configured budget and retried with
// exponential backoff on transport failures and non-2xx statuses.
type APISource struct {
	baseURL string
	log     *logger.Logger
	client  *http.Client
	limiter *ratelimit.Limiter
	retry   *retry.Policy
}

// NewAPISource builds an APISource from the API configuration. The HTTP
// client carries the configured timeout and a transport tuned for repeated
// requests against a single host.
func NewAPISource(cfg *config.APIConfig, log *logger.Logger) *APISource {
	apiLog := log.Named("api")
	return &APISource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     apiLog,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: ratelimit.NewLimiter(float64(cfg.RateLimit), cfg.RateLimit),
		retry:   retry.New(cfg.MaxRetries, time.Second, 2.0, apiLog),
	}
}

// ExtractUsers pulls user records registered inside the date window.
func (s *APISource) ExtractUsers(ctx context.Context, startDate, endDate string) ([]*types.Record, error) {
	return s.extractDataset(ctx, "users", startDate, endDate)
}

// ExtractSessions pulls session records for the date window.
func (s *APISource) ExtractSessions(ctx context.Context, startDate, endDate string) ([]*types.Record, error) {
	return s.extractDataset(ctx, "sessions", startDate, endDate)
}

// ValidateConnection probes the API health endpoint. Failures are logged and
// reported as false, never as an error: the caller decides whether a dead
// backend is fatal.
func (s *APISource) ValidateConnection(ctx context.Context) bool {
	if _, err := s.request(ctx, "health", nil); err != nil {
		s.log.Warnf("API connection validation failed: %v", err)
		return false
	}
	return true
}

// extractDataset fetches one dataset for the window and normalizes the
// response into records. Normalization happens outside the retry loop: a
// malformed body from a 2xx response will not change on a second request.
func (s *APISource) extractDataset(ctx context.Context, resource, startDate, endDate string) ([]*types.Record, error) {
	done := s.log.TimeOperation(fmt.Sprintf("extracting %s from %s to %s", resource, startDate, endDate))
	defer done()

	params := url.Values{}
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	body, err := s.request(ctx, resource, params)
	if err != nil {
		return nil, err
	}

	records, err := normalizeResponse(body, resource)
	if err != nil {
		return nil, errors.NewAPIError(resource, "normalizing response", err)
	}

	s.log.Infof("Extracted %d %s", len(records), resource)
	return records, nil
}

// request performs a rate-limited GET against the endpoint, retrying per the
// configured policy, and returns the raw response body.
func (s *APISource) request(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var body []byte
	err := s.retry.Do(ctx, "GET /"+endpoint, func() error {
		b, rerr := s.doRequest(ctx, endpoint, params)
		if rerr != nil {
			return rerr
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doRequest issues a single GET. Every failure mode surfaces as an APIError
// naming the endpoint so retry logs and callers see a uniform error kind.
func (s *APISource) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.NewAPIError(endpoint, "rate limit wait interrupted", err)
	}

	reqURL := s.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewAPIError(endpoint, "building request", err)
	}
	req.Header.Set("User-Agent", "DeFtunes-Pipeline/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewAPIError(endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError(endpoint, "reading response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAPIError(endpoint, fmt.Sprintf("API returned status %d", resp.StatusCode), nil)
	}

	return respBody, nil
}

// normalizeResponse converts an API payload into a flat record slice. The
// API is inconsistent across endpoints and versions, so three shapes are
// accepted: an envelope keyed by the resource name, an envelope keyed by
// "data", and a bare array. An envelope with neither key yields no records.
func normalizeResponse(body []byte, resource string) ([]*types.Record, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var records []*types.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decoding record array: %w", err)
		}
		if records == nil {
			records = []*types.Record{}
		}
		return records, nil

	case '{':
		var envelope types.Record
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decoding envelope: %w", err)
		}
		value, ok := envelope.Get(resource)
		if !ok {
			value, ok = envelope.Get("data")
		}
		if !ok {
			return []*types.Record{}, nil
		}
		return recordsFromValue(value)

	default:
		return nil, fmt.Errorf("response is neither a JSON object nor an array")
	}
}

// recordsFromValue converts a decoded envelope value into records. Envelope
// keys must hold arrays of objects.
func recordsFromValue(value any) ([]*types.Record, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("envelope value is %T, expected an array of records", value)
	}
	records := make([]*types.Record, 0, len(items))
	for i, item := range items {
		rec, ok := item.(*types.Record)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, expected a JSON object", i, item)
		}
		records = append(records, rec)
	}
	return records, nil
}
