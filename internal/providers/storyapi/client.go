package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"storyclient/internal/domain"
	"storyclient/internal/infra"
	"storyclient/internal/middleware"
)

// ErrMissingBaseURL indicates that the client was configured without an API address.
var ErrMissingBaseURL = errors.New("storyapi: base url is required")

var tracer = otel.Tracer("storyclient/storyapi")

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// Options configures the story API client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	// Locale is sent as X-Locale/Accept-Language when set.
	Locale string
}

// Client performs HTTP calls against the story generation API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status code %d", e.Code)
	}
	return fmt.Sprintf("request failed with status code %d: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, domain.ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Code == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// NewClient constructs a client with sane defaults and injected dependencies.
// Outbound requests are stamped with a request id and logged.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("storyapi: invalid base url: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}

	var httpClient http.Client
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	} else {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = http.Client{Timeout: timeout}
	}
	transports := []middleware.Transport{middleware.RequestID, middleware.Logger(*logger)}
	if strings.TrimSpace(opts.Locale) != "" {
		transports = append(transports, middleware.Locale(opts.Locale))
	}
	httpClient.Transport = middleware.Chain(httpClient.Transport, transports...)

	return &Client{
		baseURL:    baseURL,
		httpClient: &httpClient,
		logger:     logger,
	}, nil
}

// CreateJob submits a story creation request and returns the initial job snapshot.
func (c *Client) CreateJob(ctx context.Context, theme string) (*domain.Job, error) {
	ctx, span := tracer.Start(ctx, "storyapi.create_job")
	defer span.End()

	var decoded createJobResponse
	if err := c.do(ctx, http.MethodPost, "/stories/create", createJobRequest{Theme: theme}, &decoded); err != nil {
		return nil, fail(span, err)
	}
	if strings.TrimSpace(decoded.JobID) == "" {
		return nil, fail(span, fmt.Errorf("storyapi: create job: %w: missing job_id", domain.ErrInvalidResponse))
	}

	span.SetAttributes(
		attribute.String("story.job_id", decoded.JobID),
		attribute.String("story.job_status", decoded.Status),
	)
	c.logger.Debug().
		Str("job_id", decoded.JobID).
		Str("status", decoded.Status).
		Msg("storyapi: job created")
	return &domain.Job{ID: decoded.JobID, Status: domain.JobStatus(decoded.Status)}, nil
}

// GetJob fetches the current status of a job. A job that is not visible yet
// yields an error matching IsNotFound.
func (c *Client) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	ctx, span := tracer.Start(ctx, "storyapi.get_job", trace.WithAttributes(attribute.String("story.job_id", jobID)))
	defer span.End()

	var decoded jobResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, &decoded); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("story.job_status", decoded.Status))
	if decoded.StoryID != nil {
		span.SetAttributes(attribute.Int64("story.id", *decoded.StoryID))
	}
	return &domain.Job{
		ID:      jobID,
		Status:  domain.JobStatus(decoded.Status),
		Error:   strings.TrimSpace(decoded.Error),
		StoryID: decoded.StoryID,
	}, nil
}

// GetCompleteStory fetches the fully assembled story payload.
func (c *Client) GetCompleteStory(ctx context.Context, storyID int64) (*domain.Story, error) {
	ctx, span := tracer.Start(ctx, "storyapi.get_complete_story", trace.WithAttributes(attribute.Int64("story.id", storyID)))
	defer span.End()

	var raw json.RawMessage
	path := "/stories/" + strconv.FormatInt(storyID, 10) + "/complete"
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("story.payload_bytes", len(raw)))
	return &domain.Story{ID: storyID, Content: raw}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("storyapi: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("storyapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storyapi: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("storyapi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Message: errorDetail(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("storyapi: decode response: %w: %w", domain.ErrInvalidResponse, err)
	}
	return nil
}

func errorDetail(raw []byte) string {
	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Message != "" {
			return detail.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		span.SetAttributes(attribute.Int("http.response.status_code", statusErr.Code))
	}
	return err
}
