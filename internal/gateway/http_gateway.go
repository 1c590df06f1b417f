package gateway

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
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/monitoring"
	"github.com/stemsi/survey-seeder/internal/response"
	"github.com/stemsi/survey-seeder/internal/service"
	"golang.org/x/time/rate"
)

var _ service.EntityGateway = (*HTTPGateway)(nil)

// ErrRetriesExhausted is wrapped by errors returned after the last retry.
var ErrRetriesExhausted = errors.New("max retries exceeded")

// HTTPConfig configures an HTTPGateway.
type HTTPConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	// RPS caps outgoing requests per second; zero disables limiting.
	RPS   float64
	Burst int
	// BackoffBase is the first retry delay, doubled on each further retry.
	BackoffBase time.Duration
}

// HTTPGateway creates entities through the catalog REST API.
//
// Throttling (429) and upstream unavailability (502, 503, 504) are retried
// with exponential backoff, as are transport errors. Any other non-2xx answer
// is a reported failure. Running out of retries is returned as an error.
type HTTPGateway struct {
	baseURL     string
	token       string
	client      *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	log         zerolog.Logger
}

// NewHTTPGateway creates a new HTTPGateway.
func NewHTTPGateway(cfg HTTPConfig, log zerolog.Logger) *HTTPGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &HTTPGateway{
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		log:         log.With().Str("component", "http_gateway").Logger(),
	}
}

// CreateSurvey implements service.EntityGateway.
func (g *HTTPGateway) CreateSurvey(ctx context.Context, meta model.SurveyMetadata) (model.CreationResult, error) {
	return g.post(ctx, "/surveys", meta)
}

// CreateSection implements service.EntityGateway.
func (g *HTTPGateway) CreateSection(ctx context.Context, surveyID string, meta model.SectionMetadata) (model.CreationResult, error) {
	return g.post(ctx, "/surveys/"+url.PathEscape(surveyID)+"/sections", meta)
}

// CreateQuestion implements service.EntityGateway.
func (g *HTTPGateway) CreateQuestion(ctx context.Context, payload model.QuestionPayload) (model.CreationResult, error) {
	return g.post(ctx, "/sections/"+url.PathEscape(payload.SectionID)+"/questions", payload)
}

// envelope is the subset of the catalog API response the gateway reads.
type envelope struct {
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func (g *HTTPGateway) post(ctx context.Context, path string, body any) (model.CreationResult, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return model.CreationResult{}, fmt.Errorf("encode request: %w", err)
	}
	endpoint := g.baseURL + path
	log := g.log.With().Str("path", path).Logger()

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt).Int("max_retries", g.maxRetries).Msg("Retrying request")
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return model.CreationResult{}, err
		}

		status, respBody, retryAfter, err := g.do(ctx, endpoint, raw)
		if err != nil {
			if ctx.Err() != nil {
				return model.CreationResult{}, ctx.Err()
			}
			lastErr = err
			monitoring.GatewayRetries.WithLabelValues("transport").Inc()
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("Request failed")
		} else if retryable(status) {
			lastErr = fmt.Errorf("catalog answered %d", status)
			monitoring.GatewayRetries.WithLabelValues(strconv.Itoa(status)).Inc()
			log.Warn().Int("status", status).Int("attempt", attempt+1).Msg("Catalog unavailable or throttling")
		} else {
			return decode(status, respBody)
		}

		if attempt == g.maxRetries {
			break
		}
		if err := sleep(ctx, g.backoff(attempt, retryAfter)); err != nil {
			return model.CreationResult{}, err
		}
	}

	log.Error().Err(lastErr).Int("max_retries", g.maxRetries).Msg("Giving up on request")
	return model.CreationResult{}, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

func (g *HTTPGateway) do(ctx context.Context, endpoint string, body []byte) (int, []byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// backoff doubles the base delay per attempt; a server supplied Retry-After wins when longer.
func (g *HTTPGateway) backoff(attempt int, retryAfter time.Duration) time.Duration {
	d := g.backoffBase << attempt
	if retryAfter > d {
		return retryAfter
	}
	return d
}

func decode(status int, body []byte) (model.CreationResult, error) {
	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if status >= 200 && status < 300 {
		if decodeErr != nil {
			return model.CreationResult{}, fmt.Errorf("decode response: %w", decodeErr)
		}
		if env.Data == nil || env.Data.ID == "" {
			return model.CreationResult{Success: false, Message: "catalog response has no id"}, nil
		}
		return model.CreationResult{Success: true, CreatedID: env.Data.ID, Message: "created"}, nil
	}

	msg := fmt.Sprintf("catalog rejected request with status %d", status)
	if decodeErr == nil && env.Error != nil {
		msg = fmt.Sprintf("%s: %s (%d)", env.Error.Code, env.Error.Message, status)
		if len(env.Error.Fields) > 0 {
			msg += fmt.Sprintf(" %v", env.Error.Fields)
		}
	}
	return model.CreationResult{Success: false, Message: msg}, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
