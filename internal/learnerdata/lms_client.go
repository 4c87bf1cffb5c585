package learnerdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// LMSConfig configures the remote learning-management API client.
type LMSConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// StatusError is returned when the LMS answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lms %s: http %d: %s", e.Path, e.StatusCode, e.Body)
}

// LMSClient reads learner data from the remote LMS REST API.
// Retries and timeouts live here; callers never retry.
type LMSClient struct {
	rest *resty.Client
	log  zerolog.Logger
}

// NewLMSClient creates an LMSClient.
func NewLMSClient(cfg LMSConfig, log zerolog.Logger) (*LMSClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("lms base URL required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}

	c := &LMSClient{log: log.With().Str("component", "lms_client").Logger()}

	c.rest = resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryBackoff).
		SetRetryMaxWaitTime(cfg.RetryBackoff * 8).
		AddRetryCondition(retryable).
		AddRetryHook(func(resp *resty.Response, err error) {
			ev := c.log.Warn().Err(err)
			if resp != nil && resp.Request != nil {
				ev = ev.Str("path", resp.Request.URL).Int("status", resp.StatusCode()).Int("attempt", resp.Request.Attempt)
			}
			ev.Msg("Retrying LMS request")
		})
	if cfg.APIKey != "" {
		c.rest.SetAuthToken(cfg.APIKey)
	}
	return c, nil
}

// retryable retries transport errors, 5xx and 429.
func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func (c *LMSClient) GetLearnerByEmail(ctx context.Context, email string) (*model.Learner, error) {
	out, err := getJSON[*model.Learner](ctx, c, "/learners", map[string]string{"email": email})
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LMSClient) GetLearnerEnrollments(ctx context.Context, learnerID uuid.UUID) ([]model.Enrollment, error) {
	return getList[model.Enrollment](ctx, c, learnerPath(learnerID, "enrollments"), nil)
}

func (c *LMSClient) GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	out, err := getJSON[*model.Product](ctx, c, "/products/"+productID.String(), nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}
	return out, nil
}

func (c *LMSClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	return getList[model.Product](ctx, c, "/products", map[string]string{"published": "true"})
}

func (c *LMSClient) GetLearnerUsage(ctx context.Context, learnerID uuid.UUID) ([]model.UsageRecord, error) {
	return getList[model.UsageRecord](ctx, c, learnerPath(learnerID, "usage"), nil)
}

func (c *LMSClient) GetLearnerDiscussions(ctx context.Context, learnerID uuid.UUID) ([]model.Discussion, error) {
	return getList[model.Discussion](ctx, c, learnerPath(learnerID, "discussions"), nil)
}

func (c *LMSClient) GetLearnerQuizReports(ctx context.Context, learnerID uuid.UUID) ([]model.QuizReport, error) {
	return getList[model.QuizReport](ctx, c, learnerPath(learnerID, "quiz-reports"), nil)
}

func (c *LMSClient) GetLearnerTransactions(ctx context.Context, learnerID uuid.UUID) ([]model.Transaction, error) {
	return getList[model.Transaction](ctx, c, learnerPath(learnerID, "transactions"), nil)
}

func (c *LMSClient) GetLearnerProgressReports(ctx context.Context, learnerID uuid.UUID) ([]model.ProgressReport, error) {
	return getList[model.ProgressReport](ctx, c, learnerPath(learnerID, "progress"), nil)
}

func (c *LMSClient) GetLearnerCertificates(ctx context.Context, learnerID uuid.UUID) ([]model.Certificate, error) {
	return getList[model.Certificate](ctx, c, learnerPath(learnerID, "certificates"), nil)
}

// -------------------- helpers --------------------

func learnerPath(learnerID uuid.UUID, resource string) string {
	return "/learners/" + learnerID.String() + "/" + resource
}

func getList[T any](ctx context.Context, c *LMSClient, path string, query map[string]string) ([]T, error) {
	out, err := getJSON[[]T](ctx, c, path, query)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// getJSON performs a GET and unwraps the {"data": ...} envelope.
func getJSON[T any](ctx context.Context, c *LMSClient, path string, query map[string]string) (T, error) {
	var zero T
	env := &envelope[T]{}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(query).
		ForceContentType("application/json").
		SetResult(env).
		Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, fmt.Errorf("lms %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > 256 {
			body = body[:256]
		}
		return zero, &StatusError{StatusCode: resp.StatusCode(), Path: path, Body: body}
	}
	return env.Data, nil
}
