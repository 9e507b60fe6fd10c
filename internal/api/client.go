package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/config"
	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
	"github.com/rbc-easyrent/signiflow-order-service/internal/tokencache"
)

// SigniFlowClient talks to the SigniFlow REST service: Login for a token,
// FullWorkflow for submission. The token travels in the request body, not as
// a transport-level credential. Both calls share one circuit breaker so a
// flapping remote trips fast instead of queueing timeouts.
type SigniFlowClient struct {
	// Authentication is quick; document upload bodies can be large.
	authHTTP   *http.Client
	submitHTTP *http.Client

	cfg     *config.Config
	cache   tokencache.Cache
	breaker *gobreaker.CircuitBreaker
	nowFunc func() time.Time
}

func NewSigniFlowClient(cfg *config.Config, cache tokencache.Cache) *SigniFlowClient {
	return &SigniFlowClient{
		authHTTP:   &http.Client{Timeout: 30 * time.Second},
		submitHTTP: &http.Client{Timeout: 60 * time.Second},
		cfg:        cfg,
		cache:      cache,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "signiflow",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				zap.L().Warn("circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		nowFunc: time.Now,
	}
}

// Token returns the cached token envelope or performs a fresh login.
func (c *SigniFlowClient) Token(ctx context.Context) (models.TokenObject, error) {
	if tok, ok := c.cache.Get(c.cfg.CacheKey()); ok {
		zap.L().Debug("using cached token")
		return tok, nil
	}
	return c.Login(ctx)
}

// Login authenticates with the configured credentials, normalizes the loose
// response envelope into a TokenObject and caches the full envelope until
// its computed expiry.
func (c *SigniFlowClient) Login(ctx context.Context) (models.TokenObject, error) {
	body, err := json.Marshal(models.LoginRequest{
		UserNameField: c.cfg.Username,
		PasswordField: c.cfg.Password,
	})
	if err != nil {
		return models.TokenObject{}, flowerrors.Authentication("failed to encode login payload", err)
	}

	resp, raw, err := c.post(ctx, c.authHTTP, c.cfg.LoginURL(), body)
	if err != nil {
		return models.TokenObject{}, flowerrors.Authentication("Failed to authenticate. Please check username and password.", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.TokenObject{}, flowerrors.Authentication(
			fmt.Sprintf("Login failed with HTTP %d", resp.StatusCode), nil)
	}

	var login models.LoginResponse
	if err := json.Unmarshal(raw, &login); err != nil {
		return models.TokenObject{}, flowerrors.Authentication("invalid JSON in login response", err)
	}

	tok, ok := login.Token()
	if !ok || !models.IsSuccessCode(login.ResultField, true) {
		return models.TokenObject{}, flowerrors.Authentication(
			"Login response did not contain a valid token. ResultField: "+models.RawString(login.ResultField), nil)
	}

	ttl := tokencache.EffectiveTTL(tok.TokenExpiryField, c.nowFunc())
	c.cache.Put(c.cfg.CacheKey(), tok, ttl)
	zap.L().Info("login successful, token cached",
		zap.Duration("ttl", ttl),
	)
	return tok, nil
}

// Submit posts the FullWorkflow request and classifies the outcome:
// transport failure or non-2xx → transport error; 2xx with application-level
// failure → api error (invalid-token additionally purges the token cache);
// 2xx with result code 1 → SigningResult.
func (c *SigniFlowClient) Submit(ctx context.Context, req *models.FullWorkflowRequest) (*models.SigningResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, flowerrors.Transport("failed to encode submission payload", err)
	}

	resp, raw, err := c.post(ctx, c.submitHTTP, c.cfg.FullWorkflowURL(), body)
	if err != nil {
		return nil, flowerrors.Transport("SigniFlow request failed", err)
	}

	var envelope models.FullWorkflowResponse
	if len(raw) > 0 {
		// Best-effort decode; a non-JSON error body still classifies below.
		_ = json.Unmarshal(raw, &envelope)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if envelope.Message != "" {
			msg += ": " + envelope.Message
		} else if len(raw) > 0 {
			msg += ": " + snippet(raw, 200)
		}
		return nil, flowerrors.Transport(msg, nil)
	}

	if models.IsSuccessCode(envelope.ResultField, false) {
		result := &models.SigningResult{
			DocID:      models.RawString(envelope.DocIDField),
			WorkflowID: models.RawString(envelope.WorkflowIDField),
		}
		zap.L().Info("workflow submitted",
			zap.String("doc_id", result.DocID),
			zap.String("workflow_id", result.WorkflowID),
		)
		return result, nil
	}

	errMsg := models.RawString(envelope.ResultField)
	if errMsg == "" {
		errMsg = envelope.ResultFieldMessage
	}
	if errMsg == "" {
		errMsg = "Unknown error - ResultField: " + string(envelope.ResultField)
	}

	apiErr := flowerrors.API(errMsg)
	if flowerrors.IsInvalidToken(apiErr) {
		// Force a fresh login on the next attempt.
		c.cache.Invalidate(c.cfg.CacheKey())
		zap.L().Warn("token rejected by SigniFlow, cache invalidated")
	}
	return nil, apiErr
}

// post runs one POST through the circuit breaker and drains the body.
func (c *SigniFlowClient) post(ctx context.Context, client *http.Client, url string, body []byte) (*http.Response, []byte, error) {
	type postResult struct {
		resp *http.Response
		raw  []byte
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		// A server-side 5xx counts as a breaker failure; 4xx means the
		// remote is up and answering.
		if resp.StatusCode >= 500 {
			return nil, &httpStatusError{resp: resp, raw: raw}
		}
		return postResult{resp: resp, raw: raw}, nil
	})
	if err != nil {
		var statusErr *httpStatusError
		if errors.As(err, &statusErr) {
			return statusErr.resp, statusErr.raw, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, nil, fmt.Errorf("signiflow temporarily unavailable: %w", err)
		}
		return nil, nil, err
	}

	pr := res.(postResult)
	return pr.resp, pr.raw, nil
}

type httpStatusError struct {
	resp *http.Response
	raw  []byte
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("signiflow HTTP %d", e.resp.StatusCode)
}

func snippet(raw []byte, n int) string {
	if len(raw) > n {
		raw = raw[:n]
	}
	return string(raw)
}
