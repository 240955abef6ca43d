package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vitasurvey/internal/model"
)

// Forwarder hands a finished survey to an external system before it is stored
type Forwarder interface {
	Forward(ctx context.Context, submission *model.Submission) error
}

// SubmissionForwarder posts submissions to the storefront backend. The session id is
// sent as Idempotency-Key so a retried submission is not recorded twice.
type SubmissionForwarder struct {
	url        string
	token      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewSubmissionForwarder creates a forwarder for url
func NewSubmissionForwarder(url, token string, timeout time.Duration, maxRetries int, logger *zap.Logger) *SubmissionForwarder {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &SubmissionForwarder{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logger,
	}
}

// MaxDuration is the longest Forward can run: every attempt timing out plus the
// backoff between them
func (f *SubmissionForwarder) MaxDuration() time.Duration {
	waits := time.Duration(math.Pow(2, float64(f.maxRetries-1))-1) * f.backoff
	return time.Duration(f.maxRetries)*f.httpClient.Timeout + waits
}

// forwardBody is the wire format of the storefront's survey submit endpoint
type forwardBody struct {
	MemberID  string               `json:"memberId"`
	SessionID string               `json:"sessionId"`
	Responses []model.ResponseItem `json:"responses"`
}

// Forward posts submission, retrying on transport errors, 429 and 5xx
func (f *SubmissionForwarder) Forward(ctx context.Context, submission *model.Submission) error {
	body, err := json.Marshal(forwardBody{
		MemberID:  submission.MemberID,
		SessionID: submission.SessionID,
		Responses: submission.Responses,
	})
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * f.backoff
			f.logger.Warn("retrying submission forward",
				zap.String("session_id", submission.SessionID),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
				zap.Error(lastErr))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", submission.SessionID)
		if f.token != "" {
			req.Header.Set("Authorization", "Bearer "+f.token)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("submission endpoint returned %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return fmt.Errorf("submission endpoint returned %d: %s", resp.StatusCode, respBody)
		}
		return nil
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
