package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// checksum is the X-VERIFY value: sha256(payload + path + salt) + "###" + index.
func checksum(payload, path, saltKey, saltIndex string) string {
	sum := sha256.Sum256([]byte(payload + path + saltKey))
	return hex.EncodeToString(sum[:]) + "###" + saltIndex
}

func encodePayload(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("phonepe returned status %d: %s", e.status, e.body)
}

func transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	// Anything else came from the transport.
	return true
}

// call sends one request and retries transport failures and 5xx responses
// with exponential backoff.
func (a *Adapter) call(ctx context.Context, op, method, path, verify string, body []byte) (*apiResponse, error) {
	var lastErr error
	delay := a.opts.RetryBaseDelay
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			a.logger.Warn("retrying phonepe call", "op", op, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, a.providerError(op, "", ctx.Err(), false)
			case <-time.After(delay):
			}
			delay *= 2
			if delay > a.opts.RetryMaxDelay {
				delay = a.opts.RetryMaxDelay
			}
		}

		resp, err := a.do(ctx, method, path, verify, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !transient(err) {
			return nil, a.providerError(op, "", err, false)
		}
	}
	return nil, a.providerError(op, "", lastErr, true)
}

func (a *Adapter) do(ctx context.Context, method, path, verify string, body []byte) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerVerify, verify)
	if method == http.MethodGet {
		req.Header.Set(headerMerchantID, a.cfg.MerchantID)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, &httpStatusError{status: resp.StatusCode, body: string(raw)}
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &httpStatusError{status: resp.StatusCode, body: string(raw)}
		}
		return nil, fmt.Errorf("failed to parse phonepe response: %w", err)
	}
	return &out, nil
}

func (a *Adapter) providerError(op, code string, err error, isTransient bool) *domain.ProviderError {
	return &domain.ProviderError{
		Provider:  Name,
		Op:        op,
		Code:      code,
		Transient: isTransient,
		Err:       err,
	}
}
