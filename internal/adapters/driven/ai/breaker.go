package ai

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// errUpstream marks failures that should count against the circuit breaker
var errUpstream = errors.New("upstream failure")

// newBreaker trips after five consecutive upstream failures and probes again after 30s.
// Caller cancellations and client errors (4xx) do not count as failures.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, errUpstream)
		},
	})
}

// execute runs fn behind the breaker. An open breaker is reported as
// domain.ErrServiceUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s circuit open", domain.ErrServiceUnavailable, cb.Name())
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// do sends req and returns the body of a 2xx response.
// Transport failures and 5xx responses wrap both errUpstream and domain.ErrServiceUnavailable.
func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w: request failed: %v", domain.ErrServiceUnavailable, errUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: failed to read response: %v", domain.ErrServiceUnavailable, errUpstream, err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return body, fmt.Errorf("%w: %w: status %d", domain.ErrServiceUnavailable, errUpstream, resp.StatusCode)
	case resp.StatusCode >= 300:
		return body, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

func defaultHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 60 * time.Second}
}
