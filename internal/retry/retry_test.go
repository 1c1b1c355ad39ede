package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(retries int) Config {
	return Config{
		MaxRetries:      retries,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffMultiple: 2,
	}
}

func alwaysRetry(err error, statusCode int, body []byte) bool { return true }

func TestExecute_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Execute(context.Background(), Options{Config: fastConfig(3), ErrorChecker: alwaysRetry},
		func(attempt int) (interface{}, int, []byte, error) {
			calls++
			return "ok", 200, nil, nil
		})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.(string) != "ok" {
		t.Errorf("Expected result 'ok', got %v", result)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExecute_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	var logged []string
	_, err := Execute(context.Background(), Options{
		Config:       fastConfig(3),
		ErrorChecker: alwaysRetry,
		APIName:      "test",
		Logger: func(message string, args ...interface{}) {
			logged = append(logged, message)
		},
	}, func(attempt int) (interface{}, int, []byte, error) {
		calls++
		if attempt < 2 {
			return nil, 503, []byte("busy"), errors.New("unavailable")
		}
		return "ok", 200, nil, nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if len(logged) == 0 {
		t.Error("Expected retry attempts to be logged")
	}
}

func TestExecute_ExhaustedWrapsLastError(t *testing.T) {
	sentinel := errors.New("rate limited")
	calls := 0
	_, err := Execute(context.Background(), Options{Config: fastConfig(2), ErrorChecker: alwaysRetry, APIName: "test"},
		func(attempt int) (interface{}, int, []byte, error) {
			calls++
			return nil, 429, []byte(`{"error":"slow down"}`), sentinel
		})

	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected RetryExhaustedError, got: %v", err)
	}
	if exhausted.MaxAttempts != 3 || exhausted.LastStatusCode != 429 {
		t.Errorf("Unexpected exhausted error fields: %+v", exhausted)
	}
	if !errors.Is(err, sentinel) {
		t.Error("Expected exhausted error to wrap the last error")
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestExecute_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad request")
	_, err := Execute(context.Background(), Options{
		Config:       fastConfig(5),
		ErrorChecker: func(err error, statusCode int, body []byte) bool { return statusCode >= 500 },
	}, func(attempt int) (interface{}, int, []byte, error) {
		calls++
		return nil, 401, nil, sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Errorf("Expected original error, got: %v", err)
	}
	var exhausted *RetryExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("Non-retryable errors must not be reported as exhausted")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExecute_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Second, BackoffMultiple: 1}

	_, err := Execute(ctx, Options{Config: cfg, ErrorChecker: alwaysRetry},
		func(attempt int) (interface{}, int, []byte, error) {
			cancel()
			return nil, 500, nil, errors.New("boom")
		})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestCalculateDelay_Capped(t *testing.T) {
	cfg := Config{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffMultiple: 2}

	if d := cfg.calculateDelay(0); d != 100*time.Millisecond {
		t.Errorf("Expected 100ms, got %v", d)
	}
	if d := cfg.calculateDelay(1); d != 200*time.Millisecond {
		t.Errorf("Expected 200ms, got %v", d)
	}
	if d := cfg.calculateDelay(5); d != 300*time.Millisecond {
		t.Errorf("Expected delay capped at 300ms, got %v", d)
	}
}
