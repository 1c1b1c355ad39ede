package adapters

import (
	"context"
	"net/http"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"go.uber.org/zap"
)

// isRetryableStatus reports whether a failed SDK call is worth repeating.
// A zero status with an error is a network failure.
func isRetryableStatus(err error, statusCode int, _ []byte) bool {
	if err == nil {
		return false
	}
	switch {
	case statusCode == 0:
		return true
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode >= 500:
		return true
	}
	return false
}

// callWithRetry runs call under the shared retry policy. statusOf extracts the
// HTTP status from an SDK error.
func callWithRetry[T any](ctx context.Context, apiName string, cfg retry.Config, logger *zap.Logger, statusOf func(error) int, call func() (T, error)) (T, error) {
	var zero T

	result, err := retry.Execute(ctx, retry.Options{
		Config:       cfg,
		ErrorChecker: isRetryableStatus,
		Logger:       logger.Sugar().Warnf,
		APIName:      apiName,
	}, func(attempt int) (interface{}, int, []byte, error) {
		out, err := call()
		if err != nil {
			return nil, statusOf(err), nil, err
		}
		return out, http.StatusOK, nil, nil
	})
	if err != nil {
		return zero, err
	}

	return result.(T), nil
}
