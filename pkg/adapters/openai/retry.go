package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// isRetryableError determines if an error should trigger a retry
func (c *OpenAIClient) isRetryableError(err error, statusCode int, responseBody []byte) bool {
	// network errors carry no status code
	if err != nil && statusCode == 0 {
		return true
	}

	if statusCode >= 500 || statusCode == http.StatusTooManyRequests {
		return true
	}

	// some compatible providers report a failed JSON generation with 400 or even 200
	if (statusCode == http.StatusOK || statusCode == http.StatusBadRequest) && responseBody != nil {
		var errorResp ChatCompletionResponseError
		if json.Unmarshal(responseBody, &errorResp) == nil {
			if errorResp.Error.FailedGeneration != "" ||
				strings.Contains(errorResp.Error.Message, "failed_generation") {
				return true
			}
		}

		if strings.Contains(string(responseBody), "failed_generation") {
			return true
		}
	}

	return false
}

func (c *OpenAIClient) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// createAndRunRetryableRequest executes an HTTP request with retry logic
func (c *OpenAIClient) createAndRunRetryableRequest(ctx context.Context, url string, requestBody any, apiName string) ([]byte, error) {
	opts := retry.Options{
		Config:       c.RetryConfig,
		ErrorChecker: c.isRetryableError,
		Logger:       c.logger().Sugar().Warnf,
		APIName:      "OpenAI " + apiName,
	}

	retryableFn := c.buildRetryableFn(ctx, url, requestBody, apiName)

	result, err := retry.Execute(ctx, opts, retryableFn)
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// buildRetryableFn builds a retryable function for the given request body
func (c *OpenAIClient) buildRetryableFn(ctx context.Context, url string, requestBody any, apiName string) retry.RetryableFunc {
	retryableFn := func(attempt int) (any, int, []byte, error) {
		body, err := json.Marshal(requestBody)
		if err != nil {
			return nil, -1, nil, fmt.Errorf("failed to marshal %s request: %w", apiName, err)
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, -1, nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
		if err != nil {
			return nil, -1, nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(httpReq)
		if err != nil {
			return nil, 0, nil, err
		}
		defer resp.Body.Close()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, nil, fmt.Errorf("failed to read %s response body: %w", apiName, err)
		}

		chatReq, ok := requestBody.(ChatCompletionRequest)
		if c.DumpRequests && ok {
			c.saveResponseToFile(chatReq, bodyBytes, resp.StatusCode)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, resp.StatusCode, bodyBytes, &ChatCompletionError{
				Message:    fmt.Sprintf("openai %s API error %d", apiName, resp.StatusCode),
				StatusCode: resp.StatusCode,
				RawBody:    json.RawMessage(bodyBytes),
			}
		}

		return bodyBytes, resp.StatusCode, bodyBytes, nil
	}

	return retryableFn
}

// saveResponseToFile saves the request/response to a file for debugging purposes
func (c *OpenAIClient) saveResponseToFile(req ChatCompletionRequest, bodyBytes []byte, statusCode int) {
	log := c.logger()

	timestamp := time.Now().Format("20060102_150405")
	random := uuid.New().String()[:8]
	filename := fmt.Sprintf("openai_req_%s_%s.json", timestamp, random)

	modelDir := filepath.Join(c.DumpDir, strings.ReplaceAll(req.Model, "/", "_"))
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		log.Warn("failed to create dump directory", zap.String("dir", modelDir), zap.Error(err))
		return
	}

	var responseBody any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		responseBody = string(bodyBytes)
	}

	responseData := map[string]any{
		"request":  req,
		"response": responseBody,
		"status":   statusCode,
	}

	jsonData, err := json.MarshalIndent(responseData, "", "  ")
	if err != nil {
		log.Warn("failed to marshal request dump", zap.Error(err))
		return
	}

	path := filepath.Join(modelDir, filename)
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		log.Warn("failed to write request dump", zap.String("path", path), zap.Error(err))
	}
}
