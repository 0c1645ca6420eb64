package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserClient checks user existence against the user service. A transport
// error or non-2xx response is a hard failure of the current request: no
// retries, no circuit breaking.
type UserClient interface {
	CheckUserExists(ctx context.Context, userID int64) (bool, error)
}

type userClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewUserClient(baseURL string, timeout time.Duration, logger *zap.Logger) UserClient {
	return &userClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type userEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
}

func (c *userClient) CheckUserExists(ctx context.Context, userID int64) (bool, error) {
	url := fmt.Sprintf("%s/api/user/getuser/%d", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build user service request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("User service request failed", zap.Int64("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("user service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, fmt.Errorf("failed to decode user service response: %w", err)
	}
	return envelope.Success, nil
}
