package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
	"github.com/tidwall/gjson"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
	"github.com/devfury/ezcaretech-auth/internal/version"
)

const (
	providerName = "bizbox"

	operationToken   = "token"
	operationProfile = "profile"

	// maxResponseSize caps how much of a BizBox response is read into memory
	maxResponseSize = 1 << 20
	// maxBodyPreview caps how much of an unexpected body ends up in an error message
	maxBodyPreview = 200

	resultCodePath = "resultCode"
)

// Ensure BizBoxClient implements core.BackendClient at compile time
var _ core.BackendClient = (*BizBoxClient)(nil)

// BizBoxClient performs the token exchange and profile fetch against BizBox
type BizBoxClient struct {
	tokenURL     string
	profileURL   string
	tokenPath    string
	failureCodes []string
	userAgent    string
	client       *http.Client
	recorder     core.Recorder
}

// NewBizBoxClient creates a BizBox client from configuration.
// The HTTP client carries the connector's own service credentials (none, simple or hmac).
func NewBizBoxClient(cfg *config.Config, recorder core.Recorder) (*BizBoxClient, error) {
	// #nosec G402 -- InsecureSkipVerify is user-configurable for development/testing
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.BizBoxConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.BizBoxConnectTimeout,
		ResponseHeaderTimeout: cfg.BizBoxTimeout,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.BizBoxInsecureSkipVerify,
		},
	}

	authMode := cfg.BizBoxAuthMode
	if authMode == "" {
		authMode = config.BackendAuthModeNone
	}

	client, err := httpclient.NewAuthClient(
		authMode,
		cfg.BizBoxAuthSecret,
		httpclient.WithTimeout(cfg.BizBoxTimeout),
		httpclient.WithTransport(transport),
		httpclient.WithHeaderName(cfg.BizBoxAuthHeader),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bizbox http client: %w", err)
	}

	tokenPath := cfg.BizBoxTokenPath
	if tokenPath == "" {
		tokenPath = "token"
	}

	return &BizBoxClient{
		tokenURL:     cfg.BizBoxTokenURL,
		profileURL:   cfg.BizBoxProfileURL,
		tokenPath:    tokenPath,
		failureCodes: cfg.BizBoxCredentialFailureCodes,
		userAgent:    version.UserAgent(),
		client:       client,
		recorder:     recorder,
	}, nil
}

// AcquireToken exchanges username and password for a bearer token.
// It returns an empty token and a nil error when BizBox rejects the credentials.
func (c *BizBoxClient) AcquireToken(
	ctx context.Context,
	username, password string,
) (string, error) {
	defer c.observe(operationToken, time.Now())

	payload, err := json.Marshal(models.TokenRequest{
		LoginID:  username,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal token request: %v", ErrBackendUnavailable, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.tokenURL,
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %v", ErrBackendUnavailable, ErrBackendConnection, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}

	// BizBox answers a wrong password with 401/403
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return "", nil
	}
	if status < 200 || status >= 300 {
		return "", unexpectedStatus(status, body)
	}

	resp, err := c.parseTokenResponse(body)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// parseTokenResponse decodes the token envelope.
// A configured credential-failure result code yields an empty token.
func (c *BizBoxClient) parseTokenResponse(body []byte) (*models.TokenResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf(
			"%w: %w: token response is not valid JSON",
			ErrBackendUnavailable,
			ErrBackendInvalidResp,
		)
	}

	resp := &models.TokenResponse{
		ResultCode:    gjson.GetBytes(body, resultCodePath).String(),
		ResultMessage: gjson.GetBytes(body, "resultMessage").String(),
	}

	if resp.ResultCode != "" && slices.Contains(c.failureCodes, resp.ResultCode) {
		return resp, nil
	}

	token := gjson.GetBytes(body, c.tokenPath)
	if !token.Exists() || token.Type != gjson.String || token.String() == "" {
		return nil, fmt.Errorf(
			"%w: %w: token response has no token at %q",
			ErrBackendUnavailable,
			ErrBackendInvalidResp,
			c.tokenPath,
		)
	}
	resp.Token = token.String()

	return resp, nil
}

// FetchProfile retrieves the member list for the holder of token.
// A token that BizBox issued and then refuses is an integration fault, not a user error.
func (c *BizBoxClient) FetchProfile(
	ctx context.Context,
	token string,
) (*models.ProfileResponse, error) {
	defer c.observe(operationProfile, time.Now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrBackendUnavailable, ErrBackendConnection, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, fmt.Errorf(
			"%w: %w: HTTP %d on profile",
			ErrBackendUnavailable,
			ErrBackendRejected,
			status,
		)
	}
	if status < 200 || status >= 300 {
		return nil, unexpectedStatus(status, body)
	}

	var profile models.ProfileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrBackendUnavailable, ErrBackendInvalidResp, err)
	}

	return &profile, nil
}

// Name returns provider name for logging
func (c *BizBoxClient) Name() string {
	return providerName
}

// do sends req and reads the (bounded) response body
func (c *BizBoxClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w: %v", ErrBackendUnavailable, ErrBackendConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf(
			"%w: %w: failed to read response: %v",
			ErrBackendUnavailable,
			ErrBackendInvalidResp,
			err,
		)
	}

	return resp.StatusCode, body, nil
}

func (c *BizBoxClient) observe(operation string, start time.Time) {
	if c.recorder != nil {
		c.recorder.RecordExternalAPICall(operation, time.Since(start))
	}
}

// unexpectedStatus builds the error for a status code BizBox should not return.
// Limit body preview to avoid overwhelming logs.
func unexpectedStatus(status int, body []byte) error {
	bodyPreview := string(body)
	if len(bodyPreview) > maxBodyPreview {
		bodyPreview = bodyPreview[:maxBodyPreview] + "..."
	}
	return fmt.Errorf(
		"%w: %w: HTTP %d - %s",
		ErrBackendUnavailable,
		ErrBackendInvalidResp,
		status,
		bodyPreview,
	)
}
