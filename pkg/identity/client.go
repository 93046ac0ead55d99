package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("identity base url is required")
	errAPIKeyRequired  = errors.New("identity api key is required")
	errLoggerRequired  = errors.New("identity logger is required")
)

// ExternalIdentity is the provider's view of a signed-in user.
type ExternalIdentity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Gateway exposes the identity-provider operations the platform needs.
type Gateway interface {
	ExchangeToken(ctx context.Context, providerToken string) (*ExternalIdentity, error)
	DeleteIdentity(ctx context.Context, externalUserID string) error
}

// Client talks to the external identity provider with centralized auth and error mapping.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient initializes the identity gateway and validates the credentials.
func NewClient(cfg config.IdentityConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}, nil
}

// ExchangeToken verifies a provider-issued token and returns the identity it belongs to.
func (c *Client) ExchangeToken(ctx context.Context, providerToken string) (*ExternalIdentity, error) {
	if strings.TrimSpace(providerToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "provider token is required")
	}

	body, err := json.Marshal(map[string]string{"token": providerToken})
	if err != nil {
		return nil, fmt.Errorf("marshal exchange request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/token/exchange", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var identity ExternalIdentity
		if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding identity response")
		}
		if identity.UserID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity provider returned no user id")
		}
		return &identity, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "provider token rejected")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("identity provider returned status %d", resp.StatusCode))
	}
}

// DeleteIdentity removes the external identity backing a deleted profile.
func (c *Client) DeleteIdentity(ctx context.Context, externalUserID string) error {
	if strings.TrimSpace(externalUserID) == "" {
		return fmt.Errorf("external user id is required")
	}

	path := "/v1/users/" + url.PathEscape(externalUserID)
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		// a missing identity counts as deleted
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("identity provider returned status %d", resp.StatusCode))
	}
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader) (*http.Response, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("building identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling identity provider")
	}
	return resp, nil
}
