package identity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "identity-test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.IdentityConfig{BaseURL: srv.URL, APIKey: "key"}, testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestExchangeTokenSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/token/exchange" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"ext-9","email":"owner@acme.test","display_name":"Acme Owner"}`))
	}))

	identity, err := client.ExchangeToken(context.Background(), "provider-token")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if identity.UserID != "ext-9" || identity.Email != "owner@acme.test" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestExchangeTokenRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ExchangeToken(context.Background(), "bad-token")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestExchangeTokenProviderDown(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.ExchangeToken(context.Background(), "token")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDeleteIdentityTreatsMissingAsDeleted(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := client.DeleteIdentity(context.Background(), "ext-gone"); err != nil {
		t.Fatalf("missing identity should not error: %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(config.IdentityConfig{APIKey: "key"}, testLogger()); err == nil {
		t.Fatal("expected missing base url error")
	}
	if _, err := NewClient(config.IdentityConfig{BaseURL: "https://id.test"}, testLogger()); err == nil {
		t.Fatal("expected missing api key error")
	}
	if _, err := NewClient(config.IdentityConfig{BaseURL: "https://id.test", APIKey: "key"}, nil); err == nil {
		t.Fatal("expected missing logger error")
	}
}
