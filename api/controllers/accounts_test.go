package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/internal/accounts"
	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
)

type testAccountsService struct {
	applyFn   func(ctx context.Context, actor authz.Actor, input accounts.ApplyInput) (*models.Account, error)
	rejectFn  func(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error)
	approveFn func(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error)
}

func (s *testAccountsService) Apply(ctx context.Context, actor authz.Actor, input accounts.ApplyInput) (*models.Account, error) {
	if s.applyFn != nil {
		return s.applyFn(ctx, actor, input)
	}
	return &models.Account{}, nil
}

func (s *testAccountsService) GetAccount(ctx context.Context, actor authz.Actor, accountID uuid.UUID) (*models.Account, error) {
	return &models.Account{}, nil
}

func (s *testAccountsService) ListAccounts(ctx context.Context, actor authz.Actor, params accounts.ListParams) (*accounts.ListResult, error) {
	return &accounts.ListResult{}, nil
}

func (s *testAccountsService) Approve(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, actor, accountID, ip)
	}
	return &models.Account{}, nil
}

func (s *testAccountsService) Reject(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, actor, accountID, reason, ip)
	}
	return &models.Account{}, nil
}

func (s *testAccountsService) Suspend(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error) {
	return &models.Account{}, nil
}

func (s *testAccountsService) Reactivate(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error) {
	return &models.Account{}, nil
}

func (s *testAccountsService) DeleteOwnAccount(ctx context.Context, actor authz.Actor, input accounts.DeleteOwnInput) error {
	return nil
}

func TestApplyForAccountParsesType(t *testing.T) {
	svc := &testAccountsService{
		applyFn: func(ctx context.Context, actor authz.Actor, input accounts.ApplyInput) (*models.Account, error) {
			if input.Type != enums.AccountTypeWholesaler {
				t.Fatalf("unexpected type %s", input.Type)
			}
			if input.BusinessName != "Pacific Goods Co" {
				t.Fatalf("unexpected business name %q", input.BusinessName)
			}
			return &models.Account{ID: uuid.New()}, nil
		},
	}

	body := `{"type":"wholesaler","business_name":"Pacific Goods Co","business_number":"123-45-67890"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/apply", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = seedActor(req, enums.ProfileRoleApplicant, nil)

	resp := httptest.NewRecorder()
	ApplyForAccount(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d body %s", resp.Code, resp.Body.String())
	}
}

func TestApplyForAccountRejectsUnknownType(t *testing.T) {
	body := `{"type":"distributor","business_name":"Pacific Goods Co","business_number":"123-45-67890"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/apply", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = seedActor(req, enums.ProfileRoleApplicant, nil)

	resp := httptest.NewRecorder()
	ApplyForAccount(&testAccountsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestRejectAccountForwardsReasonAndIP(t *testing.T) {
	accountID := uuid.New()
	svc := &testAccountsService{
		rejectFn: func(ctx context.Context, actor authz.Actor, id uuid.UUID, reason, ip string) (*models.Account, error) {
			if id != accountID {
				t.Fatalf("unexpected account id %s", id)
			}
			if reason != "incomplete registration documents" {
				t.Fatalf("unexpected reason %q", reason)
			}
			if ip != "203.0.113.9" {
				t.Fatalf("unexpected ip %q", ip)
			}
			return &models.Account{ID: accountID, Status: enums.AccountStatusRejected}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/accounts/"+accountID.String()+"/reject", strings.NewReader(`{"reason":"incomplete registration documents"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req = seedActor(req, enums.ProfileRoleAdmin, nil)
	req = withURLParam(req, "accountID", accountID.String())

	resp := httptest.NewRecorder()
	RejectAccount(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d body %s", resp.Code, resp.Body.String())
	}
}

func TestApproveAccountRejectsMalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/accounts/not-a-uuid/approve", nil)
	req = seedActor(req, enums.ProfileRoleAdmin, nil)
	req = withURLParam(req, "accountID", "not-a-uuid")

	resp := httptest.NewRecorder()
	ApproveAccount(&testAccountsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
