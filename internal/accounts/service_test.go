package accounts

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/audit"
	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

type stubAccountsRepo struct {
	account          *models.Account
	profile          *models.Profile
	accounts         []models.Account
	accountUpdates   map[string]any
	profileUpdates   map[string]any
	profileUpdateErr error
	deletionRecord   *models.AccountDeletionRecord
	deletedProfile   uuid.UUID
	listTotal        int64
	findAccountErr   error
	updateErr        error
}

func (s *stubAccountsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAccountsRepo) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	s.account = account
	return account, nil
}

func (s *stubAccountsRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if s.findAccountErr != nil {
		return nil, s.findAccountErr
	}
	if s.account == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.account, nil
}

func (s *stubAccountsRepo) FindAccountsByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Account, error) {
	return s.accounts, nil
}

func (s *stubAccountsRepo) ListAccounts(ctx context.Context, query listQuery) ([]models.Account, int64, error) {
	return s.accounts, s.listTotal, nil
}

func (s *stubAccountsRepo) UpdateAccount(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.accountUpdates = updates
	return nil
}

func (s *stubAccountsRepo) FindProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if s.profile == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func (s *stubAccountsRepo) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.profileUpdateErr != nil {
		return s.profileUpdateErr
	}
	s.profileUpdates = updates
	return nil
}

func (s *stubAccountsRepo) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	s.deletedProfile = id
	return nil
}

func (s *stubAccountsRepo) CreateDeletionRecord(ctx context.Context, record *models.AccountDeletionRecord) error {
	s.deletionRecord = record
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRecorder struct {
	entries []audit.Entry
	err     error
}

func (s *stubRecorder) Record(ctx context.Context, entry audit.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type stubIdentity struct {
	deleted []string
	err     error
}

func (s *stubIdentity) DeleteIdentity(ctx context.Context, externalUserID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, externalUserID)
	return nil
}

type stubInvalidator struct {
	paths []string
}

func (s *stubInvalidator) Invalidate(ctx context.Context, paths ...string) {
	s.paths = append(s.paths, paths...)
}

func newTestService(t *testing.T, repo *stubAccountsRepo, recorder *stubRecorder, identity *stubIdentity) (Service, *stubInvalidator) {
	t.Helper()
	cache := &stubInvalidator{}
	logg := logger.New(logger.Options{ServiceName: "accounts-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, recorder, identity, cache, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, cache
}

func adminActor() authz.Actor {
	return authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleAdmin}
}

func pendingAccount() *models.Account {
	return &models.Account{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Type:      enums.AccountTypeWholesaler,
		Status:    enums.AccountStatusPending,
	}
}

func TestApproveStampsTimestampAndRole(t *testing.T) {
	repo := &stubAccountsRepo{account: pendingAccount()}
	recorder := &stubRecorder{}
	svc, cache := newTestService(t, repo, recorder, &stubIdentity{})

	account, err := svc.Approve(context.Background(), adminActor(), repo.account.ID, "10.0.0.1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if account.Status != enums.AccountStatusApproved {
		t.Fatalf("unexpected status %s", account.Status)
	}
	if account.ApprovedAt == nil {
		t.Fatal("approved_at should be stamped")
	}
	if repo.accountUpdates["status"] != enums.AccountStatusApproved {
		t.Fatalf("unexpected account update %+v", repo.accountUpdates)
	}
	if reason, ok := repo.accountUpdates["rejection_reason"]; !ok || reason != nil {
		t.Fatalf("rejection_reason should be cleared, got %+v", repo.accountUpdates)
	}
	if repo.profileUpdates["role"] != enums.ProfileRoleWholesaler {
		t.Fatalf("profile role should be granted on approval, got %+v", repo.profileUpdates)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != "wholesaler_approve" {
		t.Fatalf("expected one approve audit entry, got %+v", recorder.entries)
	}
	if len(cache.paths) != 1 || cache.paths[0] != "/admin/accounts/pending" {
		t.Fatalf("pending list cache should be invalidated, got %+v", cache.paths)
	}
}

func TestApproveFromAnyPriorStatus(t *testing.T) {
	for _, status := range []enums.AccountStatus{
		enums.AccountStatusApproved,
		enums.AccountStatusRejected,
		enums.AccountStatusSuspended,
	} {
		reason := "insufficient documentation provided"
		account := pendingAccount()
		account.Status = status
		account.RejectionReason = &reason
		repo := &stubAccountsRepo{account: account}
		recorder := &stubRecorder{}
		svc, _ := newTestService(t, repo, recorder, &stubIdentity{})

		approved, err := svc.Approve(context.Background(), adminActor(), account.ID, "")
		if err != nil {
			t.Fatalf("status %s: approve: %v", status, err)
		}
		if approved.Status != enums.AccountStatusApproved || approved.ApprovedAt == nil {
			t.Fatalf("status %s: expected approved with timestamp, got %+v", status, approved)
		}
		if approved.RejectionReason != nil {
			t.Fatalf("status %s: rejection reason should be cleared", status)
		}
		// re-approval is a state no-op but still leaves an audit trail
		if len(recorder.entries) != 1 {
			t.Fatalf("status %s: expected audit entry, got %d", status, len(recorder.entries))
		}
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	repo := &stubAccountsRepo{account: pendingAccount()}
	svc, _ := newTestService(t, repo, &stubRecorder{}, &stubIdentity{})

	scope := uuid.New()
	_, err := svc.Approve(context.Background(), authz.Actor{
		ProfileID: uuid.New(),
		Role:      enums.ProfileRoleWholesaler,
		ScopeID:   &scope,
	}, repo.account.ID, "")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRejectRequiresMeaningfulReason(t *testing.T) {
	repo := &stubAccountsRepo{account: pendingAccount()}
	svc, _ := newTestService(t, repo, &stubRecorder{}, &stubIdentity{})

	cases := []string{"", "   short   ", "nine char"}
	for _, reason := range cases {
		_, err := svc.Reject(context.Background(), adminActor(), repo.account.ID, reason, "")
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("reason %q: expected validation error, got %v", reason, err)
		}
	}
	if repo.accountUpdates != nil {
		t.Fatalf("invalid reason must not mutate the account, got %+v", repo.accountUpdates)
	}
}

func TestRejectStoresTrimmedReasonAndResetsRole(t *testing.T) {
	account := pendingAccount()
	now := account.CreatedAt
	account.ApprovedAt = &now
	repo := &stubAccountsRepo{account: account}
	recorder := &stubRecorder{}
	svc, _ := newTestService(t, repo, recorder, &stubIdentity{})

	rejected, err := svc.Reject(context.Background(), adminActor(), account.ID, "  missing business registration documents  ", "10.0.0.1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.AccountStatusRejected {
		t.Fatalf("unexpected status %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "missing business registration documents" {
		t.Fatalf("reason should be stored trimmed, got %v", rejected.RejectionReason)
	}
	if rejected.ApprovedAt != nil {
		t.Fatal("approved_at should be cleared on rejection")
	}
	if role, ok := repo.profileUpdates["role"]; !ok || role != nil {
		t.Fatalf("profile role should be reset to null, got %+v", repo.profileUpdates)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != "wholesaler_reject" {
		t.Fatalf("expected reject audit entry, got %+v", recorder.entries)
	}
}

func TestRejectStandsWhenRoleResetFails(t *testing.T) {
	repo := &stubAccountsRepo{account: pendingAccount(), profileUpdateErr: errors.New("profiles table locked")}
	recorder := &stubRecorder{err: errors.New("audit store down")}
	svc, _ := newTestService(t, repo, recorder, &stubIdentity{})

	rejected, err := svc.Reject(context.Background(), adminActor(), repo.account.ID, "business number failed verification", "")
	if err != nil {
		t.Fatalf("reject should succeed despite secondary failures: %v", err)
	}
	if rejected.Status != enums.AccountStatusRejected {
		t.Fatalf("unexpected status %s", rejected.Status)
	}
	if repo.accountUpdates["status"] != enums.AccountStatusRejected {
		t.Fatalf("primary mutation missing, got %+v", repo.accountUpdates)
	}
}

func TestSuspendAndReactivateTransitions(t *testing.T) {
	account := pendingAccount()
	account.Status = enums.AccountStatusApproved
	repo := &stubAccountsRepo{account: account}
	svc, _ := newTestService(t, repo, &stubRecorder{}, &stubIdentity{})

	suspended, err := svc.Suspend(context.Background(), adminActor(), account.ID, "  repeated shipping fraud reports ", "")
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if suspended.Status != enums.AccountStatusSuspended {
		t.Fatalf("unexpected status %s", suspended.Status)
	}
	if repo.accountUpdates["rejection_reason"] != "repeated shipping fraud reports" {
		t.Fatalf("suspend must persist the trimmed reason, got %+v", repo.accountUpdates)
	}
	if suspended.RejectionReason == nil || *suspended.RejectionReason != "repeated shipping fraud reports" {
		t.Fatalf("returned account missing reason, got %v", suspended.RejectionReason)
	}

	reactivated, err := svc.Reactivate(context.Background(), adminActor(), account.ID, "")
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if reactivated.Status != enums.AccountStatusApproved {
		t.Fatalf("unexpected status %s", reactivated.Status)
	}
	if reason, ok := repo.accountUpdates["rejection_reason"]; !ok || reason != nil {
		t.Fatalf("reactivate must clear the reason, got %+v", repo.accountUpdates)
	}
	if reactivated.RejectionReason != nil {
		t.Fatalf("returned account should have no reason, got %v", reactivated.RejectionReason)
	}

	// reactivating an account that is already approved is a caller mistake
	_, err = svc.Reactivate(context.Background(), adminActor(), account.ID, "")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSuspendRequiresMeaningfulReason(t *testing.T) {
	account := pendingAccount()
	account.Status = enums.AccountStatusApproved
	repo := &stubAccountsRepo{account: account}
	svc, _ := newTestService(t, repo, &stubRecorder{}, &stubIdentity{})

	_, err := svc.Suspend(context.Background(), adminActor(), account.ID, "  fraud  ", "")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for short reason, got %v", err)
	}
	if repo.accountUpdates != nil {
		t.Fatalf("nothing should be written, got %+v", repo.accountUpdates)
	}
}

func TestAuditFailureDoesNotBlockApprove(t *testing.T) {
	repo := &stubAccountsRepo{account: pendingAccount()}
	recorder := &stubRecorder{err: errors.New("audit store down")}
	svc, _ := newTestService(t, repo, recorder, &stubIdentity{})

	if _, err := svc.Approve(context.Background(), adminActor(), repo.account.ID, ""); err != nil {
		t.Fatalf("approve should succeed despite audit failure: %v", err)
	}
}

func TestApplyRejectsDuplicateType(t *testing.T) {
	profileID := uuid.New()
	repo := &stubAccountsRepo{accounts: []models.Account{{
		ProfileID: profileID,
		Type:      enums.AccountTypeWholesaler,
		Status:    enums.AccountStatusPending,
	}}}
	svc, _ := newTestService(t, repo, &stubRecorder{}, &stubIdentity{})

	_, err := svc.Apply(context.Background(), authz.Actor{ProfileID: profileID}, ApplyInput{
		Type:           enums.AccountTypeWholesaler,
		BusinessName:   "Acme Wholesale",
		BusinessNumber: "123-45-67890",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyAllowsReapplicationAfterRejection(t *testing.T) {
	profileID := uuid.New()
	repo := &stubAccountsRepo{accounts: []models.Account{{
		ProfileID: profileID,
		Type:      enums.AccountTypeWholesaler,
		Status:    enums.AccountStatusRejected,
	}}}
	svc, _ := newTestService(t, repo, &stubRecorder{}, &stubIdentity{})

	account, err := svc.Apply(context.Background(), authz.Actor{ProfileID: profileID}, ApplyInput{
		Type:           enums.AccountTypeWholesaler,
		BusinessName:   "Acme Wholesale",
		BusinessNumber: "123-45-67890",
	})
	if err != nil {
		t.Fatalf("apply after rejection: %v", err)
	}
	if account.Status != enums.AccountStatusPending {
		t.Fatalf("new application should start pending, got %s", account.Status)
	}
}

func TestDeleteOwnAccountWritesRecordAndCleansIdentity(t *testing.T) {
	profile := &models.Profile{ID: uuid.New(), ExternalUserID: "ext-77"}
	repo := &stubAccountsRepo{profile: profile}
	identity := &stubIdentity{}
	svc, _ := newTestService(t, repo, &stubRecorder{}, identity)

	feedback := "moving to a different platform"
	err := svc.DeleteOwnAccount(context.Background(), authz.Actor{ProfileID: profile.ID}, DeleteOwnInput{
		Reason:   "no longer trading",
		Feedback: &feedback,
	})
	if err != nil {
		t.Fatalf("delete own account: %v", err)
	}
	if repo.deletionRecord == nil || repo.deletionRecord.Reason != "no longer trading" {
		t.Fatalf("deletion record missing or wrong: %+v", repo.deletionRecord)
	}
	if repo.deletedProfile != profile.ID {
		t.Fatalf("profile should be deleted, got %s", repo.deletedProfile)
	}
	if len(identity.deleted) != 1 || identity.deleted[0] != "ext-77" {
		t.Fatalf("external identity should be removed, got %+v", identity.deleted)
	}
}

func TestDeleteOwnAccountSurvivesIdentityOutage(t *testing.T) {
	profile := &models.Profile{ID: uuid.New(), ExternalUserID: "ext-88"}
	repo := &stubAccountsRepo{profile: profile}
	identity := &stubIdentity{err: errors.New("provider down")}
	svc, _ := newTestService(t, repo, &stubRecorder{}, identity)

	err := svc.DeleteOwnAccount(context.Background(), authz.Actor{ProfileID: profile.ID}, DeleteOwnInput{
		Reason: "closing the business",
	})
	if err != nil {
		t.Fatalf("local deletion should succeed despite provider outage: %v", err)
	}
	if repo.deletedProfile != profile.ID {
		t.Fatal("profile rows should still be deleted")
	}
}
