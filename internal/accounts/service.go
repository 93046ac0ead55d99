package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/audit"
	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

// minRejectionReasonLen is measured after trimming surrounding whitespace.
const minRejectionReasonLen = 10

// pendingListPath is the cached admin view invalidated on every review decision.
const pendingListPath = "/admin/accounts/pending"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type identityDeleter interface {
	DeleteIdentity(ctx context.Context, externalUserID string) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// Service exposes account application, admin review, and self-service deletion.
type Service interface {
	Apply(ctx context.Context, actor authz.Actor, input ApplyInput) (*models.Account, error)
	GetAccount(ctx context.Context, actor authz.Actor, accountID uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	Approve(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error)
	Reject(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error)
	Suspend(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error)
	Reactivate(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error)
	DeleteOwnAccount(ctx context.Context, actor authz.Actor, input DeleteOwnInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	audit    audit.Recorder
	identity identityDeleter
	cache    cacheInvalidator
	logg     *logger.Logger
}

// NewService builds the account service with the required dependencies.
func NewService(repo Repository, tx txRunner, recorder audit.Recorder, identity identityDeleter, cache cacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity gateway required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, audit: recorder, identity: identity, cache: cache, logg: logg}, nil
}

func (s *service) Apply(ctx context.Context, actor authz.Actor, input ApplyInput) (*models.Account, error) {
	if actor.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_name is required")
	}
	if strings.TrimSpace(input.BusinessNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_number is required")
	}

	existing, err := s.repo.FindAccountsByProfile(ctx, actor.ProfileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profile accounts")
	}
	for _, account := range existing {
		if account.Type == input.Type && account.Status != enums.AccountStatusRejected {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an application of this type already exists")
		}
	}

	account := &models.Account{
		ProfileID:      actor.ProfileID,
		Type:           input.Type,
		BusinessName:   strings.TrimSpace(input.BusinessName),
		BusinessNumber: strings.TrimSpace(input.BusinessNumber),
		ContactPhone:   input.ContactPhone,
		Status:         enums.AccountStatusPending,
	}
	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return created, nil
}

func (s *service) GetAccount(ctx context.Context, actor authz.Actor, accountID uuid.UUID) (*models.Account, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}

	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}

	if !actor.IsAdmin() && account.ProfileID != actor.ProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account belongs to another profile")
	}
	return account, nil
}

func (s *service) ListAccounts(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid type filter")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	rows, total, err := s.repo.ListAccounts(ctx, listQuery{
		status:      params.Status,
		accountType: params.Type,
		offset:      offset,
		limit:       limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

// Approve finalizes an application. The transition is deliberately
// permissive: approving an already-approved account lands in the same
// state and still writes a fresh audit entry.
func (s *service) Approve(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error) {
	account, err := s.adminLoadAccount(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateAccount(ctx, accountID, map[string]any{
		"status":           enums.AccountStatusApproved,
		"approved_at":      now,
		"rejection_reason": nil,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve account")
	}
	account.Status = enums.AccountStatusApproved
	account.ApprovedAt = &now
	account.RejectionReason = nil

	// secondary mutation, never rolls back the approval
	if err := s.repo.UpdateProfile(ctx, account.ProfileID, map[string]any{
		"role": account.Type.ProfileRole(),
	}); err != nil {
		s.logg.Warn(ctx, "profile role grant failed: "+err.Error())
	}

	s.record(ctx, audit.Entry{
		ActorProfileID: actor.ProfileID,
		Action:         reviewAction(account.Type, "approve"),
		TargetType:     "account",
		TargetID:       accountID,
		IPAddress:      ip,
	})
	s.cache.Invalidate(ctx, pendingListPath)
	return account, nil
}

// Reject refuses an application and clears the applicant's role so they can
// re-apply. The role reset is best-effort and the reject stands even when
// it or the audit write fails.
func (s *service) Reject(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error) {
	trimmed := strings.TrimSpace(reason)
	if len([]rune(trimmed)) < minRejectionReasonLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rejection reason must be at least %d characters", minRejectionReasonLen))
	}

	account, err := s.adminLoadAccount(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccount(ctx, accountID, map[string]any{
		"status":           enums.AccountStatusRejected,
		"rejection_reason": trimmed,
		"approved_at":      nil,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject account")
	}
	account.Status = enums.AccountStatusRejected
	account.RejectionReason = &trimmed
	account.ApprovedAt = nil

	if err := s.repo.UpdateProfile(ctx, account.ProfileID, map[string]any{"role": nil}); err != nil {
		s.logg.Warn(ctx, "profile role reset failed: "+err.Error())
	}

	s.record(ctx, audit.Entry{
		ActorProfileID: actor.ProfileID,
		Action:         reviewAction(account.Type, "reject"),
		TargetType:     "account",
		TargetID:       accountID,
		Details:        types.JSONMap{"reason": trimmed},
		IPAddress:      ip,
	})
	s.cache.Invalidate(ctx, pendingListPath)
	return account, nil
}

// Suspend takes an approved account out of service. The reason is held in
// rejection_reason while suspended, same validation as Reject.
func (s *service) Suspend(ctx context.Context, actor authz.Actor, accountID uuid.UUID, reason, ip string) (*models.Account, error) {
	trimmed := strings.TrimSpace(reason)
	if len([]rune(trimmed)) < minRejectionReasonLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("suspension reason must be at least %d characters", minRejectionReasonLen))
	}

	account, err := s.adminLoadAccount(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status != enums.AccountStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only approved accounts can be suspended").
			WithDetails(map[string]any{"status": account.Status})
	}

	if err := s.repo.UpdateAccount(ctx, accountID, map[string]any{
		"status":           enums.AccountStatusSuspended,
		"rejection_reason": trimmed,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "suspend account")
	}
	account.Status = enums.AccountStatusSuspended
	account.RejectionReason = &trimmed

	s.record(ctx, audit.Entry{
		ActorProfileID: actor.ProfileID,
		Action:         "account_suspend",
		TargetType:     "account",
		TargetID:       accountID,
		Details:        types.JSONMap{"reason": trimmed},
		IPAddress:      ip,
	})
	return account, nil
}

func (s *service) Reactivate(ctx context.Context, actor authz.Actor, accountID uuid.UUID, ip string) (*models.Account, error) {
	account, err := s.adminLoadAccount(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status != enums.AccountStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only suspended accounts can be reactivated").
			WithDetails(map[string]any{"status": account.Status})
	}

	if err := s.repo.UpdateAccount(ctx, accountID, map[string]any{
		"status":           enums.AccountStatusApproved,
		"rejection_reason": nil,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate account")
	}
	account.Status = enums.AccountStatusApproved
	account.RejectionReason = nil

	s.record(ctx, audit.Entry{
		ActorProfileID: actor.ProfileID,
		Action:         "account_reactivate",
		TargetType:     "account",
		TargetID:       accountID,
		IPAddress:      ip,
	})
	return account, nil
}

func (s *service) DeleteOwnAccount(ctx context.Context, actor authz.Actor, input DeleteOwnInput) error {
	if actor.ProfileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	profile, err := s.repo.FindProfileByID(ctx, actor.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup profile")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateDeletionRecord(ctx, &models.AccountDeletionRecord{
			ProfileID: profile.ID,
			Reason:    reason,
			Feedback:  input.Feedback,
		}); err != nil {
			return err
		}
		return repo.DeleteProfile(ctx, profile.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete profile")
	}

	// the local rows are gone either way; the provider identity is cleaned up
	// best-effort and retried out of band if this fails
	if err := s.identity.DeleteIdentity(ctx, profile.ExternalUserID); err != nil {
		s.logg.Warn(ctx, "external identity deletion failed: "+err.Error())
	}
	return nil
}

func (s *service) adminLoadAccount(ctx context.Context, actor authz.Actor, accountID uuid.UUID) (*models.Account, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}

	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}
	return account, nil
}

func (s *service) record(ctx context.Context, entry audit.Entry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logg.Warn(ctx, "audit record failed: "+err.Error())
	}
}

func reviewAction(accountType enums.AccountType, decision string) string {
	return fmt.Sprintf("%s_%s", accountType, decision)
}
