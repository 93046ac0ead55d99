package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/tradelinkhq/tradelink-backend/pkg/auth"
	"github.com/tradelinkhq/tradelink-backend/pkg/auth/session"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/identity"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error)
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*SignInResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

type identityExchanger interface {
	ExchangeToken(ctx context.Context, providerToken string) (*identity.ExternalIdentity, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	repo     Repository
	identity identityExchanger
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(repo Repository, gateway identityExchanger, sessions sessionManager, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("identity gateway required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, identity: gateway, sessions: sessions, jwtCfg: jwtCfg, logg: logg}, nil
}

// SignIn exchanges a provider token for a platform session. First sign-in
// creates the profile with a null role; the token then carries the
// applicant role until onboarding completes.
func (s *service) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	ident, err := s.identity.ExchangeToken(ctx, req.ProviderToken)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "exchange provider token")
	}

	profile, err := s.upsertProfile(ctx, ident)
	if err != nil {
		return nil, err
	}

	role, scopeID, err := s.resolveGrant(ctx, profile)
	if err != nil {
		return nil, err
	}

	access, refresh, err := s.issueTokens(ctx, profile.ID, role, scopeID)
	if err != nil {
		return nil, err
	}
	return &SignInResponse{AccessToken: access, RefreshToken: refresh, Profile: profileDTO(profile)}, nil
}

func (s *service) AdminLogin(ctx context.Context, req AdminLoginRequest) (*SignInResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	profile, err := s.repo.FindProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup profile")
	}
	if profile.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(req.Password, *profile.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || profile.Role == nil || *profile.Role != enums.ProfileRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if err := s.recordSignIn(ctx, profile, nil); err != nil {
		return nil, err
	}

	access, refresh, err := s.issueTokens(ctx, profile.ID, enums.ProfileRoleAdmin, nil)
	if err != nil {
		return nil, err
	}
	return &SignInResponse{AccessToken: access, RefreshToken: refresh, Profile: profileDTO(profile)}, nil
}

// Refresh rotates the redis-backed session and re-mints the access token
// with the claims of the expired one.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	payload := pkgauth.AccessTokenPayload{
		ProfileID: claims.ProfileID,
		Role:      claims.Role,
		ScopeID:   claims.ScopeID,
		JTI:       newAccessID,
	}
	access, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgauth.ParseAccessToken(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) upsertProfile(ctx context.Context, ident *identity.ExternalIdentity) (*models.Profile, error) {
	profile, err := s.repo.FindProfileByExternalID(ctx, ident.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup profile")
		}
		now := time.Now().UTC()
		created, err := s.repo.CreateProfile(ctx, &models.Profile{
			ExternalUserID: ident.UserID,
			Email:          ident.Email,
			DisplayName:    ident.DisplayName,
			LastSignedInAt: &now,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}
		return created, nil
	}

	updates := map[string]any{}
	if ident.Email != "" && ident.Email != profile.Email {
		updates["email"] = ident.Email
		profile.Email = ident.Email
	}
	if ident.DisplayName != "" && ident.DisplayName != profile.DisplayName {
		updates["display_name"] = ident.DisplayName
		profile.DisplayName = ident.DisplayName
	}
	if err := s.recordSignIn(ctx, profile, updates); err != nil {
		return nil, err
	}
	return profile, nil
}

// resolveGrant maps the stored role to token claims. A role without a live
// approved account (suspension, account deleted) signs in as applicant so
// the session works but carries no scope.
func (s *service) resolveGrant(ctx context.Context, profile *models.Profile) (enums.ProfileRole, *uuid.UUID, error) {
	if profile.Role == nil {
		return enums.ProfileRoleApplicant, nil, nil
	}
	role := *profile.Role
	if role == enums.ProfileRoleAdmin {
		return role, nil, nil
	}

	account, err := s.repo.FindApprovedAccount(ctx, profile.ID, accountTypeForRole(role))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return enums.ProfileRoleApplicant, nil, nil
		}
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve account scope")
	}
	scopeID := account.ID
	return role, &scopeID, nil
}

func (s *service) issueTokens(ctx context.Context, profileID uuid.UUID, role enums.ProfileRole, scopeID *uuid.UUID) (string, string, error) {
	accessID := session.NewAccessID()
	payload := pkgauth.AccessTokenPayload{
		ProfileID: profileID,
		Role:      role,
		ScopeID:   scopeID,
		JTI:       accessID,
	}
	access, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), payload)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return access, refresh, nil
}

func (s *service) recordSignIn(ctx context.Context, profile *models.Profile, extra map[string]any) error {
	now := time.Now().UTC()
	updates := map[string]any{"last_signed_in_at": now}
	for column, value := range extra {
		updates[column] = value
	}
	if err := s.repo.UpdateProfile(ctx, profile.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record sign-in")
	}
	profile.LastSignedInAt = &now
	return nil
}

func accountTypeForRole(role enums.ProfileRole) enums.AccountType {
	switch role {
	case enums.ProfileRoleWholesaler:
		return enums.AccountTypeWholesaler
	case enums.ProfileRoleRetailer:
		return enums.AccountTypeRetailer
	default:
		return ""
	}
}
