package csthreads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

const (
	minTitleLen   = 2
	maxTitleLen   = 200
	minContentLen = 10
	maxContentLen = 5000
)

// Service exposes the customer-service thread workflow.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.CSThread, error)
	Get(ctx context.Context, actor authz.Actor, threadID uuid.UUID) (*models.CSThread, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	Reply(ctx context.Context, actor authz.Actor, threadID uuid.UUID, content string) (*models.CSThread, error)
	Escalate(ctx context.Context, actor authz.Actor, threadID uuid.UUID) (*models.CSThread, error)
	Close(ctx context.Context, actor authz.Actor, threadID uuid.UUID) (*models.CSThread, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the CS thread service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cs thread repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.CSThread, error) {
	if actor.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if n := len([]rune(title)); n < minTitleLen || n > maxTitleLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("title must be %d-%d characters", minTitleLen, maxTitleLen))
	}
	content, err := validateContent(input.Content)
	if err != nil {
		return nil, err
	}

	thread, err := s.repo.Create(ctx, &models.CSThread{
		ProfileID: actor.ProfileID,
		Title:     title,
		Status:    enums.CSThreadStatusOpen,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cs thread")
	}

	if _, err := s.repo.CreateMessage(ctx, &models.CSMessage{
		ThreadID:   thread.ID,
		SenderType: enums.MessageSenderUser,
		SenderID:   actor.ProfileID,
		Content:    content,
	}); err != nil {
		s.logg.Warn(ctx, "initial cs message write failed: "+err.Error())
	}
	return thread, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, threadID uuid.UUID) (*models.CSThread, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && thread.ProfileID != actor.ProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "thread belongs to another profile")
	}
	return thread, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	query := listQuery{status: params.Status, offset: offset, limit: limit}
	if !actor.IsAdmin() {
		if actor.ProfileID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
		}
		profileID := actor.ProfileID
		query.profileID = &profileID
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cs threads")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

// Reply posts into a thread that still accepts replies. An admin reply
// resolves the thread to answered; the author's own message leaves the
// status alone.
func (s *service) Reply(ctx context.Context, actor authz.Actor, threadID uuid.UUID, content string) (*models.CSThread, error) {
	body, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && thread.ProfileID != actor.ProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "thread belongs to another profile")
	}
	if !thread.Status.AcceptsReply() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("thread no longer accepts replies in status %s", thread.Status))
	}

	sender := enums.MessageSenderUser
	if actor.IsAdmin() {
		sender = enums.MessageSenderAdmin
	}
	if _, err := s.repo.CreateMessage(ctx, &models.CSMessage{
		ThreadID:   threadID,
		SenderType: sender,
		SenderID:   actor.ProfileID,
		Content:    body,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post cs message")
	}

	if actor.IsAdmin() {
		if err := s.repo.Update(ctx, threadID, map[string]any{
			"status": enums.CSThreadStatusAnswered,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cs thread")
		}
		thread.Status = enums.CSThreadStatusAnswered
	}
	return thread, nil
}

func (s *service) Escalate(ctx context.Context, actor authz.Actor, threadID uuid.UUID) (*models.CSThread, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status != enums.CSThreadStatusOpen && thread.Status != enums.CSThreadStatusBotHandled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot escalate a thread in status %s", thread.Status))
	}

	if err := s.repo.Update(ctx, threadID, map[string]any{
		"status": enums.CSThreadStatusEscalated,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "escalate cs thread")
	}
	thread.Status = enums.CSThreadStatusEscalated
	return thread, nil
}

func (s *service) Close(ctx context.Context, actor authz.Actor, threadID uuid.UUID) (*models.CSThread, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && thread.ProfileID != actor.ProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "thread belongs to another profile")
	}
	if thread.Status == enums.CSThreadStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "thread is already closed")
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, threadID, map[string]any{
		"status":    enums.CSThreadStatusClosed,
		"closed_at": now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close cs thread")
	}
	thread.Status = enums.CSThreadStatusClosed
	thread.ClosedAt = &now
	return thread, nil
}

func (s *service) loadThread(ctx context.Context, threadID uuid.UUID) (*models.CSThread, error) {
	if threadID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "thread id is required")
	}
	thread, err := s.repo.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "thread not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup thread")
	}
	return thread, nil
}

func validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if n := len([]rune(trimmed)); n < minContentLen || n > maxContentLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("content must be %d-%d characters", minContentLen, maxContentLen))
	}
	return trimmed, nil
}
