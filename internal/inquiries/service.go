package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/pagination"
)

const (
	minTitleLen    = 2
	maxTitleLen    = 200
	minContentLen  = 10
	maxContentLen  = 5000
	maxAttachments = 5
)

// Service exposes the inquiry thread workflow.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Inquiry, error)
	Get(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error)
	Reply(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID, content string) (*models.Inquiry, error)
	AddFollowUp(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID, content string) (*models.InquiryMessage, error)
	Close(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID) (*models.Inquiry, error)
	EditMessage(ctx context.Context, actor authz.Actor, messageID uuid.UUID, content string) (*models.InquiryMessage, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the inquiry service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiries repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Create opens an inquiry and writes its first message. The message write
// is intentionally outside the inquiry insert: a failed message leaves the
// inquiry row in place, which the thread view tolerates.
func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (*models.Inquiry, error) {
	if actor.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inquiry type")
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
	if len(input.Attachments) > maxAttachments {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("at most %d attachments allowed", maxAttachments))
	}

	switch input.Type {
	case enums.InquiryTypeWholesalerToAdmin:
		if !actor.IsWholesaler() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wholesaler role required for this inquiry type")
		}
		if input.WholesalerID != nil || input.OrderID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesaler inquiries carry no wholesaler or order reference")
		}
	case enums.InquiryTypeRetailerToWholesaler:
		if !actor.IsRetailer() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "retailer role required for this inquiry type")
		}
		if input.WholesalerID == nil || *input.WholesalerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesaler_id is required for this inquiry type")
		}
	case enums.InquiryTypeRetailerToAdmin:
		if !actor.IsRetailer() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "retailer role required for this inquiry type")
		}
	}

	inquiry := &models.Inquiry{
		AuthorProfileID: actor.ProfileID,
		InquiryType:     input.Type,
		WholesalerID:    input.WholesalerID,
		OrderID:         input.OrderID,
		ProductID:       input.ProductID,
		Title:           title,
		Status:          enums.InquiryStatusOpen,
		Attachments:     pq.StringArray(input.Attachments),
	}
	created, err := s.repo.Create(ctx, inquiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inquiry")
	}

	if _, err := s.repo.CreateMessage(ctx, &models.InquiryMessage{
		InquiryID:  created.ID,
		SenderType: enums.MessageSenderUser,
		SenderID:   actor.ProfileID,
		Content:    content,
	}); err != nil {
		s.logg.Warn(ctx, "initial inquiry message write failed: "+err.Error())
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, inquiry) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inquiry belongs to another party")
	}
	return inquiry, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, params ListParams) (*ListResult, error) {
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid type filter")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	offset, limit := pagination.OffsetParams{Page: params.Page, Size: params.Size}.Normalize()
	query := listQuery{inquiryType: params.Type, status: params.Status, offset: offset, limit: limit}
	switch {
	case actor.IsAdmin():
		// unscoped
	case actor.IsWholesaler() && actor.Scope() != uuid.Nil:
		// a wholesaler sees retailer inquiries aimed at them plus their own
		// authored threads; the former is the notification-bearing view
		scope := actor.Scope()
		query.wholesalerID = &scope
	default:
		profileID := actor.ProfileID
		if profileID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile identity missing")
		}
		query.authorProfileID = &profileID
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

// Reply writes the responder's answer: admin_reply and replied_at are set
// and the thread flips to answered.
func (s *service) Reply(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID, content string) (*models.Inquiry, error) {
	reply, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.Status == enums.InquiryStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry is closed")
	}
	if err := s.authorizeResponder(actor, inquiry); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, inquiryID, map[string]any{
		"admin_reply": reply,
		"replied_at":  now,
		"status":      enums.InquiryStatusAnswered,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reply to inquiry")
	}
	inquiry.AdminReply = &reply
	inquiry.RepliedAt = &now
	inquiry.Status = enums.InquiryStatusAnswered

	if _, err := s.repo.CreateMessage(ctx, &models.InquiryMessage{
		InquiryID:  inquiryID,
		SenderType: enums.MessageSenderAdmin,
		SenderID:   actor.ProfileID,
		Content:    reply,
	}); err != nil {
		s.logg.Warn(ctx, "reply message write failed: "+err.Error())
	}
	return inquiry, nil
}

// AddFollowUp appends a message without touching the thread status; whether
// an answered thread counts as reopened is the reader's concern.
func (s *service) AddFollowUp(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID, content string) (*models.InquiryMessage, error) {
	body, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.Status == enums.InquiryStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry is closed")
	}

	sender := enums.MessageSenderUser
	if inquiry.AuthorProfileID != actor.ProfileID {
		if err := s.authorizeResponder(actor, inquiry); err != nil {
			return nil, err
		}
		sender = enums.MessageSenderAdmin
	}

	message, err := s.repo.CreateMessage(ctx, &models.InquiryMessage{
		InquiryID:  inquiryID,
		SenderType: sender,
		SenderID:   actor.ProfileID,
		Content:    body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add follow-up message")
	}
	return message, nil
}

func (s *service) Close(ctx context.Context, actor authz.Actor, inquiryID uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && inquiry.AuthorProfileID != actor.ProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin may close an inquiry")
	}
	if inquiry.Status == enums.InquiryStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry is already closed")
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, inquiryID, map[string]any{
		"status":    enums.InquiryStatusClosed,
		"closed_at": now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close inquiry")
	}
	inquiry.Status = enums.InquiryStatusClosed
	inquiry.ClosedAt = &now
	return inquiry, nil
}

func (s *service) EditMessage(ctx context.Context, actor authz.Actor, messageID uuid.UUID, content string) (*models.InquiryMessage, error) {
	body, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if messageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id is required")
	}

	message, err := s.repo.FindMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup message")
	}
	if message.SenderID != actor.ProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the sender may edit a message")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateMessage(ctx, messageID, map[string]any{
		"content":   body,
		"edited_at": now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "edit message")
	}
	message.Content = body
	message.EditedAt = &now
	return message, nil
}

func (s *service) authorizeResponder(actor authz.Actor, inquiry *models.Inquiry) error {
	if inquiry.InquiryType.TargetsAdmin() {
		if !actor.IsAdmin() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required to respond")
		}
		return nil
	}
	if actor.IsAdmin() {
		return nil
	}
	if inquiry.WholesalerID == nil || !actor.OwnsScope(*inquiry.WholesalerID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "inquiry targets another wholesaler")
	}
	return nil
}

func (s *service) canView(actor authz.Actor, inquiry *models.Inquiry) bool {
	if actor.IsAdmin() {
		return true
	}
	if inquiry.AuthorProfileID == actor.ProfileID {
		return true
	}
	if inquiry.InquiryType == enums.InquiryTypeRetailerToWholesaler &&
		inquiry.WholesalerID != nil && actor.OwnsScope(*inquiry.WholesalerID) {
		return true
	}
	return false
}

func (s *service) loadInquiry(ctx context.Context, inquiryID uuid.UUID) (*models.Inquiry, error) {
	if inquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id is required")
	}
	inquiry, err := s.repo.FindByID(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup inquiry")
	}
	return inquiry, nil
}

func validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if n := len([]rune(trimmed)); n < minContentLen || n > maxContentLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("content must be %d-%d characters", minContentLen, maxContentLen))
	}
	return trimmed, nil
}
