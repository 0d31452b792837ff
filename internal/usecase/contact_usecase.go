package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	v10 "github.com/go-playground/validator/v10"
)

var contactValidate = v10.New()

// ContactUsecase は問い合わせフォームの受付と管理画面での確認です。
type ContactUsecase struct {
	contactRepo repo.ContactRepository
	auditRepo   repo.AuditLogRepository
}

func NewContactUsecase(contactRepo repo.ContactRepository, auditRepo repo.AuditLogRepository) *ContactUsecase {
	return &ContactUsecase{contactRepo: contactRepo, auditRepo: auditRepo}
}

type SubmitContactInput struct {
	Name    string `validate:"required,max=255"`
	Email   string `validate:"required,email,max=255"`
	Phone   string `validate:"max=30"`
	Subject string `validate:"required,max=255"`
	Message string `validate:"required,max=5000"`
}

// SubmitContact は誰でも投稿できる。認証は要らない。
func (u *ContactUsecase) SubmitContact(ctx context.Context, in SubmitContactInput) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	if err := contactValidate.Struct(in); err != nil {
		return 0, NewHTTPError(http.StatusBadRequest, "validation error")
	}

	now := time.Now()
	m, err := u.contactRepo.Create(ctx, model.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m.ID, nil
}

type ContactListOutput struct {
	Items []model.ContactMessage `json:"items"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

func (u *ContactUsecase) AdminList(ctx context.Context, page, limit int, resolved *bool) (ContactListOutput, error) {
	if page < 1 {
		return ContactListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ContactListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.contactRepo.List(ctx, repo.ContactListQuery{
		Page:     page,
		Limit:    limit,
		Resolved: resolved,
	})
	if err != nil {
		return ContactListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ContactListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *ContactUsecase) AdminGet(ctx context.Context, contactID int64) (model.ContactMessage, error) {
	if contactID <= 0 {
		return model.ContactMessage{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.contactRepo.FindByID(ctx, contactID)
	if err == repo.ErrNotFound {
		return model.ContactMessage{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.ContactMessage{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

// 対応済みフラグの切り替え
func (u *ContactUsecase) AdminMarkResolved(ctx context.Context, adminUserID int64, contactID int64, resolved bool) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if contactID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	m, err := u.contactRepo.FindByID(ctx, contactID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.contactRepo.MarkResolved(ctx, contactID, resolved); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON := `{"is_resolved":false}`
	afterJSON := `{"is_resolved":true}`
	if m.IsResolved {
		beforeJSON = `{"is_resolved":true}`
	}
	if !resolved {
		afterJSON = `{"is_resolved":false}`
	}
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionResolveContact,
		ResourceType: model.AuditResourceContact,
		ResourceID:   contactID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
