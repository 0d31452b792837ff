package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// EmailTemplateUsecase はメールテンプレートの管理CRUDです。
// 描画・送信はこのシステムの外。
type EmailTemplateUsecase struct {
	templateRepo repo.EmailTemplateRepository
}

func NewEmailTemplateUsecase(templateRepo repo.EmailTemplateRepository) *EmailTemplateUsecase {
	return &EmailTemplateUsecase{templateRepo: templateRepo}
}

type EmailTemplateInput struct {
	Name     string
	Subject  string
	Body     string
	IsActive bool
}

func (in EmailTemplateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(in.Name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "name too long")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return NewHTTPError(http.StatusBadRequest, "subject required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return NewHTTPError(http.StatusBadRequest, "body required")
	}
	return nil
}

type EmailTemplateListOutput struct {
	Items []model.EmailTemplate `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func (u *EmailTemplateUsecase) List(ctx context.Context, page, limit int) (EmailTemplateListOutput, error) {
	if page < 1 {
		return EmailTemplateListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return EmailTemplateListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.templateRepo.List(ctx, page, limit)
	if err != nil {
		return EmailTemplateListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return EmailTemplateListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *EmailTemplateUsecase) Get(ctx context.Context, templateID int64) (model.EmailTemplate, error) {
	if templateID <= 0 {
		return model.EmailTemplate{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := u.templateRepo.FindByID(ctx, templateID)
	if err == repo.ErrNotFound {
		return model.EmailTemplate{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.EmailTemplate{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return t, nil
}

func (u *EmailTemplateUsecase) Create(ctx context.Context, adminUserID int64, in EmailTemplateInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	now := time.Now()
	t, err := u.templateRepo.Create(ctx, model.EmailTemplate{
		Name:      strings.TrimSpace(in.Name),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      in.Body,
		IsActive:  in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusConflict, "template name already exists")
	}
	return t.ID, nil
}

func (u *EmailTemplateUsecase) Update(ctx context.Context, adminUserID int64, templateID int64, in EmailTemplateInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if templateID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	err := u.templateRepo.Update(ctx, model.EmailTemplate{
		ID:        templateID,
		Name:      strings.TrimSpace(in.Name),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      in.Body,
		IsActive:  in.IsActive,
		UpdatedAt: time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *EmailTemplateUsecase) Delete(ctx context.Context, adminUserID int64, templateID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if templateID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.templateRepo.Delete(ctx, templateID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
