package usecase

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PageUsecase は静的ページ（利用規約・会社概要など）です。
// 公開側はslugで読むだけ、編集は管理者のみ。
type PageUsecase struct {
	pageRepo repo.PageRepository
}

func NewPageUsecase(pageRepo repo.PageRepository) *PageUsecase {
	return &PageUsecase{pageRepo: pageRepo}
}

// 公開ページの取得。非公開は「存在しない扱い」。
func (u *PageUsecase) GetPublishedPage(ctx context.Context, slug string) (model.Page, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || !slugPattern.MatchString(slug) {
		return model.Page{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	p, err := u.pageRepo.FindPublishedBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return model.Page{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Page{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type AdminPageInput struct {
	Slug        string
	Title       string
	Body        string
	IsPublished bool
}

func (in AdminPageInput) validate() error {
	if !slugPattern.MatchString(strings.TrimSpace(in.Slug)) {
		return NewHTTPError(http.StatusBadRequest, "invalid slug")
	}
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return NewHTTPError(http.StatusBadRequest, "body required")
	}
	return nil
}

type PageListOutput struct {
	Items []model.Page `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *PageUsecase) AdminList(ctx context.Context, page, limit int) (PageListOutput, error) {
	if page < 1 {
		return PageListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return PageListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.pageRepo.List(ctx, page, limit)
	if err != nil {
		return PageListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return PageListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *PageUsecase) AdminGet(ctx context.Context, pageID int64) (model.Page, error) {
	if pageID <= 0 {
		return model.Page{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := u.pageRepo.FindByID(ctx, pageID)
	if err == repo.ErrNotFound {
		return model.Page{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Page{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *PageUsecase) AdminCreate(ctx context.Context, adminUserID int64, in AdminPageInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	now := time.Now()
	p, err := u.pageRepo.Create(ctx, model.Page{
		Slug:        strings.TrimSpace(in.Slug),
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
		IsPublished: in.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusConflict, "slug already exists")
	}
	return p.ID, nil
}

func (u *PageUsecase) AdminUpdate(ctx context.Context, adminUserID int64, pageID int64, in AdminPageInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if pageID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	err := u.pageRepo.Update(ctx, model.Page{
		ID:          pageID,
		Slug:        strings.TrimSpace(in.Slug),
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
		IsPublished: in.IsPublished,
		UpdatedAt:   time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *PageUsecase) AdminDelete(ctx context.Context, adminUserID int64, pageID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if pageID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.pageRepo.SoftDelete(ctx, pageID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
