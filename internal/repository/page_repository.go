package repository

import (
	"context"

	"app/internal/domain/model"
)

// 静的ページ。公開側はslug、管理側はIDで触る。
type PageRepository interface {
	FindPublishedBySlug(ctx context.Context, slug string) (model.Page, error)
	FindByID(ctx context.Context, id int64) (model.Page, error)
	List(ctx context.Context, page int, limit int) ([]model.Page, int64, error)

	Create(ctx context.Context, p model.Page) (model.Page, error)
	Update(ctx context.Context, p model.Page) error
	SoftDelete(ctx context.Context, id int64) error
}
