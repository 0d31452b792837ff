package repository

import (
	"context"

	"app/internal/domain/model"
)

// メールテンプレートのCRUD。描画・送信はこのシステムの外。
type EmailTemplateRepository interface {
	FindByID(ctx context.Context, id int64) (model.EmailTemplate, error)
	FindByName(ctx context.Context, name string) (model.EmailTemplate, error)
	List(ctx context.Context, page int, limit int) ([]model.EmailTemplate, int64, error)

	Create(ctx context.Context, t model.EmailTemplate) (model.EmailTemplate, error)
	Update(ctx context.Context, t model.EmailTemplate) error
	Delete(ctx context.Context, id int64) error
}
