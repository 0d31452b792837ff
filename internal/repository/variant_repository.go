package repository

import (
	"context"

	"app/internal/domain/model"
)

// バリアントの永続化。一覧はカタログ順（position, id）で返す。
type VariantRepository interface {
	ListByProductID(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error)

	Create(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error)
	Update(ctx context.Context, v model.ProductVariant) error
	Delete(ctx context.Context, variantID int64) error
}
