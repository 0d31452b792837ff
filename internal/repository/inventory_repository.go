package repository

import (
	"context"

	"app/internal/domain/model"
)

// 在庫の更新。Decrease系は「足りるときだけ減らす」条件付き更新で、
// 注文確定時の再検証を兼ねる（追加時のチェックは時点判定でしかない）。
type InventoryRepository interface {
	//本体在庫
	SetStock(ctx context.Context, productID int64, newStock int64) error
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	//バリアント在庫
	SetVariantStock(ctx context.Context, variantID int64, newStock int64) error
	DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)
	IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error

	//調整履歴
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
