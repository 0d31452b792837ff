package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 明細のupsert入力。(cart, product, variant) の組が既にあれば数量を加算する。
type UpsertLineInput struct {
	CartID              int64
	ProductID           int64
	VariantID           *int64
	AddQuantity         int64
	UnitPriceSnapshot   decimal.Decimal
	VariantAutoSelected bool
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	//同一の (cart, product, variant) は数量加算
	UpsertLine(ctx context.Context, in UpsertLineInput) error

	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error

	//明細がそのカートのものか
	IsOwnedByCart(ctx context.Context, cartItemID int64, cartID int64) (bool, error)
}
