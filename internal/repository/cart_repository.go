package repository

import (
	"context"

	"app/internal/domain/model"
)

// カートの取得・作成。
// get-or-createは同一ブラウザの同時リクエストで二重作成し得るので、
// 実装はリトライ込みの冪等な取得として振る舞うこと。
type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	GetOrCreateActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error)

	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error)

	//仮適用クーポンの記録。nilで解除。
	SetCouponCode(ctx context.Context, cartID int64, code *string) error

	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	Clear(ctx context.Context, cartID int64) error
}
