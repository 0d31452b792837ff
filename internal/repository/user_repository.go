package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	//アクティブ切替・ロール変更・最終ログイン更新など
	Update(ctx context.Context, user *model.User) error

	//+1すると発行済みトークンが全部無効になる
	IncrementTokenVersion(ctx context.Context, userID int64) error

	//管理画面のユーザー一覧
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
}
