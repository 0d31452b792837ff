package repository

import (
	"context"

	"app/internal/domain/model"
)

type ContactListQuery struct {
	Page  int
	Limit int

	//nilなら全部、falseで未対応のみ
	Resolved *bool
}

// 問い合わせの保存と管理画面向けの取得。
type ContactRepository interface {
	Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error)
	FindByID(ctx context.Context, id int64) (model.ContactMessage, error)
	List(ctx context.Context, q ContactListQuery) ([]model.ContactMessage, int64, error)
	MarkResolved(ctx context.Context, id int64, resolved bool) error
}
