package repository

import (
	"context"

	"app/internal/domain/model"
)

type CouponListQuery struct {
	Page  int
	Limit int

	//nilなら全部、trueで有効のみ
	IsActive *bool
}

// クーポンの永続化。
// IncrementUsedIfAvailable が過剰利用に対する最終防衛線で、
// 上限判定と加算をSQL1文で原子的に行う。検証器の判定はあくまで時点チェック。
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	FindByID(ctx context.Context, couponID int64) (model.Coupon, error)
	List(ctx context.Context, q CouponListQuery) ([]model.Coupon, int64, error)

	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	SoftDelete(ctx context.Context, couponID int64) error

	//used_count < usage_limit のときだけ加算してtrue。上限なしなら常に加算。
	IncrementUsedIfAvailable(ctx context.Context, couponID int64) (bool, error)

	//(coupon, user) の既存使用記録数
	CountUsagesByUser(ctx context.Context, couponID int64, userID int64) (int64, error)

	//注文確定時の使用記録。以後変更しない。
	CreateUsage(ctx context.Context, usage model.CouponUsage) error
}
