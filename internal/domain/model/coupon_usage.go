package model

import "time"

// クーポン使用記録。(coupon, user, order) 1回の利用につき1行。
// 注文確定時に作成し、以後変更しない。ユーザー別上限はこの行数で数える。
type CouponUsage struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID int64 `gorm:"not null;index" json:"coupon_id"`
	UserID   int64 `gorm:"not null;index" json:"user_id"`
	OrderID  int64 `gorm:"not null;index" json:"order_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
