package model

import "time"

type CartStatus string

const (
	CartStatusActive     CartStatus = "ACTIVE"
	CartStatusCheckedOut CartStatus = "CHECKED_OUT"
	CartStatusAbandoned  CartStatus = "ABANDONED"
)

// カート。ログインユーザーか匿名セッションのどちらか一方に必ず属する。
// ACTIVEは所有者ごとに1つ。
type Cart struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//どちらか片方だけ入る
	UserID       *int64  `gorm:"index" json:"user_id"`
	SessionToken *string `gorm:"type:varchar(64);index" json:"-"`

	Status CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//仮適用クーポン。注文確定までは取り消し可能で、使用記録も作らない。
	CouponCode *string `gorm:"type:varchar(50)" json:"coupon_code"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
