package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixedAmount  DiscountType = "fixed_amount"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
)

// クーポン。UsedCountは注文確定時にだけ増え、減ることはない。
type Coupon struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	DiscountType  DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_value"`

	//適用条件と上限
	MinimumOrderAmount    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"minimum_order_amount"`
	MaximumDiscountAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"maximum_discount_amount"`

	//nilなら全体上限なし
	UsageLimit        *int64 `gorm:"" json:"usage_limit"`
	UsageLimitPerUser int64  `gorm:"not null;default:1" json:"usage_limit_per_user"`
	UsedCount         int64  `gorm:"not null;default:0" json:"used_count"`

	//有効期間
	ValidFrom  time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil time.Time `gorm:"not null" json:"valid_until"`

	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
