package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// 配送地域。送料テーブルと即日配送の可否を決める。
type ShippingZone string

const (
	ShippingZoneDhaka   ShippingZone = "dhaka"
	ShippingZoneOutside ShippingZone = "outside"
)

type Order struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`
	AddressID int64 `gorm:"not null" json:"address_id"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//確定時の金額内訳。TaxAmountとDiscountAmountは現状常に0。
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_cost"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	CouponDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"coupon_discount"`
	CouponCode     *string         `gorm:"type:varchar(50)" json:"coupon_code"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	ShippingZone ShippingZone `gorm:"type:varchar(20);not null" json:"shipping_zone"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
