package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 配送区分。freeは送料なし、standardは地域別の通常配送。
type ShippingType string

const (
	ShippingTypeFree     ShippingType = "free"
	ShippingTypeStandard ShippingType = "standard"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	//在庫数。TrackInventory=false の商品では制約にならない。
	Stock          int64 `gorm:"not null" json:"stock"`
	TrackInventory bool  `gorm:"not null;default:true" json:"track_inventory"`

	//重量(kg)。未設定は0扱い。
	Weight decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"weight"`

	//配送ファクト
	ShippingType       ShippingType `gorm:"type:varchar(20);not null;default:'standard'" json:"shipping_type"`
	HasExpressShipping bool         `gorm:"not null;default:false" json:"has_express_shipping"`

	//商品ごとの送料上書き。nilなら既定タリフを使う。
	ShippingCostDhaka   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_cost_dhaka"`
	ShippingCostOutside *decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_cost_outside"`
	ShippingCostExpress *decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_cost_express"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
