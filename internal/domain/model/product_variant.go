package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品バリアント（色・サイズなど）。
// Priceがnilなら親商品の価格を使う。
type ProductVariant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`

	Price *decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Stock int64            `gorm:"not null;default:0" json:"stock"`

	InStock  bool `gorm:"not null;default:true" json:"in_stock"`
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	//自動選択の優先フラグ。商品ごとに1つ想定（DBでは強制しない）。
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	//カタログ上の並び順
	Position int `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// バリアント単体の実効価格。
func (v ProductVariant) EffectivePrice(productPrice decimal.Decimal) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return productPrice
}
