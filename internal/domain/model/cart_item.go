package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// 追加時点の単価を必ずスナップショットする（後の価格改定は反映しない）。
// (cart, product, variant) の組で1行。同じ組の追加は数量加算になる。
type CartItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64  `gorm:"not null;index" json:"cart_id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	VariantID *int64 `gorm:"index" json:"variant_id"`

	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null;column:unit_price_snapshot" json:"unit_price_snapshot"`

	//在庫切れ時にシステムが代替バリアントを選んだ行か
	VariantAutoSelected bool `gorm:"not null;default:false" json:"variant_auto_selected"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 行合計 = 単価スナップショット × 数量。
func (i CartItem) TotalPrice() decimal.Decimal {
	return i.UnitPriceSnapshot.Mul(decimal.NewFromInt(i.Quantity))
}
