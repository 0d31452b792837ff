package checkout

import (
	"github.com/shopspring/decimal"

	"app/internal/domain/model"
)

// 配送地域
type Zone string

const (
	ZoneDhaka   Zone = "dhaka"
	ZoneOutside Zone = "outside"
)

func ParseZone(s string) (Zone, bool) {
	switch Zone(s) {
	case ZoneDhaka:
		return ZoneDhaka, true
	case ZoneOutside:
		return ZoneOutside, true
	default:
		return "", false
	}
}

// 地域の表示名
func (z Zone) DisplayName() string {
	if z == ZoneDhaka {
		return "Dhaka"
	}
	return "Outside Dhaka"
}

// エンジンが参照するカタログ側の読み取り専用ファクト。
// エンジンはこれを書き換えない。
type ProductFacts struct {
	ID                  int64
	Name                string
	Price               decimal.Decimal
	Stock               int64
	TrackInventory      bool
	Weight              decimal.Decimal
	ShippingType        model.ShippingType
	HasExpressShipping  bool
	ShippingCostDhaka   *decimal.Decimal
	ShippingCostOutside *decimal.Decimal
	ShippingCostExpress *decimal.Decimal
}

type VariantFacts struct {
	ID        int64
	ProductID int64
	Name      string
	Price     *decimal.Decimal
	Stock     int64
	InStock   bool
	IsActive  bool
	IsDefault bool
}

// バリアントの実効価格（未設定は親商品価格）
func (v VariantFacts) EffectivePrice(productPrice decimal.Decimal) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return productPrice
}

// カート1行分の計算入力。単価は行作成時のスナップショット。
type Line struct {
	Product   ProductFacts
	Quantity  int64
	UnitPrice decimal.Decimal
}

// 行合計
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

func ProductFactsOf(p model.Product) ProductFacts {
	return ProductFacts{
		ID:                  p.ID,
		Name:                p.Name,
		Price:               p.Price,
		Stock:               p.Stock,
		TrackInventory:      p.TrackInventory,
		Weight:              p.Weight,
		ShippingType:        p.ShippingType,
		HasExpressShipping:  p.HasExpressShipping,
		ShippingCostDhaka:   p.ShippingCostDhaka,
		ShippingCostOutside: p.ShippingCostOutside,
		ShippingCostExpress: p.ShippingCostExpress,
	}
}

func VariantFactsOf(v model.ProductVariant) VariantFacts {
	return VariantFacts{
		ID:        v.ID,
		ProductID: v.ProductID,
		Name:      v.Name,
		Price:     v.Price,
		Stock:     v.Stock,
		InStock:   v.InStock,
		IsActive:  v.IsActive,
		IsDefault: v.IsDefault,
	}
}
