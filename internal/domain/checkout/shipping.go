package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"app/internal/domain/model"
)

type ShippingOptionType string

const (
	ShippingOptionFree     ShippingOptionType = "free"
	ShippingOptionStandard ShippingOptionType = "standard"
	ShippingOptionExpress  ShippingOptionType = "express"
)

// 配送の選択肢。毎回カート内容と地域から計算し直し、保存はしない。
type ShippingOption struct {
	Type          ShippingOptionType `json:"type"`
	Name          string             `json:"name"`
	Cost          decimal.Decimal    `json:"cost"`
	Description   string             `json:"description"`
	EstimatedDays string             `json:"estimated_days"`
}

// 既定送料タリフ。テスト時に別タリフを注入できるよう設定値として持つ。
type Tariff struct {
	StandardDhaka   decimal.Decimal
	StandardOutside decimal.Decimal
	Express         decimal.Decimal
}

func DefaultTariff() Tariff {
	return Tariff{
		StandardDhaka:   decimal.NewFromInt(70),
		StandardOutside: decimal.NewFromInt(120),
		Express:         decimal.NewFromInt(150),
	}
}

type ShippingQuote struct {
	Options []ShippingOption `json:"options"`

	//提示する選択肢のうち最安のもの（同額は先に並んだ方）
	DefaultOption *ShippingOption `json:"default_option"`

	TotalWeight decimal.Decimal `json:"total_weight"`
}

type ShippingCalculator struct {
	tariff Tariff
}

func NewShippingCalculator(tariff Tariff) *ShippingCalculator {
	return &ShippingCalculator{tariff: tariff}
}

// Quote はカート行と地域から選択肢を列挙する。空カートは選択肢なし。
func (c *ShippingCalculator) Quote(lines []Line, zone Zone) ShippingQuote {
	quote := ShippingQuote{
		Options:     []ShippingOption{},
		TotalWeight: decimal.Zero,
	}

	for _, l := range lines {
		quote.TotalWeight = quote.TotalWeight.Add(l.Product.Weight.Mul(decimal.NewFromInt(l.Quantity)))
	}

	if len(lines) == 0 {
		return quote
	}

	hasFree := false
	hasStandard := false
	hasExpress := false
	for _, l := range lines {
		switch l.Product.ShippingType {
		case model.ShippingTypeFree:
			hasFree = true
		case model.ShippingTypeStandard:
			hasStandard = true
		}
		if l.Product.HasExpressShipping {
			hasExpress = true
		}
	}
	//即日配送はダッカ地域限定
	hasExpress = hasExpress && zone == ZoneDhaka

	//メイン選択肢。freeが混ざっていればstandardより優先し、送料は取らない。
	if hasFree {
		quote.Options = append(quote.Options, ShippingOption{
			Type:          ShippingOptionFree,
			Name:          "Free Shipping",
			Cost:          decimal.Zero,
			Description:   "Free delivery on this order",
			EstimatedDays: "3-5 days",
		})
	} else if hasStandard {
		quote.Options = append(quote.Options, ShippingOption{
			Type:          ShippingOptionStandard,
			Name:          fmt.Sprintf("Standard Shipping (%s)", zone.DisplayName()),
			Cost:          c.standardCost(lines, zone),
			Description:   "Regular courier delivery",
			EstimatedDays: c.standardDays(zone),
		})
	}

	//即日配送はメイン選択肢とは独立に追加する
	if hasExpress {
		quote.Options = append(quote.Options, ShippingOption{
			Type:          ShippingOptionExpress,
			Name:          "Express Shipping (Same Day)",
			Cost:          c.expressCost(lines),
			Description:   "Same day delivery within Dhaka",
			EstimatedDays: "Same day",
		})
	}

	//最安を推奨に。同額なら先に積んだ方を保つ。
	for i := range quote.Options {
		if quote.DefaultOption == nil || quote.Options[i].Cost.LessThan(quote.DefaultOption.Cost) {
			quote.DefaultOption = &quote.Options[i]
		}
	}

	return quote
}

// standardCost は商品別送料（上書きがなければ既定タリフ）の最大値。
// 複数商品の送料を合算はしない。
func (c *ShippingCalculator) standardCost(lines []Line, zone Zone) decimal.Decimal {
	def := c.tariff.StandardDhaka
	if zone == ZoneOutside {
		def = c.tariff.StandardOutside
	}

	cost := decimal.Zero
	for _, l := range lines {
		if l.Product.ShippingType == model.ShippingTypeFree {
			continue
		}
		per := def
		if zone == ZoneDhaka && l.Product.ShippingCostDhaka != nil {
			per = *l.Product.ShippingCostDhaka
		}
		if zone == ZoneOutside && l.Product.ShippingCostOutside != nil {
			per = *l.Product.ShippingCostOutside
		}
		if per.GreaterThan(cost) {
			cost = per
		}
	}
	return cost
}

// expressCost も最大値ルール。対象は即日配送可の商品行だけ。
func (c *ShippingCalculator) expressCost(lines []Line) decimal.Decimal {
	cost := decimal.Zero
	for _, l := range lines {
		if !l.Product.HasExpressShipping {
			continue
		}
		per := c.tariff.Express
		if l.Product.ShippingCostExpress != nil {
			per = *l.Product.ShippingCostExpress
		}
		if per.GreaterThan(cost) {
			cost = per
		}
	}
	return cost
}

func (c *ShippingCalculator) standardDays(zone Zone) string {
	if zone == ZoneDhaka {
		return "2-3 days"
	}
	return "5-7 days"
}
