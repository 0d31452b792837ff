package checkout

import "fmt"

// 在庫判定の結果。
// Variantがnilなら本体のまま、非nilならその行はこのバリアントで持つ。
type Resolution struct {
	Variant      *VariantFacts
	AutoSelected bool

	//自動選択時に利用者へ見せる説明文
	Notice string
}

// 在庫充足の判定と、本体在庫切れ時のバリアント自動選択。
type StockResolver struct{}

func NewStockResolver() *StockResolver {
	return &StockResolver{}
}

// Resolve は (商品, 任意の指定バリアント, 希望数量) を判定する。
// 数量を増やす再チェックでは呼び出し側が「増分ではなく新しい合計」を渡すこと。
func (r *StockResolver) Resolve(p ProductFacts, variants []VariantFacts, requested *VariantFacts, quantity int64) (Resolution, error) {
	//バリアント明示指定なら代替はしない。足りなければそのまま拒否。
	if requested != nil {
		available := requested.Stock
		if !requested.InStock {
			available = 0
		}
		if !requested.InStock || requested.Stock < quantity {
			return Resolution{}, &StockInsufficientError{
				ProductName: fmt.Sprintf("%s (%s)", p.Name, requested.Name),
				Requested:   quantity,
				Available:   available,
			}
		}
		return Resolution{Variant: requested}, nil
	}

	//在庫非追跡、または本体在庫で足りるならそのまま。
	if !p.TrackInventory || p.Stock >= quantity {
		return Resolution{}, nil
	}

	//本体が足りない。アクティブかつ在庫十分なバリアントを探す。
	var candidate *VariantFacts
	for i := range variants {
		v := variants[i]
		if !v.IsActive || !v.InStock || v.Stock < quantity {
			continue
		}
		if v.IsDefault {
			//デフォルトフラグ付きが最優先
			candidate = &variants[i]
			break
		}
		if candidate == nil {
			//無ければカタログ順で最初の候補
			candidate = &variants[i]
		}
	}

	if candidate == nil {
		return Resolution{}, &StockInsufficientError{
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.Stock,
		}
	}

	return Resolution{
		Variant:      candidate,
		AutoSelected: true,
		Notice:       fmt.Sprintf("%s is low on stock; variant %q was selected automatically", p.Name, candidate.Name),
	}, nil
}
