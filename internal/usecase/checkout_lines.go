package usecase

import (
	"context"

	"app/internal/domain/checkout"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カート明細を計算エンジンの入力行に変換する。
// 非公開になった商品の行は落とす（カート表示と同じ扱い）。
func buildCheckoutLines(ctx context.Context, products repo.ProductRepository, items []model.CartItem) ([]checkout.Line, error) {
	lines := make([]checkout.Line, 0, len(items))
	for _, it := range items {
		p, err := products.FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			continue
		}
		lines = append(lines, checkout.Line{
			Product:   checkout.ProductFactsOf(p),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPriceSnapshot,
		})
	}
	return lines, nil
}
