package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/checkout"
	repo "app/internal/repository"
)

// ShippingUsecase は配送選択肢の見積もりです。
// 選択肢は保存せず、毎回カート内容と地域から計算し直す。
type ShippingUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	calc         *checkout.ShippingCalculator
}

func NewShippingUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	calc *checkout.ShippingCalculator,
) *ShippingUsecase {
	return &ShippingUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		calc:         calc,
	}
}

// GetShippingOptions はカートと地域から選択肢を列挙する。空カートは400。
func (u *ShippingUsecase) GetShippingOptions(ctx context.Context, customer Customer, zoneStr string) (checkout.ShippingQuote, error) {
	zone, ok := checkout.ParseZone(zoneStr)
	if !ok {
		return checkout.ShippingQuote{}, NewHTTPError(http.StatusBadRequest, "invalid zone")
	}

	lines, err := u.customerLines(ctx, customer)
	if err != nil {
		return checkout.ShippingQuote{}, err
	}
	if len(lines) == 0 {
		return checkout.ShippingQuote{}, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
	}

	return u.calc.Quote(lines, zone), nil
}

func (u *ShippingUsecase) customerLines(ctx context.Context, customer Customer) ([]checkout.Line, error) {
	var (
		cartID int64
		err    error
	)
	if !customer.IsGuest() {
		cart, e := u.cartRepo.FindActiveByUserID(ctx, customer.UserID)
		cartID, err = cart.ID, e
	} else {
		if customer.SessionToken == "" {
			return nil, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
		}
		cart, e := u.cartRepo.FindActiveBySession(ctx, customer.SessionToken)
		cartID, err = cart.ID, e
	}
	if err == repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines, err := buildCheckoutLines(ctx, u.productRepo, items)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return lines, nil
}
