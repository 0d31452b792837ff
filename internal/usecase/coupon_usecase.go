package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"app/internal/domain/checkout"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CouponUsecase はカートへのクーポン仮適用です。
// ここでは使用記録を作らない。記録と使用回数の加算は注文確定時に行う。
type CouponUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	couponRepo   repo.CouponRepository
	validator    *checkout.CouponValidator
}

func NewCouponUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	couponRepo repo.CouponRepository,
	validator *checkout.CouponValidator,
) *CouponUsecase {
	return &CouponUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		validator:    validator,
	}
}

type ApplyCouponInput struct {
	Code string
}

type ApplyCouponOutput struct {
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Discount decimal.Decimal `json:"discount_amount"`
}

// ApplyCoupon は検証に通ったクーポンをカートに記録する。
// 失敗理由は規則順で最初の1つだけを返す。
func (u *CouponUsecase) ApplyCoupon(ctx context.Context, customer Customer, in ApplyCouponInput) (ApplyCouponOutput, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, "code required")
	}

	cart, err := u.findCart(ctx, customer)
	if err != nil {
		return ApplyCouponOutput{}, err
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	lines, err := buildCheckoutLines(ctx, u.productRepo, items)
	if err != nil {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}

	var coupon *model.Coupon
	c, err := u.couponRepo.FindByCode(ctx, code)
	if err == nil {
		coupon = &c
	} else if err != repo.ErrNotFound {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ゲストは身元がないので、ユーザー別の使用回数は数えない
	var customerUses int64 = 0
	if coupon != nil && !customer.IsGuest() {
		customerUses, err = u.couponRepo.CountUsagesByUser(ctx, coupon.ID, customer.UserID)
		if err != nil {
			return ApplyCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	result := u.validator.Validate(coupon, !customer.IsGuest(), customerUses, subtotal)
	if !result.Valid {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusBadRequest, result.Message)
	}

	if err := u.cartRepo.SetCouponCode(ctx, cart.ID, &coupon.Code); err != nil {
		return ApplyCouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ApplyCouponOutput{
		Code:     coupon.Code,
		Message:  result.Message,
		Discount: result.Discount,
	}, nil
}

// RemoveCoupon は仮適用を取り消す。適用が無くても成功扱い。
func (u *CouponUsecase) RemoveCoupon(ctx context.Context, customer Customer) error {
	cart, err := u.findCart(ctx, customer)
	if err != nil {
		return err
	}
	if err := u.cartRepo.SetCouponCode(ctx, cart.ID, nil); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CouponUsecase) findCart(ctx context.Context, customer Customer) (model.Cart, error) {
	var (
		cart model.Cart
		err  error
	)
	if !customer.IsGuest() {
		cart, err = u.cartRepo.FindActiveByUserID(ctx, customer.UserID)
	} else {
		if customer.SessionToken == "" {
			return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart not found")
		}
		cart, err = u.cartRepo.FindActiveBySession(ctx, customer.SessionToken)
	}
	if err == repo.ErrNotFound {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, nil
}
