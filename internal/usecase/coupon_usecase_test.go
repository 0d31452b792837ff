package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/checkout"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newCouponUsecase() (*usecase.CouponUsecase, *CartRepoMock, *CartItemRepoMock, *ProductRepoMock, *CouponRepoMock) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(ProductRepoMock)
	couponRepo := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(cartRepo, itemRepo, productRepo, couponRepo, checkout.NewCouponValidator(fixedNow))
	return uc, cartRepo, itemRepo, productRepo, couponRepo
}

func activeCoupon() model.Coupon {
	return model.Coupon{
		ID:                 1,
		Code:               "SAVE10",
		DiscountType:       model.DiscountTypePercentage,
		DiscountValue:      decimal.NewFromInt(10),
		MinimumOrderAmount: decimal.NewFromInt(100),
		UsageLimitPerUser:  1,
		ValidFrom:          fixedNow().Add(-24 * time.Hour),
		ValidUntil:         fixedNow().Add(24 * time.Hour),
		IsActive:           true,
	}
}

func cartWithOneLine(cartRepo *CartRepoMock, itemRepo *CartItemRepoMock, productRepo *ProductRepoMock, userID int64, unitPrice int64, qty int64) model.Cart {
	cart := model.Cart{ID: 10, UserID: &userID, Status: model.CartStatusActive}
	cartRepo.On("FindActiveByUserID", mock.Anything, userID).Return(cart, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: qty, UnitPriceSnapshot: decimal.NewFromInt(unitPrice)},
	}, nil)
	productRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "Mug", Price: decimal.NewFromInt(unitPrice), IsActive: true,
	}, nil)
	return cart
}

func TestCouponUsecase_ApplyCoupon_Success(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, couponRepo := newCouponUsecase()

	cartWithOneLine(cartRepo, itemRepo, productRepo, 1, 250, 2)

	c := activeCoupon()
	couponRepo.On("FindByCode", mock.Anything, "SAVE10").Return(c, nil)
	couponRepo.On("CountUsagesByUser", mock.Anything, int64(1), int64(1)).Return(int64(0), nil)
	cartRepo.On("SetCouponCode", mock.Anything, int64(10), mock.MatchedBy(func(code *string) bool {
		return code != nil && *code == "SAVE10"
	})).Return(nil)

	out, err := uc.ApplyCoupon(ctx, usecase.Customer{UserID: 1}, usecase.ApplyCouponInput{Code: " SAVE10 "})
	assert.NoError(t, err)
	assert.Equal(t, "SAVE10", out.Code)
	//500の10%
	assert.True(t, out.Discount.Equal(decimal.NewFromInt(50)))
	cartRepo.AssertExpectations(t)
}

func TestCouponUsecase_ApplyCoupon_UnknownCode(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, couponRepo := newCouponUsecase()

	cartWithOneLine(cartRepo, itemRepo, productRepo, 1, 250, 2)
	couponRepo.On("FindByCode", mock.Anything, "NOPE").Return(model.Coupon{}, repo.ErrNotFound)

	_, err := uc.ApplyCoupon(ctx, usecase.Customer{UserID: 1}, usecase.ApplyCouponInput{Code: "NOPE"})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid coupon code")
	cartRepo.AssertNotCalled(t, "SetCouponCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestCouponUsecase_ApplyCoupon_MinimumNotMet(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, couponRepo := newCouponUsecase()

	//小計50 < 最低100
	cartWithOneLine(cartRepo, itemRepo, productRepo, 1, 50, 1)

	c := activeCoupon()
	couponRepo.On("FindByCode", mock.Anything, "SAVE10").Return(c, nil)
	couponRepo.On("CountUsagesByUser", mock.Anything, int64(1), int64(1)).Return(int64(0), nil)

	_, err := uc.ApplyCoupon(ctx, usecase.Customer{UserID: 1}, usecase.ApplyCouponInput{Code: "SAVE10"})
	assertHTTPError(t, err, http.StatusBadRequest, "minimum order amount")
}

func TestCouponUsecase_ApplyCoupon_GuestSkipsPerUserCheck(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, productRepo, couponRepo := newCouponUsecase()

	token := "9b5e0a64-95f8-41f3-8f6a-0f6f2a18de77"
	st := token
	cart := model.Cart{ID: 20, SessionToken: &st, Status: model.CartStatusActive}
	cartRepo.On("FindActiveBySession", mock.Anything, token).Return(cart, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(20)).Return([]model.CartItem{
		{ID: 1, CartID: 20, ProductID: 100, Quantity: 1, UnitPriceSnapshot: decimal.NewFromInt(500)},
	}, nil)
	productRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", IsActive: true}, nil)

	c := activeCoupon()
	couponRepo.On("FindByCode", mock.Anything, "SAVE10").Return(c, nil)
	cartRepo.On("SetCouponCode", mock.Anything, int64(20), mock.Anything).Return(nil)

	_, err := uc.ApplyCoupon(ctx, usecase.Customer{SessionToken: token}, usecase.ApplyCouponInput{Code: "SAVE10"})
	assert.NoError(t, err)
	couponRepo.AssertNotCalled(t, "CountUsagesByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestCouponUsecase_ApplyCoupon_EmptyCart(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, itemRepo, _, _ := newCouponUsecase()

	cart := model.Cart{ID: 10, UserID: i64ptr(1), Status: model.CartStatusActive}
	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	_, err := uc.ApplyCoupon(ctx, usecase.Customer{UserID: 1}, usecase.ApplyCouponInput{Code: "SAVE10"})
	assertHTTPError(t, err, http.StatusBadRequest, "cart is empty")
}

func TestCouponUsecase_RemoveCoupon_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc, cartRepo, _, _, _ := newCouponUsecase()

	//適用が無くても成功扱い
	cart := model.Cart{ID: 10, UserID: i64ptr(1), Status: model.CartStatusActive}
	cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	cartRepo.On("SetCouponCode", mock.Anything, int64(10), (*string)(nil)).Return(nil)

	assert.NoError(t, uc.RemoveCoupon(ctx, usecase.Customer{UserID: 1}))
	cartRepo.AssertExpectations(t)
}
