package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/checkout"
	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type orderUsecaseDeps struct {
	addresses *AddressRepoMock
	cartRepo  *CartRepoMock
	itemRepo  *CartItemRepoMock
	products  *ProductRepoMock
	coupons   *CouponRepoMock
	tx        *txReposStub
}

func newOrderUsecase() (*usecase.OrderUsecase, orderUsecaseDeps) {
	d := orderUsecaseDeps{
		addresses: new(AddressRepoMock),
		cartRepo:  new(CartRepoMock),
		itemRepo:  new(CartItemRepoMock),
		products:  new(ProductRepoMock),
		coupons:   new(CouponRepoMock),
	}
	txm, txr := newTxManagerStub()
	d.tx = txr

	validator := checkout.NewCouponValidator(fixedNow)
	uc := usecase.NewOrderUsecase(
		txm,
		d.addresses,
		d.cartRepo,
		d.itemRepo,
		d.products,
		d.coupons,
		checkout.NewShippingCalculator(checkout.DefaultTariff()),
		validator,
		checkout.NewPricingEngine(validator),
	)
	return uc, d
}

func dhakaAddress(userID int64) model.Address {
	return model.Address{ID: 5, UserID: userID, Zone: model.ShippingZoneDhaka}
}

func standardProduct() model.Product {
	return model.Product{
		ID:             100,
		Name:           "Mug",
		Price:          decimal.NewFromInt(250),
		Stock:          10,
		TrackInventory: true,
		IsActive:       true,
		ShippingType:   model.ShippingTypeStandard,
	}
}

func placeInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		AddressID:      5,
		ShippingType:   "standard",
		IdempotencyKey: "key-1",
	}
}

func TestOrderUsecase_PlaceOrder_MissingIdempotencyKey(t *testing.T) {
	uc, _ := newOrderUsecase()

	in := placeInput()
	in.IdempotencyKey = "  "
	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid idempotency_key")
}

func TestOrderUsecase_PlaceOrder_OthersAddressIsForbidden(t *testing.T) {
	uc, d := newOrderUsecase()

	addr := dhakaAddress(99)
	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(addr, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, placeInput())
	assertHTTPError(t, err, http.StatusForbidden, "forbidden")
}

func TestOrderUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	uc, d := newOrderUsecase()

	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(dhakaAddress(1), nil)

	existing := model.Order{
		ID:           42,
		UserID:       1,
		Status:       model.OrderStatusPending,
		TotalAmount:  decimal.NewFromInt(570),
		ShippingZone: model.ShippingZoneDhaka,
	}
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(existing, true, nil)
	d.tx.orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{
		{ProductID: 100, ProductNameSnapshot: "Mug", UnitPriceSnapshot: decimal.NewFromInt(250), Quantity: 2},
	}, nil)

	out, err := uc.PlaceOrder(context.Background(), 1, placeInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Len(t, out.Items, 1)
	//再採番しない
	d.tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.tx.carts.AssertNotCalled(t, "FindActiveByUserID", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_StockInsufficientAtCheckout(t *testing.T) {
	uc, d := newOrderUsecase()

	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(dhakaAddress(1), nil)
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	d.tx.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1)}, nil)
	d.tx.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 3, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)

	p := standardProduct()
	p.Stock = 2
	d.tx.products.On("FindByID", mock.Anything, int64(100)).Return(p, nil)
	d.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(3)).Return(false, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, placeInput())
	assertHTTPError(t, err, http.StatusBadRequest, "insufficient stock for Mug")
	d.tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_CouponRaceLosesAtIncrement(t *testing.T) {
	uc, d := newOrderUsecase()

	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(dhakaAddress(1), nil)
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)

	code := "SAVE10"
	d.tx.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1), CouponCode: &code}, nil)
	d.tx.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)
	d.tx.products.On("FindByID", mock.Anything, int64(100)).Return(standardProduct(), nil)
	d.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)

	c := activeCoupon()
	d.tx.coupons.On("FindByCode", mock.Anything, "SAVE10").Return(c, nil)
	d.tx.coupons.On("CountUsagesByUser", mock.Anything, int64(1), int64(1)).Return(int64(0), nil)
	//検証は通るが条件付きUPDATEで負ける
	d.tx.coupons.On("IncrementUsedIfAvailable", mock.Anything, int64(1)).Return(false, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, placeInput())
	assertHTTPError(t, err, http.StatusBadRequest, "coupon usage limit reached")
	d.tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	uc, d := newOrderUsecase()

	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(dhakaAddress(1), nil)
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)

	code := "SAVE10"
	d.tx.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1), CouponCode: &code}, nil)
	d.tx.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)
	d.tx.products.On("FindByID", mock.Anything, int64(100)).Return(standardProduct(), nil)
	d.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)

	c := activeCoupon()
	d.tx.coupons.On("FindByCode", mock.Anything, "SAVE10").Return(c, nil)
	d.tx.coupons.On("CountUsagesByUser", mock.Anything, int64(1), int64(1)).Return(int64(0), nil)
	d.tx.coupons.On("IncrementUsedIfAvailable", mock.Anything, int64(1)).Return(true, nil)

	d.tx.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		//500 + 70送料 - 50クーポン = 520
		return o.UserID == 1 &&
			o.Subtotal.Equal(decimal.NewFromInt(500)) &&
			o.ShippingCost.Equal(decimal.NewFromInt(70)) &&
			o.CouponDiscount.Equal(decimal.NewFromInt(50)) &&
			o.TotalAmount.Equal(decimal.NewFromInt(520)) &&
			o.IdempotencyKey == "key-1" &&
			o.ShippingZone == model.ShippingZoneDhaka
	})).Return(int64(42), nil)
	d.tx.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].ProductID == 100 && items[0].Quantity == 2
	})).Return(nil)
	d.tx.coupons.On("CreateUsage", mock.Anything, mock.MatchedBy(func(u model.CouponUsage) bool {
		return u.CouponID == 1 && u.UserID == 1 && u.OrderID == 42
	})).Return(nil)
	d.tx.carts.On("UpdateStatus", mock.Anything, int64(10), model.CartStatusCheckedOut).Return(nil)
	d.tx.carts.On("Clear", mock.Anything, int64(10)).Return(nil)

	out, err := uc.PlaceOrder(context.Background(), 1, placeInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(520)))
	assert.NotNil(t, out.CouponCode)
	assert.Equal(t, "SAVE10", *out.CouponCode)

	d.tx.orders.AssertExpectations(t)
	d.tx.orderItems.AssertExpectations(t)
	d.tx.coupons.AssertExpectations(t)
	d.tx.carts.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_CreateConflictReplays(t *testing.T) {
	uc, d := newOrderUsecase()

	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(dhakaAddress(1), nil)
	//最初の検索では無く、Create失敗後の再検索で見つかる
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Order{}, false, nil).Once()
	d.tx.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1)}, nil)
	d.tx.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 1, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)
	d.tx.products.On("FindByID", mock.Anything, int64(100)).Return(standardProduct(), nil)
	d.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(1)).Return(true, nil)

	d.tx.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)
	winner := model.Order{ID: 77, UserID: 1, Status: model.OrderStatusPending}
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(winner, true, nil).Once()
	d.tx.orderItems.On("ListByOrderID", mock.Anything, int64(77)).Return([]model.OrderItem{}, nil)

	out, err := uc.PlaceOrder(context.Background(), 1, placeInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)
}

func TestOrderUsecase_PlaceOrder_UnavailableShippingType(t *testing.T) {
	uc, d := newOrderUsecase()

	d.addresses.On("FindByID", mock.Anything, int64(5)).Return(dhakaAddress(1), nil)
	d.tx.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	d.tx.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1)}, nil)
	d.tx.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 1, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)
	//即日配送のない商品にexpressを要求
	d.tx.products.On("FindByID", mock.Anything, int64(100)).Return(standardProduct(), nil)
	d.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(1)).Return(true, nil)

	in := placeInput()
	in.ShippingType = "express"
	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertHTTPError(t, err, http.StatusBadRequest, "shipping unavailable")
	d.tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_GetOrderSummary_StaleCouponBecomesWarning(t *testing.T) {
	uc, d := newOrderUsecase()

	code := "SAVE10"
	d.cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1), CouponCode: &code}, nil)
	d.itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)
	d.products.On("FindByID", mock.Anything, int64(100)).Return(standardProduct(), nil)

	//適用後に期限が切れたクーポン
	c := activeCoupon()
	c.ValidUntil = fixedNow().Add(-time.Hour)
	d.coupons.On("FindByCode", mock.Anything, "SAVE10").Return(c, nil)
	d.coupons.On("CountUsagesByUser", mock.Anything, int64(1), int64(1)).Return(int64(0), nil)

	out, err := uc.GetOrderSummary(context.Background(), usecase.Customer{UserID: 1}, "dhaka", "")
	assert.NoError(t, err)
	assert.Equal(t, "coupon has expired", out.CouponWarning)
	assert.True(t, out.CouponDiscount.IsZero())
	assert.Empty(t, out.CouponCode)
	//値引きなしで 500 + 70
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(570)))
}

func TestOrderUsecase_GetOrderSummary_FreeShippingCoupon(t *testing.T) {
	uc, d := newOrderUsecase()

	code := "SHIPFREE"
	d.cartRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: i64ptr(1), CouponCode: &code}, nil)
	d.itemRepo.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: decimal.NewFromInt(250)},
	}, nil)
	d.products.On("FindByID", mock.Anything, int64(100)).Return(standardProduct(), nil)

	c := activeCoupon()
	c.Code = "SHIPFREE"
	c.DiscountType = model.DiscountTypeFreeShipping
	d.coupons.On("FindByCode", mock.Anything, "SHIPFREE").Return(c, nil)
	d.coupons.On("CountUsagesByUser", mock.Anything, int64(1), int64(1)).Return(int64(0), nil)

	out, err := uc.GetOrderSummary(context.Background(), usecase.Customer{UserID: 1}, "dhaka", "standard")
	assert.NoError(t, err)
	//送料だけゼロ化、商品値引きは0
	assert.True(t, out.ShippingCost.IsZero())
	assert.True(t, out.CouponDiscount.IsZero())
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.NotNil(t, out.Shipping)
	assert.True(t, out.Shipping.Cost.Equal(decimal.NewFromInt(70)))
}

func TestOrderUsecase_GetMyOrderDetail_OthersOrderIsNotFound(t *testing.T) {
	uc, d := newOrderUsecase()

	d.tx.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 99}, nil)

	_, err := uc.GetMyOrderDetail(context.Background(), 1, 42)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
	d.tx.orderItems.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}
