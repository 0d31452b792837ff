package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"app/internal/domain/checkout"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// OrderUsecase は注文サマリの提示と注文確定です。
// 金額の組み立ては checkout.PricingEngine、確定はトランザクション内で行う。
type OrderUsecase struct {
	tx           repo.TransactionManager
	addresses    repo.AddressRepository
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	couponRepo   repo.CouponRepository
	calc         *checkout.ShippingCalculator
	validator    *checkout.CouponValidator
	pricing      *checkout.PricingEngine
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	addresses repo.AddressRepository,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	couponRepo repo.CouponRepository,
	calc *checkout.ShippingCalculator,
	validator *checkout.CouponValidator,
	pricing *checkout.PricingEngine,
) *OrderUsecase {
	return &OrderUsecase{
		tx:           tx,
		addresses:    addresses,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		calc:         calc,
		validator:    validator,
		pricing:      pricing,
	}
}

type OrderSummaryOutput struct {
	Subtotal       decimal.Decimal          `json:"subtotal"`
	ShippingCost   decimal.Decimal          `json:"shipping_cost"`
	TaxAmount      decimal.Decimal          `json:"tax_amount"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	CouponDiscount decimal.Decimal          `json:"coupon_discount"`
	CouponCode     string                   `json:"coupon_code,omitempty"`
	TotalAmount    decimal.Decimal          `json:"total_amount"`
	TotalItems     int64                    `json:"total_items"`
	TotalWeight    decimal.Decimal          `json:"total_weight"`
	Shipping       *checkout.ShippingOption `json:"shipping"`

	//仮適用クーポンが検証に通らなくなったときの説明
	CouponWarning string `json:"coupon_warning,omitempty"`
}

// GetOrderSummary は確定前の金額内訳を返す。
// クーポン値引きは適用時の額を信用せず、現在の小計から計算し直す。
func (u *OrderUsecase) GetOrderSummary(ctx context.Context, customer Customer, zoneStr string, shippingType string) (OrderSummaryOutput, error) {
	zone, ok := checkout.ParseZone(zoneStr)
	if !ok {
		return OrderSummaryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid zone")
	}

	cart, err := u.findCart(ctx, customer)
	if err != nil {
		return OrderSummaryOutput{}, err
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return OrderSummaryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	lines, err := buildCheckoutLines(ctx, u.productRepo, items)
	if err != nil {
		return OrderSummaryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return OrderSummaryOutput{}, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
	}

	option, err := u.selectShipping(lines, zone, shippingType)
	if err != nil {
		return OrderSummaryOutput{}, err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}

	//仮適用クーポンは毎回検証し直す。通らなくなっていたら外して警告だけ返す。
	provisional := checkout.ProvisionalCoupon{}
	warning := ""
	if cart.CouponCode != nil {
		c, result, err := u.revalidateCoupon(ctx, *cart.CouponCode, customer, subtotal)
		if err != nil {
			return OrderSummaryOutput{}, err
		}
		if result.Valid {
			provisional.Coupon = c
		} else {
			warning = result.Message
		}
	}

	s := u.pricing.Summary(lines, provisional, option.Cost)

	return OrderSummaryOutput{
		Subtotal:       s.Subtotal,
		ShippingCost:   s.ShippingCost,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		CouponDiscount: s.CouponDiscount,
		CouponCode:     s.CouponCode,
		TotalAmount:    s.TotalAmount,
		TotalItems:     s.TotalItems,
		TotalWeight:    s.TotalWeight,
		Shipping:       option,
		CouponWarning:  warning,
	}, nil
}

type PlaceOrderInput struct {
	AddressID      int64
	ShippingType   string
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID   int64           `json:"product_id"`
	VariantID   *int64          `json:"variant_id"`
	Name        string          `json:"name"`
	VariantName string          `json:"variant_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	Status         string            `json:"status"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	ShippingCost   decimal.Decimal   `json:"shipping_cost"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	CouponDiscount decimal.Decimal   `json:"coupon_discount"`
	CouponCode     *string           `json:"coupon_code"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	ShippingZone   string            `json:"shipping_zone"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// PlaceOrder は注文を確定する。
// 在庫の再チェックと減算、クーポンの再検証と使用回数の加算、
// 金額の再計算、カートのクリアまでを1トランザクションで行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	//address_idの存在確認＋所有チェック（他人の住所なら403）
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if addr.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	zone := checkout.Zone(addr.Zone)

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じキーなら同じ注文を返す
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
		}

		//在庫を確定時に再チェックして減らす。追加時のチェックは時点判定でしかない。
		now := time.Now()
		lines := make([]checkout.Line, 0, len(cartItems))
		orderItems := make([]model.OrderItem, 0, len(cartItems))

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "product no longer available")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "product no longer available")
			}

			variantName := ""
			if ci.VariantID != nil {
				v, err := r.Variants().FindByID(ctx, *ci.VariantID)
				if err == repo.ErrNotFound {
					return NewHTTPError(http.StatusBadRequest, "variant no longer available")
				}
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				variantName = v.Name

				ok, err := r.Inventory().DecreaseVariantStockIfEnough(ctx, *ci.VariantID, ci.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					se := &checkout.StockInsufficientError{
						ProductName: fmt.Sprintf("%s (%s)", p.Name, v.Name),
						Requested:   ci.Quantity,
						Available:   v.Stock,
					}
					return NewHTTPError(http.StatusBadRequest, se.Error())
				}
			} else if p.TrackInventory {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					se := &checkout.StockInsufficientError{
						ProductName: p.Name,
						Requested:   ci.Quantity,
						Available:   p.Stock,
					}
					return NewHTTPError(http.StatusBadRequest, se.Error())
				}
			}

			lines = append(lines, checkout.Line{
				Product:   checkout.ProductFactsOf(p),
				Quantity:  ci.Quantity,
				UnitPrice: ci.UnitPriceSnapshot,
			})
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				VariantID:           ci.VariantID,
				ProductNameSnapshot: p.Name,
				VariantNameSnapshot: variantName,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})
		}

		subtotal := decimal.Zero
		for _, l := range lines {
			subtotal = subtotal.Add(l.Total())
		}

		//仮適用クーポンは確定時にもう一度全規則を通す。
		//使用回数の加算はSQL1文の条件付き更新が最終防衛線。
		provisional := checkout.ProvisionalCoupon{}
		if cart.CouponCode != nil {
			c, err := r.Coupons().FindByCode(ctx, *cart.CouponCode)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid coupon code")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			uses, err := r.Coupons().CountUsagesByUser(ctx, c.ID, userID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			result := u.validator.Validate(&c, true, uses, subtotal)
			if !result.Valid {
				return NewHTTPError(http.StatusBadRequest, result.Message)
			}

			ok, err := r.Coupons().IncrementUsedIfAvailable(ctx, c.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "coupon usage limit reached")
			}
			provisional.Coupon = &c
		}

		option, err := u.selectShipping(lines, zone, in.ShippingType)
		if err != nil {
			return err
		}

		s := u.pricing.Summary(lines, provisional, option.Cost)

		var couponCode *string
		if s.CouponCode != "" {
			code := s.CouponCode
			couponCode = &code
		}

		order := model.Order{
			UserID:         userID,
			AddressID:      in.AddressID,
			Status:         model.OrderStatusPending,
			Subtotal:       s.Subtotal,
			ShippingCost:   s.ShippingCost,
			TaxAmount:      s.TaxAmount,
			DiscountAmount: s.DiscountAmount,
			CouponDiscount: s.CouponDiscount,
			CouponCode:     couponCode,
			TotalAmount:    s.TotalAmount,
			ShippingZone:   model.ShippingZone(zone),
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//競合（同時に同じキーが入った等）はもう一度検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//使用記録は確定時にだけ作る。仮適用の段階では作らない。
		if provisional.Coupon != nil {
			if err := r.Coupons().CreateUsage(ctx, model.CouponUsage{
				CouponID:  provisional.Coupon.ID,
				UserID:    userID,
				OrderID:   orderID,
				CreatedAt: now,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 要求された配送タイプの選択肢を選ぶ。未指定なら最安の推奨。
func (u *OrderUsecase) selectShipping(lines []checkout.Line, zone checkout.Zone, shippingType string) (*checkout.ShippingOption, error) {
	quote := u.calc.Quote(lines, zone)
	if len(quote.Options) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, checkout.ErrShippingUnavailable.Error())
	}
	if shippingType == "" {
		return quote.DefaultOption, nil
	}
	for i := range quote.Options {
		if string(quote.Options[i].Type) == shippingType {
			return &quote.Options[i], nil
		}
	}
	return nil, NewHTTPError(http.StatusBadRequest, checkout.ErrShippingUnavailable.Error())
}

func (u *OrderUsecase) findCart(ctx context.Context, customer Customer) (model.Cart, error) {
	var (
		cart model.Cart
		err  error
	)
	if !customer.IsGuest() {
		cart, err = u.cartRepo.FindActiveByUserID(ctx, customer.UserID)
	} else {
		if customer.SessionToken == "" {
			return model.Cart{}, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
		}
		cart, err = u.cartRepo.FindActiveBySession(ctx, customer.SessionToken)
	}
	if err == repo.ErrNotFound {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, checkout.ErrCartEmpty.Error())
	}
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, nil
}

// 仮適用コードを今の小計で検証し直す。
func (u *OrderUsecase) revalidateCoupon(ctx context.Context, code string, customer Customer, subtotal decimal.Decimal) (*model.Coupon, checkout.CouponResult, error) {
	var coupon *model.Coupon
	c, err := u.couponRepo.FindByCode(ctx, code)
	if err == nil {
		coupon = &c
	} else if err != repo.ErrNotFound {
		return nil, checkout.CouponResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var uses int64 = 0
	if coupon != nil && !customer.IsGuest() {
		uses, err = u.couponRepo.CountUsagesByUser(ctx, coupon.ID, customer.UserID)
		if err != nil {
			return nil, checkout.CouponResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return coupon, u.validator.Validate(coupon, !customer.IsGuest(), uses, subtotal), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			Name:        it.ProductNameSnapshot,
			VariantName: it.VariantNameSnapshot,
			Price:       it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal,
		ShippingCost:   o.ShippingCost,
		TaxAmount:      o.TaxAmount,
		DiscountAmount: o.DiscountAmount,
		CouponDiscount: o.CouponDiscount,
		CouponCode:     o.CouponCode,
		TotalAmount:    o.TotalAmount,
		ShippingZone:   string(o.ShippingZone),
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
