package checkout

import (
	"github.com/shopspring/decimal"

	"app/internal/domain/model"
)

// 仮適用クーポン。セッションに隠さず、値として計算に渡す。
// Couponがnilなら未適用。
type ProvisionalCoupon struct {
	Coupon *model.Coupon
}

// 注文サマリ。金額はすべて小数2桁の固定小数点。
type OrderSummary struct {
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	CouponDiscount decimal.Decimal
	CouponCode     string
	TotalAmount    decimal.Decimal
	TotalItems     int64
	TotalWeight    decimal.Decimal
}

// 最終金額の組み立て役。呼び出し側が直接使うのはここだけ。
type PricingEngine struct {
	coupons *CouponValidator
}

func NewPricingEngine(coupons *CouponValidator) *PricingEngine {
	return &PricingEngine{coupons: coupons}
}

// Summary は小計・送料・クーポン値引き・税(現状0)から合計を出す。
//
//	total = subtotal + shipping + tax - discount - coupon_discount
//
// クーポン値引きは適用時の額をキャッシュせず、現在の小計から計算し直す。
// free_shippingクーポンは送料を0にする。空カートは全0のサマリ。
func (e *PricingEngine) Summary(lines []Line, coupon ProvisionalCoupon, shippingCost decimal.Decimal) OrderSummary {
	s := OrderSummary{
		Subtotal:       decimal.Zero,
		ShippingCost:   decimal.Zero,
		TaxAmount:      decimal.Zero,
		DiscountAmount: decimal.Zero,
		CouponDiscount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		TotalWeight:    decimal.Zero,
	}

	if len(lines) == 0 {
		return s
	}

	for _, l := range lines {
		s.Subtotal = s.Subtotal.Add(l.Total())
		s.TotalItems += l.Quantity
		s.TotalWeight = s.TotalWeight.Add(l.Product.Weight.Mul(decimal.NewFromInt(l.Quantity)))
	}

	s.ShippingCost = shippingCost

	if coupon.Coupon != nil {
		s.CouponCode = coupon.Coupon.Code
		s.CouponDiscount = e.coupons.Discount(coupon.Coupon, s.Subtotal)
		if coupon.Coupon.DiscountType == model.DiscountTypeFreeShipping {
			s.ShippingCost = decimal.Zero
		}
	}

	s.TotalAmount = s.Subtotal.
		Add(s.ShippingCost).
		Add(s.TaxAmount).
		Sub(s.DiscountAmount).
		Sub(s.CouponDiscount)

	return s
}
