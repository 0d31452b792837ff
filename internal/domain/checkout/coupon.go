package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"app/internal/domain/model"
)

// クーポン検証の結果。Validがfalseのとき、Reasonは最初に失敗した規則。
type CouponResult struct {
	Valid    bool            `json:"valid"`
	Reason   CouponReason    `json:"-"`
	Message  string          `json:"message"`
	Discount decimal.Decimal `json:"discount_amount"`
}

// クーポン検証。DBは触らず、呼び出し側が渡すファクトだけで判定する。
type CouponValidator struct {
	now func() time.Time
}

func NewCouponValidator(now func() time.Time) *CouponValidator {
	if now == nil {
		now = time.Now
	}
	return &CouponValidator{now: now}
}

// Validate は規則を上から順に評価し、最初に失敗した理由だけを返す。
//  1. 存在して有効か
//  2. 有効開始前でないか
//  3. 期限切れでないか
//  4. 全体の使用回数上限
//  5. 最低注文金額
//  6. 利用者ごとの使用回数（ゲストは身元がないので判定しない）
//
// customerUsesは (このクーポン, この利用者) の既存使用記録の数。
func (v *CouponValidator) Validate(c *model.Coupon, hasCustomer bool, customerUses int64, subtotal decimal.Decimal) CouponResult {
	if c == nil {
		return rejected(CouponReasonNotFound, "invalid coupon code")
	}
	if !c.IsActive {
		return rejected(CouponReasonInactive, "invalid coupon code")
	}

	now := v.now()
	if now.Before(c.ValidFrom) {
		return rejected(CouponReasonNotYetValid, "coupon is not yet valid")
	}
	if now.After(c.ValidUntil) {
		return rejected(CouponReasonExpired, "coupon has expired")
	}

	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return rejected(CouponReasonUsageLimitReached, "coupon usage limit reached")
	}

	if subtotal.LessThan(c.MinimumOrderAmount) {
		return rejected(CouponReasonMinimumNotMet,
			fmt.Sprintf("minimum order amount of %s is required", c.MinimumOrderAmount.StringFixed(2)))
	}

	if hasCustomer && customerUses >= c.UsageLimitPerUser {
		return rejected(CouponReasonAlreadyUsed, "coupon already used")
	}

	return CouponResult{
		Valid:    true,
		Message:  "coupon applied",
		Discount: v.Discount(c, subtotal),
	}
}

// Discount は検証済みクーポンの値引き額を計算する。
// percentageは小数第2位で四捨五入（ゼロから遠い側へ丸め）。
// 上限額があればそこで頭打ち、さらに小計を超えることはない。
func (v *CouponValidator) Discount(c *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal

	switch c.DiscountType {
	case model.DiscountTypePercentage:
		d = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case model.DiscountTypeFixedAmount:
		d = c.DiscountValue
	case model.DiscountTypeFreeShipping:
		//送料ゼロ化はPricingEngine側の仕事。商品値引きは0。
		d = decimal.Zero
	default:
		d = decimal.Zero
	}

	if c.MaximumDiscountAmount != nil && d.GreaterThan(*c.MaximumDiscountAmount) {
		d = *c.MaximumDiscountAmount
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d
}

func rejected(reason CouponReason, msg string) CouponResult {
	return CouponResult{
		Valid:    false,
		Reason:   reason,
		Message:  msg,
		Discount: decimal.Zero,
	}
}
