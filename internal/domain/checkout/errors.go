package checkout

import (
	"errors"
	"fmt"
)

// 在庫不足。利用者向けに「あと何個買えるか」を必ず返す。
type StockInsufficientError struct {
	ProductName string
	Requested   int64
	Available   int64
}

func (e *StockInsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, only %d available",
		e.ProductName, e.Requested, e.Available)
}

// クーポン拒否理由。最初に引っかかった規則だけを返す。
type CouponReason string

const (
	CouponReasonNotFound          CouponReason = "not_found"
	CouponReasonInactive          CouponReason = "inactive"
	CouponReasonNotYetValid       CouponReason = "not_yet_valid"
	CouponReasonExpired           CouponReason = "expired"
	CouponReasonUsageLimitReached CouponReason = "usage_limit_reached"
	CouponReasonMinimumNotMet     CouponReason = "minimum_order_not_met"
	CouponReasonAlreadyUsed       CouponReason = "already_used_by_customer"
)

var (
	//空カートに対する送料・価格計算
	ErrCartEmpty = errors.New("cart is empty")

	//要求された配送タイプ/地域の組み合わせに選択肢がない
	ErrShippingUnavailable = errors.New("shipping unavailable for the requested zone")
)
