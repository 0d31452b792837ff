package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// AdminCouponUsecase はクーポンの管理CRUDです。
// used_count はここでは触らない。増えるのは注文確定時だけ。
type AdminCouponUsecase struct {
	couponRepo repo.CouponRepository
	auditRepo  repo.AuditLogRepository
}

func NewAdminCouponUsecase(couponRepo repo.CouponRepository, auditRepo repo.AuditLogRepository) *AdminCouponUsecase {
	return &AdminCouponUsecase{couponRepo: couponRepo, auditRepo: auditRepo}
}

type AdminCouponInput struct {
	Code                  string
	DiscountType          string
	DiscountValue         decimal.Decimal
	MinimumOrderAmount    decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	UsageLimit            *int64
	UsageLimitPerUser     int64
	ValidFrom             time.Time
	ValidUntil            time.Time
	IsActive              bool
}

func (in AdminCouponInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "code required")
	}
	if len(in.Code) > 50 {
		return NewHTTPError(http.StatusBadRequest, "code too long")
	}

	switch model.DiscountType(in.DiscountType) {
	case model.DiscountTypePercentage:
		if in.DiscountValue.LessThanOrEqual(decimal.Zero) || in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return NewHTTPError(http.StatusBadRequest, "percentage must be between 0 and 100")
		}
	case model.DiscountTypeFixedAmount:
		if in.DiscountValue.LessThanOrEqual(decimal.Zero) {
			return NewHTTPError(http.StatusBadRequest, "discount_value must be > 0")
		}
	case model.DiscountTypeFreeShipping:
		//値引き額は使わない
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}

	if in.MinimumOrderAmount.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "minimum_order_amount must be >= 0")
	}
	if in.MaximumDiscountAmount != nil && in.MaximumDiscountAmount.LessThanOrEqual(decimal.Zero) {
		return NewHTTPError(http.StatusBadRequest, "maximum_discount_amount must be > 0")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return NewHTTPError(http.StatusBadRequest, "usage_limit must be >= 1")
	}
	if in.UsageLimitPerUser < 1 {
		return NewHTTPError(http.StatusBadRequest, "usage_limit_per_user must be >= 1")
	}
	if !in.ValidUntil.After(in.ValidFrom) {
		return NewHTTPError(http.StatusBadRequest, "valid_until must be after valid_from")
	}
	return nil
}

type CouponListOutput struct {
	Items []model.Coupon `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (u *AdminCouponUsecase) List(ctx context.Context, page, limit int, isActive *bool) (CouponListOutput, error) {
	if page < 1 {
		return CouponListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CouponListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.couponRepo.List(ctx, repo.CouponListQuery{
		Page:     page,
		Limit:    limit,
		IsActive: isActive,
	})
	if err != nil {
		return CouponListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CouponListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminCouponUsecase) Get(ctx context.Context, couponID int64) (model.Coupon, error) {
	if couponID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.couponRepo.FindByID(ctx, couponID)
	if err == repo.ErrNotFound {
		return model.Coupon{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *AdminCouponUsecase) Create(ctx context.Context, adminUserID int64, in AdminCouponInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return 0, err
	}

	now := time.Now()
	c := model.Coupon{
		Code:                  strings.ToUpper(strings.TrimSpace(in.Code)),
		DiscountType:          model.DiscountType(in.DiscountType),
		DiscountValue:         in.DiscountValue,
		MinimumOrderAmount:    in.MinimumOrderAmount,
		MaximumDiscountAmount: in.MaximumDiscountAmount,
		UsageLimit:            in.UsageLimit,
		UsageLimitPerUser:     in.UsageLimitPerUser,
		ValidFrom:             in.ValidFrom,
		ValidUntil:            in.ValidUntil,
		IsActive:              in.IsActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	created, err := u.couponRepo.Create(ctx, c)
	if err != nil {
		return 0, NewHTTPError(http.StatusConflict, "coupon code already exists")
	}

	u.audit(ctx, adminUserID, model.AuditActionCreateCoupon, created.ID, nil, &created)
	return created.ID, nil
}

func (u *AdminCouponUsecase) Update(ctx context.Context, adminUserID int64, couponID int64, in AdminCouponInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	before, err := u.couponRepo.FindByID(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after := before
	after.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	after.DiscountType = model.DiscountType(in.DiscountType)
	after.DiscountValue = in.DiscountValue
	after.MinimumOrderAmount = in.MinimumOrderAmount
	after.MaximumDiscountAmount = in.MaximumDiscountAmount
	after.UsageLimit = in.UsageLimit
	after.UsageLimitPerUser = in.UsageLimitPerUser
	after.ValidFrom = in.ValidFrom
	after.ValidUntil = in.ValidUntil
	after.IsActive = in.IsActive
	after.UpdatedAt = time.Now()

	if err := u.couponRepo.Update(ctx, after); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionUpdateCoupon, couponID, &before, &after)
	return nil
}

func (u *AdminCouponUsecase) Delete(ctx context.Context, adminUserID int64, couponID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.couponRepo.SoftDelete(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 監査ログは失敗しても操作自体は成立させる
func (u *AdminCouponUsecase) audit(ctx context.Context, adminUserID int64, action model.AuditAction, couponID int64, before, after *model.Coupon) {
	toJSON := func(c *model.Coupon) string {
		if c == nil {
			return ""
		}
		b, err := json.Marshal(c)
		if err != nil {
			return ""
		}
		return string(b)
	}

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       action,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   couponID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    time.Now(),
	})
}
