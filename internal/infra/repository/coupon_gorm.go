package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

// コードは大文字小文字を区別しない
func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).First(&c, couponID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) List(ctx context.Context, q repo.CouponListQuery) ([]model.Coupon, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Coupon{})
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Coupon{}, 0, err
	}

	var coupons []model.Coupon
	offset := (q.Page - 1) * q.Limit
	err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).
		Find(&coupons).Error
	if err != nil {
		return []model.Coupon{}, 0, err
	}
	return coupons, total, nil
}

func (r *CouponGormRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) Update(ctx context.Context, c model.Coupon) error {
	res := r.db.WithContext(ctx).Model(&model.Coupon{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"code":                    c.Code,
		"discount_type":           c.DiscountType,
		"discount_value":          c.DiscountValue,
		"minimum_order_amount":    c.MinimumOrderAmount,
		"maximum_discount_amount": c.MaximumDiscountAmount,
		"usage_limit":             c.UsageLimit,
		"usage_limit_per_user":    c.UsageLimitPerUser,
		"valid_from":              c.ValidFrom,
		"valid_until":             c.ValidUntil,
		"is_active":               c.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CouponGormRepository) SoftDelete(ctx context.Context, couponID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Coupon{}, couponID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 上限チェックと加算を1文で行う。同時確定の取りこぼしはここで防ぐ。
func (r *CouponGormRepository) IncrementUsedIfAvailable(ctx context.Context, couponID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID).
		Update("used_count", gorm.Expr("used_count + ?", 1))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *CouponGormRepository) CountUsagesByUser(ctx context.Context, couponID int64, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CouponGormRepository) CreateUsage(ctx context.Context, usage model.CouponUsage) error {
	return r.db.WithContext(ctx).Create(&usage).Error
}
