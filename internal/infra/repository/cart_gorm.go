package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのACTIVEカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.getOrCreate(ctx, "user_id = ? AND status = ?", userID, func(now time.Time) model.Cart {
		return model.Cart{UserID: &userID, Status: model.CartStatusActive, CreatedAt: now, UpdatedAt: now}
	})
}

// 匿名セッションのACTIVEカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error) {
	return r.getOrCreate(ctx, "session_token = ? AND status = ?", sessionToken, func(now time.Time) model.Cart {
		return model.Cart{SessionToken: &sessionToken, Status: model.CartStatusActive, CreatedAt: now, UpdatedAt: now}
	})
}

// 同一ブラウザの同時リクエストで二重作成し得るので、
// 作成に失敗したら探し直す。最後に見えたカートを正とする。
func (r *CartGormRepository) getOrCreate(ctx context.Context, cond string, ownerKey interface{}, build func(time.Time) model.Cart) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(cond, ownerKey, model.CartStatusActive).
			Order("id desc").
			First(&cart).Error

		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		//無ければ作る
		newCart := build(time.Now())
		if err := tx.Create(&newCart).Error; err != nil {
			retryErr := tx.
				Where(cond, ownerKey, model.CartStatusActive).
				Order("id desc").
				First(&cart).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		cart = newCart
		return nil
	})

	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findActive(ctx, "user_id = ? AND status = ?", userID)
}

func (r *CartGormRepository) FindActiveBySession(ctx context.Context, sessionToken string) (model.Cart, error) {
	return r.findActive(ctx, "session_token = ? AND status = ?", sessionToken)
}

func (r *CartGormRepository) findActive(ctx context.Context, cond string, ownerKey interface{}) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where(cond, ownerKey, model.CartStatusActive).
		Order("id desc").
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 仮適用クーポンの記録。nilで解除。
func (r *CartGormRepository) SetCouponCode(ctx context.Context, cartID int64, code *string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("coupon_code", code)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// carts.statusを更新
func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定カートの明細と仮適用クーポンを消す
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		if err := tx.Where("id = ?", cartID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		return tx.Model(&model.Cart{}).Where("id = ?", cartID).Update("coupon_code", nil).Error
	})
}
