package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ContactGormRepository struct {
	db *gorm.DB
}

func NewContactGormRepository(db *gorm.DB) *ContactGormRepository {
	return &ContactGormRepository{db: db}
}

func (r *ContactGormRepository) Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.ContactMessage{}, err
	}
	return m, nil
}

func (r *ContactGormRepository) FindByID(ctx context.Context, id int64) (model.ContactMessage, error) {
	var m model.ContactMessage
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ContactMessage{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ContactMessage{}, err
	}
	return m, nil
}

func (r *ContactGormRepository) List(ctx context.Context, q repo.ContactListQuery) ([]model.ContactMessage, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.ContactMessage{})
	if q.Resolved != nil {
		tx = tx.Where("is_resolved = ?", *q.Resolved)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.ContactMessage{}, 0, err
	}

	var items []model.ContactMessage
	offset := (q.Page - 1) * q.Limit
	err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return []model.ContactMessage{}, 0, err
	}
	return items, total, nil
}

func (r *ContactGormRepository) MarkResolved(ctx context.Context, id int64, resolved bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("id = ?", id).
		Update("is_resolved", resolved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
