package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type EmailTemplateGormRepository struct {
	db *gorm.DB
}

func NewEmailTemplateGormRepository(db *gorm.DB) *EmailTemplateGormRepository {
	return &EmailTemplateGormRepository{db: db}
}

func (r *EmailTemplateGormRepository) FindByID(ctx context.Context, id int64) (model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.EmailTemplate{}, repo.ErrNotFound
	}
	if err != nil {
		return model.EmailTemplate{}, err
	}
	return t, nil
}

func (r *EmailTemplateGormRepository) FindByName(ctx context.Context, name string) (model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.EmailTemplate{}, repo.ErrNotFound
	}
	if err != nil {
		return model.EmailTemplate{}, err
	}
	return t, nil
}

func (r *EmailTemplateGormRepository) List(ctx context.Context, page int, limit int) ([]model.EmailTemplate, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.EmailTemplate{}).Count(&total).Error; err != nil {
		return []model.EmailTemplate{}, 0, err
	}

	var items []model.EmailTemplate
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("name asc").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.EmailTemplate{}, 0, err
	}
	return items, total, nil
}

func (r *EmailTemplateGormRepository) Create(ctx context.Context, t model.EmailTemplate) (model.EmailTemplate, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.EmailTemplate{}, err
	}
	return t, nil
}

func (r *EmailTemplateGormRepository) Update(ctx context.Context, t model.EmailTemplate) error {
	res := r.db.WithContext(ctx).Model(&model.EmailTemplate{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"name":      t.Name,
		"subject":   t.Subject,
		"body":      t.Body,
		"is_active": t.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *EmailTemplateGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.EmailTemplate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
