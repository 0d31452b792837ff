package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PageGormRepository struct {
	db *gorm.DB
}

func NewPageGormRepository(db *gorm.DB) *PageGormRepository {
	return &PageGormRepository{db: db}
}

// 公開側。公開フラグが立っているページだけslugで引ける。
func (r *PageGormRepository) FindPublishedBySlug(ctx context.Context, slug string) (model.Page, error) {
	var p model.Page
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Page{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Page{}, err
	}
	return p, nil
}

func (r *PageGormRepository) FindByID(ctx context.Context, id int64) (model.Page, error) {
	var p model.Page
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Page{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Page{}, err
	}
	return p, nil
}

func (r *PageGormRepository) List(ctx context.Context, page int, limit int) ([]model.Page, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Page{}).Count(&total).Error; err != nil {
		return []model.Page{}, 0, err
	}

	var items []model.Page
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("id asc").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Page{}, 0, err
	}
	return items, total, nil
}

func (r *PageGormRepository) Create(ctx context.Context, p model.Page) (model.Page, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Page{}, err
	}
	return p, nil
}

func (r *PageGormRepository) Update(ctx context.Context, p model.Page) error {
	res := r.db.WithContext(ctx).Model(&model.Page{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"slug":         p.Slug,
		"title":        p.Title,
		"body":         p.Body,
		"is_published": p.IsPublished,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PageGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Page{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
