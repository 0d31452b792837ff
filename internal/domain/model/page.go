package model

import (
	"time"

	"gorm.io/gorm"
)

// 静的ページ（利用規約・会社概要など）。公開分だけslugで取得できる。
type Page struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug  string `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Title string `gorm:"type:varchar(255);not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	IsPublished bool `gorm:"not null;default:false" json:"is_published"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
