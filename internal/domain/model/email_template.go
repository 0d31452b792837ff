package model

import "time"

// メールテンプレート。管理画面でCRUDするだけで、描画・送信は別システム。
type EmailTemplate struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Subject string `gorm:"type:varchar(255);not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
