package models

import (
	"time"
)

type Translation struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Group     *string   `json:"group" gorm:"column:group;type:varchar(255)"`
	Key       string    `json:"key" gorm:"type:varchar(255);not null;index"`
	Locale    string    `json:"locale" gorm:"type:varchar(255);not null;index"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_tags_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TranslationTag is the pure join between translations and tags. It has no
// key of its own; the repository keeps pairs unique per sync.
type TranslationTag struct {
	TranslationID uint64      `json:"translation_id" gorm:"not null;index"`
	Translation   Translation `json:"-" gorm:"foreignKey:TranslationID;references:ID"`
	TagID         uint64      `json:"tag_id" gorm:"not null;index"`
	Tag           Tag         `json:"-" gorm:"foreignKey:TagID;references:ID"`
}

func (TranslationTag) TableName() string {
	return "translation_tag"
}
