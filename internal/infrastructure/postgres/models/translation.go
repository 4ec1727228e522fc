package models

import "time"

type TranslationModel struct {
	ID        uint   `gorm:"primaryKey"`
	Language  string `gorm:"uniqueIndex:idx_translations_lang_key;size:8"`
	Key       string `gorm:"uniqueIndex:idx_translations_lang_key"`
	Value     string
	UpdatedAt time.Time
}

func (TranslationModel) TableName() string {
	return "translations"
}
