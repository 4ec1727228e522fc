package models

import "time"

type SettingModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (SettingModel) TableName() string {
	return "app_settings"
}
