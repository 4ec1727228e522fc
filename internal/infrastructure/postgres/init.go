package postgres

import (
	"log"

	"github.com/Dan3dev/Church-management-system-sub001/internal/config"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.AppConfig) *gorm.DB {
	dsn := cfg.StateDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.SettingModel{}, &models.TranslationModel{})

	return db
}
