package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/postgres/models"
)

// TranslationRepository backs the translation loader with the
// translations table. One row per (language, key).
type TranslationRepository struct {
	db *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) *TranslationRepository {
	return &TranslationRepository{db: db}
}

func (r *TranslationRepository) Load(ctx context.Context, language string) (map[string]string, error) {
	var rows []models.TranslationModel
	if err := r.db.WithContext(ctx).Find(&rows, "language = ?", language).Error; err != nil {
		return nil, err
	}
	table := make(map[string]string, len(rows))
	for _, row := range rows {
		table[row.Key] = row.Value
	}
	return table, nil
}

func (r *TranslationRepository) Upsert(ctx context.Context, language string, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.TranslationModel, 0, len(entries))
	for key, value := range entries {
		rows = append(rows, models.TranslationModel{Language: language, Key: key, Value: value})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "language"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rows).Error
}
