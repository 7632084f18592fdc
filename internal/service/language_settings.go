package service

import (
	"context"
	"fmt"

	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LanguageSettingsService stores per-bundle content language settings.
type LanguageSettingsService struct {
	db *gorm.DB
}

// NewLanguageSettingsService creates a new LanguageSettingsService.
func NewLanguageSettingsService(db *gorm.DB) *LanguageSettingsService {
	return &LanguageSettingsService{db: db}
}

// Load returns the stored settings of a bundle, or the defaults when none
// are stored.
func (s *LanguageSettingsService) Load(ctx context.Context, entityTypeID, bundle string) (*models.ContentLanguageSettings, error) {
	var settings models.ContentLanguageSettings
	err := s.db.WithContext(ctx).Where("id = ?", models.ContentLanguageSettingsID(entityTypeID, bundle)).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		return models.NewContentLanguageSettings(entityTypeID, bundle), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load language settings: %w", err)
	}
	return &settings, nil
}

// Save stores the settings, replacing any previous ones for the bundle.
func (s *LanguageSettingsService) Save(ctx context.Context, settings *models.ContentLanguageSettings, actorID uint) error {
	settings.ID = models.ContentLanguageSettingsID(settings.TargetEntityTypeID, settings.TargetBundle)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_langcode", "language_alterable", "translation_enabled", "updated_at"}),
		}).
		Create(settings).Error
	if err != nil {
		return fmt.Errorf("save language settings: %w", err)
	}

	audit.LogAction(s.db, actorID, audit.ActionUpdateLanguageConfig, "language_settings:"+settings.ID, map[string]interface{}{
		"default_langcode":    settings.DefaultLangcode,
		"language_alterable":  settings.LanguageAlterable,
		"translation_enabled": settings.TranslationEnabled,
	})
	return nil
}
