package models

import "time"

// Default language choices for new content of a bundle, besides a
// concrete langcode.
const (
	LangcodeSiteDefault      = "site_default"
	LangcodeCurrentInterface = "current_interface"
	LangcodeAuthorsDefault   = "authors_default"
)

// ContentLanguageSettings holds per-bundle language configuration.
type ContentLanguageSettings struct {
	ID                 string    `gorm:"primaryKey" json:"id"` // <entity type>.<bundle>
	TargetEntityTypeID string    `gorm:"not null;index:idx_language_target" json:"target_entity_type_id"`
	TargetBundle       string    `gorm:"not null;index:idx_language_target" json:"target_bundle"`
	DefaultLangcode    string    `gorm:"not null" json:"default_langcode"`
	LanguageAlterable  bool      `json:"language_alterable"`
	TranslationEnabled bool      `json:"translation_enabled"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewContentLanguageSettings returns the defaults for a bundle without
// stored settings.
func NewContentLanguageSettings(entityTypeID, bundle string) *ContentLanguageSettings {
	return &ContentLanguageSettings{
		ID:                 ContentLanguageSettingsID(entityTypeID, bundle),
		TargetEntityTypeID: entityTypeID,
		TargetBundle:       bundle,
		DefaultLangcode:    LangcodeSiteDefault,
	}
}

// ContentLanguageSettingsID returns the settings id for a bundle.
func ContentLanguageSettingsID(entityTypeID, bundle string) string {
	return entityTypeID + "." + bundle
}
