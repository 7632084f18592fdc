package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/naturalsort"
	"github.com/nebari-dev/attributes/internal/entity"
	"gorm.io/gorm"
)

// AttributeType is the bundle configuration record of attributes.
type AttributeType struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	UUID        string    `gorm:"size:36;uniqueIndex" json:"uuid"`
	Label       string    `gorm:"size:255;not null" json:"label"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	isNew bool
}

// TableName overrides the default pluralized table name.
func (AttributeType) TableName() string { return "attribute_type" }

// NewAttributeType returns an unsaved bundle.
func NewAttributeType(id, label, description string) *AttributeType {
	return &AttributeType{ID: id, Label: label, Description: description, isNew: true}
}

// BeforeCreate hook to generate UUID
func (t *AttributeType) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	return nil
}

// AfterSave clears the new flag once the row exists.
func (t *AttributeType) AfterSave(tx *gorm.DB) error {
	t.isNew = false
	return nil
}

func (t *AttributeType) EntityTypeID() string { return entity.TypeAttributeType }
func (t *AttributeType) EntityID() string     { return t.ID }
func (t *AttributeType) EntityLabel() string  { return t.Label }
func (t *AttributeType) Bundle() string       { return entity.TypeAttributeType }

// IsNew reports whether the bundle has not been saved yet.
func (t *AttributeType) IsNew() bool { return t.isNew || t.ID == "" }

// EnforceIsNew marks the bundle as unsaved regardless of its id.
func (t *AttributeType) EnforceIsNew(v bool) { t.isNew = v }

// ConfigName is the name the bundle is exported under.
func (t *AttributeType) ConfigName() string {
	return entity.AttributeTypeEntityType.ConfigPrefix + "." + t.ID
}

// SortAttributeTypes orders bundles by label, naturally and without regard
// to case, breaking ties by id.
func SortAttributeTypes(types []AttributeType) {
	if len(types) < 2 {
		return
	}
	keys := make([]string, len(types))
	byKey := make(map[string]AttributeType, len(types))
	for i, t := range types {
		k := strings.ToLower(t.Label) + "\x00" + t.ID
		keys[i] = k
		byKey[k] = t
	}
	naturalsort.Sort(keys)
	for i, k := range keys {
		types[i] = byKey[k]
	}
}
