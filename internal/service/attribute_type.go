package service

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/nebari-dev/attributes/internal/rbac"
	"gorm.io/gorm"
)

var machineNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// reservedMachineNames would collide with fixed routes under the bundle
// collection path.
var reservedMachineNames = map[string]bool{"add": true}

// AttributeTypeService manages attribute bundles.
type AttributeTypeService struct {
	db *gorm.DB
}

// NewAttributeTypeService creates a new AttributeTypeService.
func NewAttributeTypeService(db *gorm.DB) *AttributeTypeService {
	return &AttributeTypeService{db: db}
}

// List returns all bundles in bundle sort order.
func (s *AttributeTypeService) List(ctx context.Context) ([]models.AttributeType, error) {
	var types []models.AttributeType
	if err := s.db.WithContext(ctx).Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list attribute types: %w", err)
	}
	models.SortAttributeTypes(types)
	return types, nil
}

// ListAttributeTypes implements permissions.TypeLister.
func (s *AttributeTypeService) ListAttributeTypes(ctx context.Context) ([]models.AttributeType, error) {
	return s.List(ctx)
}

// Get returns a single bundle by machine name.
func (s *AttributeTypeService) Get(ctx context.Context, id string) (*models.AttributeType, error) {
	var t models.AttributeType
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Exists reports whether a bundle with the machine name is stored.
func (s *AttributeTypeService) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AttributeType{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ValidateMachineName checks the format of a new bundle id.
func ValidateMachineName(id string) error {
	switch {
	case id == "":
		return fieldError("id", "Machine-readable name field is required.")
	case len(id) > entity.BundleMaxLength:
		return fieldError("id", fmt.Sprintf("Machine-readable name cannot be longer than %d characters.", entity.BundleMaxLength))
	case !machineNamePattern.MatchString(id):
		return fieldError("id", "The machine-readable name must contain only lowercase letters, numbers, and underscores.")
	case reservedMachineNames[id]:
		return fieldError("id", "The machine-readable name is reserved.")
	}
	return nil
}

// Save inserts or updates a bundle. The machine name of a stored bundle
// never changes.
func (s *AttributeTypeService) Save(ctx context.Context, t *models.AttributeType, actorID uint) (SaveResult, error) {
	if t.Label == "" {
		return 0, fieldError("label", "Label field is required.")
	}
	if utf8.RuneCountInString(t.Label) > 255 {
		return 0, fieldError("label", "Label cannot be longer than 255 characters.")
	}

	isNew := t.IsNew()
	if isNew {
		if err := ValidateMachineName(t.ID); err != nil {
			return 0, err
		}
		exists, err := s.Exists(ctx, t.ID)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, fieldError("id", "The machine-readable name is already in use. It must be unique.")
		}
		if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
			return 0, fmt.Errorf("create attribute type: %w", err)
		}
	} else {
		res := s.db.WithContext(ctx).Model(t).Select("label", "description", "updated_at").Updates(t)
		if res.Error != nil {
			return 0, fmt.Errorf("update attribute type: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return 0, ErrNotFound
		}
	}

	result := SavedUpdated
	action := audit.ActionUpdateAttributeType
	if isNew {
		result = SavedNew
		action = audit.ActionCreateAttributeType
	}
	audit.LogAction(s.db, actorID, action, fmt.Sprintf("attribute_type:%s", t.ID), map[string]interface{}{
		"label": t.Label,
	})
	return result, nil
}

// Delete removes a bundle that no attribute uses, along with its language
// settings and every grant of its permissions.
func (s *AttributeTypeService) Delete(ctx context.Context, t *models.AttributeType, actorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&models.Attribute{}).Where("type = ?", t.ID).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return &ConflictError{Message: InUseMessage(t.Label, inUse)}
		}

		if err := tx.Where("target_entity_type_id = ? AND target_bundle = ?", entity.TypeAttribute, t.ID).
			Delete(&models.ContentLanguageSettings{}).Error; err != nil {
			return fmt.Errorf("delete language settings: %w", err)
		}

		res := tx.Where("id = ?", t.ID).Delete(&models.AttributeType{})
		if res.Error != nil {
			return fmt.Errorf("delete attribute type: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, perm := range permissions.BundlePermissionNames(t.ID) {
		if err := rbac.RevokePermissionEverywhere(perm); err != nil {
			return fmt.Errorf("revoke %q: %w", perm, err)
		}
	}

	audit.LogAction(s.db, actorID, audit.ActionDeleteAttributeType, fmt.Sprintf("attribute_type:%s", t.ID), map[string]interface{}{
		"label": t.Label,
	})
	return nil
}

// InUseMessage explains why a bundle cannot be deleted.
func InUseMessage(label string, count int64) string {
	if count == 1 {
		return fmt.Sprintf("%s is used by 1 attribute on your site. You can not remove this attribute type until you have removed all of the %s attributes.", label, label)
	}
	return fmt.Sprintf("%s is used by %d attributes on your site. You can not remove this attribute type until you have removed all of the %s attributes.", label, count, label)
}
