package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/config"
	"github.com/nebari-dev/attributes/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nameMaxLength bounds the attribute name.
const nameMaxLength = 255

// Clock supplies the request time as a unix timestamp.
type Clock interface {
	Now() int64
}

// AttributeService persists attributes and their translations.
type AttributeService struct {
	db    *gorm.DB
	cfg   config.ContentConfig
	clock Clock
}

// NewAttributeService creates a new AttributeService.
func NewAttributeService(db *gorm.DB, cfg config.ContentConfig, clock Clock) *AttributeService {
	return &AttributeService{db: db, cfg: cfg, clock: clock}
}

// Create returns a new unsaved attribute of bundle in langcode. An empty
// langcode uses the configured default language.
func (s *AttributeService) Create(bundle, langcode string) *models.Attribute {
	if langcode == "" {
		langcode = s.cfg.DefaultLangcode
	}
	return models.NewAttribute(bundle, langcode, s.clock.Now())
}

// Get returns a single attribute with all its translations.
func (s *AttributeService) Get(ctx context.Context, id uint) (*models.Attribute, error) {
	var a models.Attribute
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.loadTranslations(ctx, []*models.Attribute{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns attributes matching opts and the total count before paging.
func (s *AttributeService) List(ctx context.Context, opts AttributeListOptions) ([]*models.Attribute, int64, error) {
	filter := func(query *gorm.DB) *gorm.DB {
		if opts.Bundle != "" {
			query = query.Where("attribute.type = ?", opts.Bundle)
		}
		if opts.Published != nil {
			status := models.NotPublished
			if *opts.Published {
				status = models.Published
			}
			sub := s.db.Model(&models.AttributeFieldData{}).Select("id").Where("status = ?", status)
			if opts.Langcode != "" {
				sub = sub.Where("langcode = ?", opts.Langcode)
			} else {
				sub = sub.Where("default_langcode = ?", 1)
			}
			query = query.Where("attribute.id IN (?)", sub)
		}
		return query
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Attribute{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count attributes: %w", err)
	}

	query := s.db.WithContext(ctx).Model(&models.Attribute{}).Scopes(filter)
	switch opts.OrderBy {
	case "weight":
		query = query.
			Joins("JOIN attribute_field_data d ON d.id = attribute.id AND d.default_langcode = 1").
			Order("d.weight ASC").Order("d.name ASC").Order("attribute.id ASC")
	default:
		query = query.Order("attribute.id ASC")
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	var attrs []*models.Attribute
	if err := query.Select("attribute.*").Find(&attrs).Error; err != nil {
		return nil, 0, fmt.Errorf("list attributes: %w", err)
	}
	if err := s.loadTranslations(ctx, attrs); err != nil {
		return nil, 0, err
	}
	if opts.Langcode != "" {
		for _, a := range attrs {
			a.SetActiveLangcode(opts.Langcode)
		}
	}
	return attrs, total, nil
}

// CountByBundle returns how many attributes use a bundle.
func (s *AttributeService) CountByBundle(ctx context.Context, bundle string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Attribute{}).Where("type = ?", bundle).Count(&count).Error
	return count, err
}

func (s *AttributeService) loadTranslations(ctx context.Context, attrs []*models.Attribute) error {
	if len(attrs) == 0 {
		return nil
	}
	ids := make([]uint, len(attrs))
	byID := make(map[uint]*models.Attribute, len(attrs))
	for i, a := range attrs {
		ids[i] = a.ID
		a.Translations = nil
		byID[a.ID] = a
	}

	var rows []*models.AttributeFieldData
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("default_langcode DESC").Order("langcode ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	if err := attachOwners(s.db.WithContext(ctx), rows); err != nil {
		return err
	}
	for _, row := range rows {
		if a, ok := byID[row.ID]; ok {
			a.Translations = append(a.Translations, row)
		}
	}
	for _, a := range attrs {
		a.SnapshotOriginal()
	}
	return nil
}

// attachOwners resolves the owner account of each translation. uid 0 is
// the anonymous account; ids without a user row stay unresolved.
func attachOwners(db *gorm.DB, rows []*models.AttributeFieldData) error {
	users, err := loadUsers(db, rows)
	if err != nil {
		return err
	}
	for _, row := range rows {
		row.Owner = nil
		if row.UID == nil {
			continue
		}
		if *row.UID == models.AnonymousUserID {
			row.Owner = models.AnonymousUser()
			continue
		}
		if u, ok := users[*row.UID]; ok {
			row.Owner = u
		}
	}
	return nil
}

func loadUsers(db *gorm.DB, rows []*models.AttributeFieldData) (map[uint]*models.User, error) {
	seen := map[uint]bool{}
	var ids []uint
	for _, row := range rows {
		if row.UID != nil && *row.UID != models.AnonymousUserID && !seen[*row.UID] {
			seen[*row.UID] = true
			ids = append(ids, *row.UID)
		}
	}
	users := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var found []models.User
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	for i := range found {
		users[found[i].ID] = &found[i]
	}
	return users, nil
}

// validate checks the values storage cannot enforce.
func (s *AttributeService) validate(tx *gorm.DB, a *models.Attribute) error {
	if a.Langcode == "" {
		return fieldError("langcode", "Language field is required.")
	}
	if len(a.Translations) == 0 || a.DefaultTranslation() == nil {
		return fieldError("langcode", "The default translation is missing.")
	}

	var bundles int64
	if err := tx.Model(&models.AttributeType{}).Where("id = ?", a.Type).Count(&bundles).Error; err != nil {
		return err
	}
	if bundles == 0 {
		return fieldError("type", fmt.Sprintf("The attribute type %q does not exist.", a.Type))
	}

	for _, t := range a.Translations {
		if t.Name == "" {
			return fieldError("name", "Name field is required.")
		}
		if utf8.RuneCountInString(t.Name) > nameMaxLength {
			return fieldError("name", fmt.Sprintf("Name: may not be longer than %d characters.", nameMaxLength))
		}
	}
	return nil
}

// preSave fills in owners, creation and change times before the rows are
// written.
func (s *AttributeService) preSave(tx *gorm.DB, a *models.Attribute) error {
	// Every translation needs a resolvable owner.
	users, err := loadUsers(tx, a.Translations)
	if err != nil {
		return err
	}
	for _, t := range a.Translations {
		resolved := t.UID != nil && (*t.UID == models.AnonymousUserID || users[*t.UID] != nil)
		if !resolved {
			fallback := s.cfg.DefaultOwnerID
			t.UID = &fallback
			t.Owner = nil
		}
	}

	now := s.clock.Now()
	for _, t := range a.Translations {
		if t.Created == 0 {
			t.Created = now
		}
		orig, existed := a.Original(t.Langcode)
		switch {
		case a.IsNew() || !existed:
			t.Changed = now
		case t.Changed == orig.Changed && a.IsTranslationChanged(t.Langcode):
			t.Changed = now
		}
		if t.Langcode == a.Langcode {
			t.DefaultLangcode = 1
		} else {
			t.DefaultLangcode = 0
		}
		t.Type = a.Type
	}
	return nil
}

// Save inserts or updates an attribute with all its translations and
// returns whether it was new. Translations removed from a are deleted.
func (s *AttributeService) Save(ctx context.Context, a *models.Attribute, actorID uint) (SaveResult, error) {
	isNew := a.IsNew()
	result := SavedUpdated
	if isNew {
		result = SavedNew
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, a); err != nil {
			return err
		}

		if !isNew {
			var stored models.Attribute
			if err := tx.Where("id = ?", a.ID).First(&stored).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return ErrNotFound
				}
				return err
			}
			if stored.Type != a.Type {
				return fieldError("type", "The attribute type cannot be changed.")
			}
		}

		if err := s.preSave(tx, a); err != nil {
			return err
		}

		if isNew {
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("create attribute: %w", err)
			}
		} else {
			if err := tx.Model(&models.Attribute{}).Where("id = ?", a.ID).Update("langcode", a.Langcode).Error; err != nil {
				return fmt.Errorf("update attribute: %w", err)
			}
		}

		langcodes := make([]string, 0, len(a.Translations))
		for _, t := range a.Translations {
			t.ID = a.ID
			langcodes = append(langcodes, t.Langcode)
		}

		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}, {Name: "langcode"}},
				UpdateAll: true,
			}).
			Create(&a.Translations).Error
		if err != nil {
			return fmt.Errorf("save translations: %w", err)
		}

		if err := tx.Where("id = ? AND langcode NOT IN ?", a.ID, langcodes).Delete(&models.AttributeFieldData{}).Error; err != nil {
			return fmt.Errorf("delete removed translations: %w", err)
		}

		return attachOwners(tx, a.Translations)
	})
	if err != nil {
		if isNew {
			a.ID = 0
		}
		return 0, err
	}

	a.SnapshotOriginal()

	action := audit.ActionUpdateAttribute
	if isNew {
		action = audit.ActionCreateAttribute
	}
	audit.LogAction(s.db, actorID, action, fmt.Sprintf("attribute:%d", a.ID), map[string]interface{}{
		"type":      a.Type,
		"name":      a.DefaultTranslation().Name,
		"langcodes": a.TranslationLanguages(),
	})

	return result, nil
}

// Delete removes an attribute and every translation.
func (s *AttributeService) Delete(ctx context.Context, a *models.Attribute, actorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", a.ID).Delete(&models.AttributeFieldData{}).Error; err != nil {
			return fmt.Errorf("delete translations: %w", err)
		}
		res := tx.Where("id = ?", a.ID).Delete(&models.Attribute{})
		if res.Error != nil {
			return fmt.Errorf("delete attribute: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	audit.LogAction(s.db, actorID, audit.ActionDeleteAttribute, fmt.Sprintf("attribute:%d", a.ID), map[string]interface{}{
		"type": a.Type,
		"name": a.EntityLabel(),
	})
	return nil
}

// DeleteTranslation removes one non-default translation.
func (s *AttributeService) DeleteTranslation(ctx context.Context, a *models.Attribute, langcode string, actorID uint) error {
	if langcode == a.Langcode {
		return &ValidationError{Message: "the default translation cannot be deleted on its own"}
	}
	if !a.HasTranslation(langcode) {
		return ErrNotFound
	}

	res := s.db.WithContext(ctx).Where("id = ? AND langcode = ?", a.ID, langcode).Delete(&models.AttributeFieldData{})
	if res.Error != nil {
		return fmt.Errorf("delete translation: %w", res.Error)
	}
	a.RemoveTranslation(langcode)
	a.SnapshotOriginal()

	audit.LogAction(s.db, actorID, audit.ActionDeleteTranslation, fmt.Sprintf("attribute:%d", a.ID), map[string]interface{}{
		"langcode": langcode,
	})
	return nil
}
