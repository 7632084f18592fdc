package models

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/nebari-dev/attributes/internal/entity"
)

// Publishing states of an attribute translation.
const (
	NotPublished = 0
	Published    = 1
)

// Attribute is the content entity. Field values live per language in
// Translations; accessors operate on the active translation.
type Attribute struct {
	ID       uint   `gorm:"primaryKey;column:id" json:"id"`
	UUID     string `gorm:"column:uuid" json:"uuid"`
	Type     string `gorm:"column:type" json:"type"`
	Langcode string `gorm:"column:langcode" json:"langcode"`

	Translations []*AttributeFieldData `gorm:"-" json:"translations"`

	activeLangcode string
	// original holds the translations as loaded, for change detection.
	original map[string]AttributeFieldData
}

// TableName overrides the default pluralized table name.
func (Attribute) TableName() string { return entity.AttributeEntityType.BaseTable }

// AttributeFieldData is one translation row of an attribute.
type AttributeFieldData struct {
	ID              uint   `gorm:"primaryKey;autoIncrement:false;column:id" json:"-"`
	Langcode        string `gorm:"primaryKey;column:langcode" json:"langcode"`
	Type            string `gorm:"column:type" json:"-"`
	DefaultLangcode int    `gorm:"column:default_langcode" json:"default_langcode"`
	Name            string `gorm:"column:name" json:"name"`
	Weight          int    `gorm:"column:weight" json:"weight"`
	UID             *uint  `gorm:"column:uid" json:"uid"`
	Owner           *User  `gorm:"foreignKey:UID" json:"owner,omitempty"`
	Status          int    `gorm:"column:status" json:"status"`
	Created         int64  `gorm:"column:created" json:"created"`
	Changed         int64  `gorm:"column:changed" json:"changed"`
}

// TableName overrides the default pluralized table name.
func (AttributeFieldData) TableName() string { return entity.AttributeEntityType.DataTable }

// SameValues reports whether two translations hold the same editable
// values. changed and the loaded owner are ignored.
func (d AttributeFieldData) SameValues(o AttributeFieldData) bool {
	uidEq := (d.UID == nil && o.UID == nil) || (d.UID != nil && o.UID != nil && *d.UID == *o.UID)
	return uidEq &&
		d.Langcode == o.Langcode &&
		d.DefaultLangcode == o.DefaultLangcode &&
		d.Name == o.Name &&
		d.Weight == o.Weight &&
		d.Status == o.Status &&
		d.Created == o.Created
}

// NewAttribute returns an unsaved attribute of the given bundle with one
// published default translation.
func NewAttribute(bundle, langcode string, now int64) *Attribute {
	a := &Attribute{
		UUID:     uuid.New().String(),
		Type:     bundle,
		Langcode: langcode,
	}
	a.Translations = []*AttributeFieldData{{
		Langcode:        langcode,
		Type:            bundle,
		DefaultLangcode: 1,
		Status:          Published,
		Created:         now,
		Changed:         now,
	}}
	a.activeLangcode = langcode
	return a
}

func (a *Attribute) EntityTypeID() string { return entity.TypeAttribute }
func (a *Attribute) EntityLabel() string  { return a.Name() }
func (a *Attribute) Bundle() string       { return a.Type }
func (a *Attribute) IsNew() bool          { return a.ID == 0 }

// EntityID returns the id as a string, or "" while unsaved.
func (a *Attribute) EntityID() string {
	if a.ID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(a.ID), 10)
}

// SnapshotOriginal records the current translations as the persisted state.
func (a *Attribute) SnapshotOriginal() {
	a.original = make(map[string]AttributeFieldData, len(a.Translations))
	for _, t := range a.Translations {
		a.original[t.Langcode] = *t
	}
}

// Original returns the persisted state of a translation.
func (a *Attribute) Original(langcode string) (AttributeFieldData, bool) {
	d, ok := a.original[langcode]
	return d, ok
}

// IsTranslationChanged reports whether a translation differs from what was
// loaded. Translations added since loading count as changed.
func (a *Attribute) IsTranslationChanged(langcode string) bool {
	t := a.Translation(langcode)
	if t == nil {
		return false
	}
	orig, ok := a.original[langcode]
	return !ok || !t.SameValues(orig)
}

// Translation returns the translation for langcode, or nil.
func (a *Attribute) Translation(langcode string) *AttributeFieldData {
	for _, t := range a.Translations {
		if t.Langcode == langcode {
			return t
		}
	}
	return nil
}

// HasTranslation reports whether langcode has a translation.
func (a *Attribute) HasTranslation(langcode string) bool {
	return a.Translation(langcode) != nil
}

// TranslationLanguages returns the langcodes of all translations, the
// default language first.
func (a *Attribute) TranslationLanguages() []string {
	codes := make([]string, 0, len(a.Translations))
	for _, t := range a.Translations {
		codes = append(codes, t.Langcode)
	}
	sort.SliceStable(codes, func(i, j int) bool {
		return codes[i] == a.Langcode && codes[j] != a.Langcode
	})
	return codes
}

// AddTranslation copies the default translation's values into a new
// translation for langcode and returns it.
func (a *Attribute) AddTranslation(langcode string, now int64) *AttributeFieldData {
	if t := a.Translation(langcode); t != nil {
		return t
	}
	src := a.DefaultTranslation()
	t := &AttributeFieldData{
		ID:       a.ID,
		Langcode: langcode,
		Type:     a.Type,
		Status:   Published,
		Created:  now,
		Changed:  now,
	}
	if src != nil {
		t.Name = src.Name
		t.Weight = src.Weight
		t.UID = src.UID
		t.Status = src.Status
	}
	a.Translations = append(a.Translations, t)
	return t
}

// RemoveTranslation drops a non-default translation.
func (a *Attribute) RemoveTranslation(langcode string) bool {
	if langcode == a.Langcode {
		return false
	}
	for i, t := range a.Translations {
		if t.Langcode == langcode {
			a.Translations = append(a.Translations[:i], a.Translations[i+1:]...)
			return true
		}
	}
	return false
}

// SetLangcode moves the default translation of an unsaved attribute to
// another language. It returns false for saved attributes and when the
// language already has a translation.
func (a *Attribute) SetLangcode(langcode string) bool {
	if !a.IsNew() || langcode == "" {
		return false
	}
	if langcode == a.Langcode {
		return true
	}
	if a.HasTranslation(langcode) {
		return false
	}
	if t := a.DefaultTranslation(); t != nil {
		t.Langcode = langcode
	}
	a.Langcode = langcode
	a.activeLangcode = langcode
	return true
}

// DefaultTranslation returns the translation in the entity's own language.
func (a *Attribute) DefaultTranslation() *AttributeFieldData {
	return a.Translation(a.Langcode)
}

// SetActiveLangcode selects the translation accessors act on. It returns
// false if no such translation exists.
func (a *Attribute) SetActiveLangcode(langcode string) bool {
	if !a.HasTranslation(langcode) {
		return false
	}
	a.activeLangcode = langcode
	return true
}

// ActiveLangcode returns the language of the active translation.
func (a *Attribute) ActiveLangcode() string {
	if a.activeLangcode == "" || !a.HasTranslation(a.activeLangcode) {
		return a.Langcode
	}
	return a.activeLangcode
}

// IsDefaultTranslation reports whether the active translation is the
// default one.
func (a *Attribute) IsDefaultTranslation() bool {
	return a.ActiveLangcode() == a.Langcode
}

// Active returns the active translation. A zero translation is returned for
// an attribute without translations so accessors never panic.
func (a *Attribute) Active() *AttributeFieldData {
	if t := a.Translation(a.ActiveLangcode()); t != nil {
		return t
	}
	return &AttributeFieldData{}
}

func (a *Attribute) Name() string        { return a.Active().Name }
func (a *Attribute) SetName(name string) { a.Active().Name = name }
func (a *Attribute) Weight() int         { return a.Active().Weight }
func (a *Attribute) SetWeight(w int)     { a.Active().Weight = w }

func (a *Attribute) CreatedTime() int64     { return a.Active().Created }
func (a *Attribute) SetCreatedTime(t int64) { a.Active().Created = t }
func (a *Attribute) ChangedTime() int64     { return a.Active().Changed }
func (a *Attribute) SetChangedTime(t int64) { a.Active().Changed = t }

// ChangedTimeAcrossTranslations returns the latest changed time of any
// translation.
func (a *Attribute) ChangedTimeAcrossTranslations() int64 {
	var latest int64
	for _, t := range a.Translations {
		if t.Changed > latest {
			latest = t.Changed
		}
	}
	return latest
}

func (a *Attribute) IsPublished() bool { return a.Active().Status == Published }
func (a *Attribute) SetPublished()     { a.Active().Status = Published }
func (a *Attribute) SetUnpublished()   { a.Active().Status = NotPublished }

// OwnerID returns the active translation's owner id and whether one is set.
func (a *Attribute) OwnerID() (uint, bool) {
	uid := a.Active().UID
	if uid == nil {
		return 0, false
	}
	return *uid, true
}

// SetOwnerID sets the active translation's owner and drops any loaded
// owner record.
func (a *Attribute) SetOwnerID(uid uint) {
	t := a.Active()
	t.UID = &uid
	t.Owner = nil
}

// Owner returns the loaded owner of the active translation, or nil.
func (a *Attribute) Owner() *User { return a.Active().Owner }
