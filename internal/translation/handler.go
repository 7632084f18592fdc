// Package translation adapts attribute forms to multilingual content: it
// adds the translation metadata element, labels the save button with the
// translation scope and copies metadata into the translation on submit.
package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/service"
)

// ElementKey is the form element (and submitted value) holding the
// translation metadata.
const ElementKey = "content_translation"

// ErrInvalidCreated is returned when the submitted translation authoring
// date cannot be parsed.
var ErrInvalidCreated = errors.New("invalid translation authoring date")

// UserLookup loads accounts by id.
type UserLookup interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// Handler is the translation handler for attributes.
type Handler struct {
	fields     entity.FieldDefinitions
	dates      *datetime.Formatter
	translator *i18n.Translator
	users      UserLookup
}

// NewHandler returns a handler reading field translatability from fields.
func NewHandler(fields entity.FieldDefinitions, dates *datetime.Formatter, translator *i18n.Translator, users UserLookup) *Handler {
	return &Handler{fields: fields, dates: dates, translator: translator, users: users}
}

// In returns a copy of h producing interface text in langcode.
func (h *Handler) In(langcode string) *Handler {
	c := *h
	c.translator = h.translator.In(langcode)
	return &c
}

// EntityFormTitle returns the title of the edit form of a.
func (h *Handler) EntityFormTitle(a *models.Attribute) i18n.Markup {
	return h.translator.T("", "<em>Edit @type</em> @title", i18n.Args{
		"@type":  a.Bundle(),
		"@title": a.Name(),
	})
}

// EntityFormAlter prepares the form of an existing attribute for
// translation. The metadata element is only added when there is something
// to translate: a new translation is being created or more than one exists.
func (h *Handler) EntityFormAlter(f *form.Form, state *form.State, a *models.Attribute) {
	formLangcode := state.Langcode
	if formLangcode == "" {
		formLangcode = a.ActiveLangcode()
	}
	newTranslation := state.SourceLangcode != ""

	var translations []string
	for _, langcode := range a.TranslationLanguages() {
		if newTranslation && langcode == formLangcode {
			continue
		}
		translations = append(translations, langcode)
	}
	isTranslation := newTranslation || a.ActiveLangcode() != a.Langcode
	hasTranslations := len(translations) > 1

	if h.translator.IsConfigured(formLangcode) && (hasTranslations || newTranslation) {
		title := h.EntityFormTitle(a)
		if isTranslation {
			args := i18n.Args{
				"%language": h.translator.LanguageName(formLangcode),
				"%title":    a.Name(),
				"@title":    title,
			}
			if newTranslation {
				title = h.translator.T("", "Create %language translation of %title", args)
			} else {
				title = h.translator.T("", "@title [%language translation]", args)
			}
		}
		f.Title = title
	}

	if hasTranslations || newTranslation {
		f.Add(h.metadataElement(state, a, newTranslation))
	}

	// The entity's own status, owner and created widgets already carry
	// these values.
	if el := f.Element(ElementKey); el != nil {
		for _, key := range []string{"status", "name", "created"} {
			if child := el.Child(key); child != nil {
				child.DenyAccess()
			}
		}
	}

	if a.IsNew() {
		return
	}
	existing := a.TranslationLanguages()
	if contains(existing, formLangcode) && len(existing) <= 1 {
		return
	}
	translatable, ok := h.fields.IsTranslatable("status")
	if !ok {
		return
	}
	suffix := h.translator.T("", "(all translations)", nil)
	if translatable {
		suffix = h.translator.T("", "(this translation)", nil)
	}
	for _, action := range f.Actions {
		if action.Type != form.TypeSubmit {
			continue
		}
		action.Value = fmt.Sprintf("%v %s", action.Value, suffix)
	}
}

func (h *Handler) metadataElement(state *form.State, a *models.Attribute, newTranslation bool) *form.Element {
	el := &form.Element{
		Key:    ElementKey,
		Type:   form.TypeDetails,
		Title:  h.translator.T("", "Translation", nil),
		Weight: 10,
	}

	el.AddChild(&form.Element{
		Key:          "status",
		Type:         form.TypeCheckbox,
		Title:        h.translator.T("", "This translation is published", nil),
		DefaultValue: newTranslation || a.IsPublished(),
		Description:  h.translator.T("", "An unpublished translation will not be visible without translation permissions.", nil),
	})

	uid := models.AnonymousUserID
	if newTranslation {
		if state.Account != nil {
			uid = state.Account.ID
		}
	} else if id, ok := a.OwnerID(); ok {
		uid = id
	}
	el.AddChild(&form.Element{
		Key:          "name",
		Type:         form.TypeEntityAutocomplete,
		Title:        h.translator.T("", "Authored by", nil),
		DefaultValue: uid,
		MaxLength:    60,
		Description:  h.translator.T("", "Leave blank for %anonymous.", i18n.Args{"%anonymous": models.AnonymousUser().DisplayName()}),
		Attributes:   map[string]any{"target_type": "user"},
	})

	created := ""
	if !newTranslation && a.CreatedTime() != 0 {
		created = h.dates.Format(a.CreatedTime(), datetime.FormatCustom, datetime.MetadataPattern)
	}
	el.AddChild(&form.Element{
		Key:          "created",
		Type:         form.TypeTextfield,
		Title:        h.translator.T("", "Authored on", nil),
		DefaultValue: created,
		MaxLength:    25,
		Description:  h.translator.T("", "Leave blank to use the time of form submission.", nil),
	})

	return el
}

// EntityFormEntityBuild copies the translation's published flag, owner and
// creation time into the submitted metadata and applies the metadata to
// the active translation. Nothing happens when no metadata was submitted.
// An owner whose account no longer exists is replaced by the anonymous
// account.
func (h *Handler) EntityFormEntityBuild(ctx context.Context, a *models.Attribute, state *form.State) error {
	values, ok := state.ValueMap(ElementKey)
	if !ok {
		return nil
	}

	uid, err := h.ownerID(ctx, a)
	if err != nil {
		return err
	}
	values["status"] = a.IsPublished()
	values["uid"] = uid
	values["created"] = h.dates.Format(a.CreatedTime(), datetime.FormatCustom, datetime.MetadataPattern)

	return h.applyMetadata(a, values)
}

func (h *Handler) applyMetadata(a *models.Attribute, values map[string]any) error {
	if uid, ok := form.ToInt(values["uid"]); ok && uid > 0 {
		a.SetOwnerID(uint(uid))
	} else {
		a.SetOwnerID(models.AnonymousUserID)
	}

	if form.ToBool(values["status"]) {
		a.SetPublished()
	} else {
		a.SetUnpublished()
	}

	created, _ := values["created"].(string)
	if created == "" {
		a.SetCreatedTime(h.dates.Now())
		return nil
	}
	ts, err := h.dates.Parse(created, datetime.MetadataPattern)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCreated, created, err)
	}
	a.SetCreatedTime(ts)
	return nil
}

func (h *Handler) ownerID(ctx context.Context, a *models.Attribute) (uint, error) {
	id, ok := a.OwnerID()
	if !ok || id == models.AnonymousUserID {
		return models.AnonymousUserID, nil
	}
	if owner := a.Owner(); owner != nil && owner.ID == id {
		return id, nil
	}
	if _, err := h.users.Get(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return models.AnonymousUserID, nil
		}
		return 0, fmt.Errorf("load owner %d: %w", id, err)
	}
	return id, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
