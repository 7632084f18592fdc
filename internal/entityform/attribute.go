package entityform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nebari-dev/attributes/internal/access"
	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
	"github.com/nebari-dev/attributes/internal/service"
	"github.com/nebari-dev/attributes/internal/translation"
)

// AttributeForm is the add and edit form of attributes.
type AttributeForm struct {
	Deps
	logger *slog.Logger
}

// NewAttributeForm creates the attribute form handler.
func NewAttributeForm(d Deps) *AttributeForm {
	return &AttributeForm{Deps: d, logger: d.contentLogger()}
}

// NewAttribute returns an unsaved attribute of bundle in the language its
// bundle settings ask for.
func (f *AttributeForm) NewAttribute(ctx context.Context, bundle string, state *form.State) (*models.Attribute, error) {
	settings, err := f.Languages.Load(ctx, entity.TypeAttribute, bundle)
	if err != nil {
		return nil, err
	}

	langcode := settings.DefaultLangcode
	switch langcode {
	case models.LangcodeSiteDefault, models.LangcodeAuthorsDefault, "":
		langcode = f.Translator.DefaultLangcode()
	case models.LangcodeCurrentInterface:
		langcode = state.Langcode
		if !f.Translator.IsConfigured(langcode) {
			langcode = f.Translator.DefaultLangcode()
		}
	}
	return f.Attributes.Create(bundle, langcode), nil
}

// PrepareTranslation adds a target translation to a copied from the source
// translation and makes it active.
func (f *AttributeForm) PrepareTranslation(a *models.Attribute, state *form.State, source, target string) error {
	src := a.Translation(source)
	if src == nil {
		return service.ErrNotFound
	}
	if !f.Translator.IsConfigured(target) {
		return &service.ValidationError{Message: fmt.Sprintf("The language %q is not available.", target)}
	}
	if a.HasTranslation(target) {
		return &service.ConflictError{Message: fmt.Sprintf("The %s translation already exists.", f.Translator.LanguageName(target))}
	}

	t := a.AddTranslation(target, f.Dates.Now())
	t.Name = src.Name
	t.Weight = src.Weight
	t.Status = src.Status
	t.UID = src.UID
	a.SetActiveLangcode(target)

	state.Langcode = target
	state.SourceLangcode = source
	return nil
}

// translationEnabled reports whether the translation handler takes part in
// the form of a.
func (f *AttributeForm) translationEnabled(a *models.Attribute, settings *models.ContentLanguageSettings) bool {
	return !a.IsNew() && f.Modules.Exists(ModuleContentTranslation) && settings.TranslationEnabled
}

// Build returns the form for a. The active translation of a is the one
// being edited.
func (f *AttributeForm) Build(ctx context.Context, a *models.Attribute, state *form.State) (*form.Form, error) {
	settings, err := f.Languages.Load(ctx, entity.TypeAttribute, a.Bundle())
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("attribute_%s_form", a.Bundle())
	if state.Operation != form.OpAdd && state.Operation != form.OpDefault {
		id = fmt.Sprintf("attribute_%s_%s_form", a.Bundle(), state.Operation)
	}
	out := form.New(id)

	if state.Operation == form.OpEdit {
		out.Title = f.t("<em>Edit @type</em> @title", i18n.Args{
			"@type":  a.EntityTypeID(),
			"@title": a.EntityLabel(),
		})
	}

	// Sent to the client for later overwrite checks.
	out.Add(&form.Element{Key: "changed", Type: form.TypeHidden, DefaultValue: a.ChangedTime()})

	for _, fd := range f.Fields {
		if fd.FormDisplay == nil {
			continue
		}
		out.Add(f.widget(fd, a, settings))
	}

	out.Add(&form.Element{
		Key:        "advanced",
		Type:       form.TypeContainer,
		Weight:     99,
		Attributes: map[string]any{"class": []string{"entity-meta"}},
	})

	if el := out.Element("weight"); el != nil && a.IsNew() {
		el.DefaultValue = 0
	}

	// Author information for administrators.
	out.Add(&form.Element{
		Key:        "author",
		Type:       form.TypeDetails,
		Title:      f.t("Authoring information", nil),
		Group:      "advanced",
		Attributes: map[string]any{"class": []string{"attribute-form-author"}},
		Weight:     90,
		Optional:   true,
	})
	for _, key := range []string{"uid", "created"} {
		if el := out.Element(key); el != nil {
			el.Group = "author"
		}
	}

	f.addActions(out, a, state)

	if f.translationEnabled(a, settings) {
		f.Translation.EntityFormAlter(out, state, a)
	}

	out.Sort()
	return out, nil
}

func (f *AttributeForm) widget(fd *entity.FieldDefinition, a *models.Attribute, settings *models.ContentLanguageSettings) *form.Element {
	el := &form.Element{
		Key:         fd.Name,
		Title:       f.t(fd.Label, nil),
		Required:    fd.Required,
		MaxLength:   fd.MaxLength,
		Weight:      fd.FormDisplay.Weight,
		Description: f.t(fd.Description, nil),
	}

	switch fd.Name {
	case "langcode":
		el.Type = form.TypeLanguageSelect
		el.DefaultValue = a.ActiveLangcode()
		el.Options = f.languageOptions()
		// The language of a translation is fixed once created.
		el.Access = boolPtr(settings.LanguageAlterable && a.IsDefaultTranslation())
	case "name":
		el.Type = form.TypeTextfield
		el.DefaultValue = a.Name()
	case "weight":
		el.Type = form.TypeNumber
		el.DefaultValue = a.Weight()
	case "uid":
		el.Type = form.TypeEntityAutocomplete
		el.Attributes = map[string]any{"target_type": fd.TargetType}
		for k, v := range fd.FormDisplay.Settings {
			el.Attributes[k] = v
		}
		if owner := a.Owner(); owner != nil {
			el.DefaultValue = fmt.Sprintf("%s (%d)", owner.DisplayName(), owner.ID)
		} else if uid, ok := a.OwnerID(); ok {
			el.DefaultValue = uid
		}
	case "created":
		el.Type = form.TypeDatetime
		if a.CreatedTime() != 0 {
			el.DefaultValue = f.Dates.Format(a.CreatedTime(), datetime.FormatCustom, datetime.MetadataPattern)
		}
	case "status":
		el.Type = form.TypeCheckbox
		el.DefaultValue = a.IsPublished()
	default:
		el.Type = form.TypeTextfield
	}
	return el
}

func (f *AttributeForm) languageOptions() map[string]string {
	options := make(map[string]string)
	for _, code := range f.Translator.Langcodes() {
		options[code] = f.Translator.LanguageName(code)
	}
	return options
}

func (f *AttributeForm) addActions(out *form.Form, a *models.Attribute, state *form.State) {
	out.AddAction(&form.Element{
		Key:    "submit",
		Type:   form.TypeSubmit,
		Value:  f.t("Save", nil).String(),
		Weight: 5,
	})

	if a.IsNew() {
		return
	}
	ok, err := f.Access.Access(state.Account, a, access.OpDelete)
	if err != nil || !ok {
		return
	}
	params := map[string]string{"attribute": a.EntityID()}
	if !a.IsDefaultTranslation() {
		params["langcode"] = a.ActiveLangcode()
	}
	u, err := routes.URL(routes.AttributeDeleteForm, params)
	if err != nil {
		return
	}
	out.AddAction(&form.Element{
		Key:    "delete",
		Type:   form.TypeLink,
		Title:  f.t("Delete", nil),
		URL:    u,
		Weight: 10,
	})
}

// Submit copies the submitted values into a, saves it and sets the
// redirect. Field errors are recorded on state and returned as a
// *service.ValidationError.
func (f *AttributeForm) Submit(ctx context.Context, a *models.Attribute, state *form.State) (service.SaveResult, error) {
	settings, err := f.Languages.Load(ctx, entity.TypeAttribute, a.Bundle())
	if err != nil {
		return 0, err
	}

	if err := f.copyFormValues(ctx, a, state, settings); err != nil {
		return 0, err
	}
	if f.translationEnabled(a, settings) {
		err := f.Translation.EntityFormEntityBuild(ctx, a, state)
		switch {
		case errors.Is(err, translation.ErrInvalidCreated):
			state.SetError("content_translation", f.t("You have to specify a valid translation authoring date.", nil).String())
		case err != nil:
			return 0, err
		}
	}
	if err := validationError(state); err != nil {
		return 0, err
	}

	insert := a.IsNew()
	result, err := f.Attributes.Save(ctx, a, accountID(state.Account))
	if err != nil {
		collectErrors(state, err)
		return 0, err
	}

	params := map[string]string{"attribute": a.EntityID()}
	viewLink := link(f.t("View", nil).String(), routes.AttributeCanonical, params)
	logArgs := i18n.Args{"@type": a.EntityTypeID(), "%title": a.EntityLabel()}
	args := i18n.Args{"@type": "Entity", "%title": link(a.EntityLabel(), routes.AttributeCanonical, params)}

	if insert {
		f.logger.Info(i18n.FormatPlain("@type: added %title.", logArgs), "link", string(viewLink))
		f.addStatus(ctx, state, f.t("@type %title has been created.", args))
	} else {
		f.logger.Info(i18n.FormatPlain("@type: updated %title.", logArgs), "link", string(viewLink))
		f.addStatus(ctx, state, f.t("@type %title has been updated.", args))
	}

	if err := state.SetRedirect(routes.AttributeView, nil); err != nil {
		return result, err
	}
	return result, nil
}

// copyFormValues applies the submitted widget values to the active
// translation. Values of hidden widgets are ignored.
func (f *AttributeForm) copyFormValues(ctx context.Context, a *models.Attribute, state *form.State, settings *models.ContentLanguageSettings) error {
	if state.HasValue("name") {
		a.SetName(state.String("name"))
	}

	if state.HasValue("weight") {
		if w, ok := state.Int("weight"); ok {
			a.SetWeight(int(w))
		} else {
			state.SetError("weight", f.t("%name must be a number.", i18n.Args{"%name": "Weight"}).String())
		}
	}

	if state.HasValue("status") {
		if state.Bool("status") {
			a.SetPublished()
		} else {
			a.SetUnpublished()
		}
	}

	if state.HasValue("uid") {
		if err := f.copyOwner(ctx, a, state); err != nil {
			return err
		}
	}

	if state.HasValue("created") {
		f.copyCreated(a, state)
	}

	if state.HasValue("langcode") && settings.LanguageAlterable && a.IsDefaultTranslation() {
		langcode := state.String("langcode")
		switch {
		case !f.Translator.IsConfigured(langcode):
			state.SetError("langcode", f.t("An illegal choice has been detected. Please contact the site administrator.", nil).String())
		case langcode != a.Langcode && !a.SetLangcode(langcode):
			state.SetError("langcode", f.t("The language of a saved attribute cannot be changed.", nil).String())
		}
	}
	return nil
}

// copyOwner resolves the submitted owner, given as an id, "name (id)" or
// a username, to an existing account.
func (f *AttributeForm) copyOwner(ctx context.Context, a *models.Attribute, state *form.State) error {
	input := state.String("uid")
	if input == "" {
		// Resolved to the fallback owner on save.
		a.Active().UID = nil
		a.Active().Owner = nil
		return nil
	}
	u, err := f.Users.Find(ctx, input)
	if errors.Is(err, service.ErrNotFound) {
		state.SetError("uid", f.t(`There are no users matching "%value".`, i18n.Args{"%value": input}).String())
		return nil
	}
	if err != nil {
		return err
	}
	a.SetOwnerID(u.ID)
	a.Active().Owner = u
	return nil
}

func (f *AttributeForm) copyCreated(a *models.Attribute, state *form.State) {
	if ts, ok := state.Int("created"); ok {
		a.SetCreatedTime(ts)
		return
	}
	value := state.String("created")
	if value == "" {
		a.SetCreatedTime(f.Dates.Now())
		return
	}
	for _, pattern := range []string{datetime.MetadataPattern, "Y-m-d H:i:s"} {
		if ts, err := f.Dates.Parse(value, pattern); err == nil {
			a.SetCreatedTime(ts)
			return
		}
	}
	state.SetError("created", f.t("The %field date is invalid. Please enter a date in the format %format.", i18n.Args{
		"%field":  "Authored on",
		"%format": f.Dates.Format(f.Dates.Now(), datetime.FormatCustom, datetime.MetadataPattern),
	}).String())
}
