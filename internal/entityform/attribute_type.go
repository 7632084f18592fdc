package entityform

import (
	"context"

	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
	"github.com/nebari-dev/attributes/internal/service"
)

// AttributeTypeForm is the add and edit form of attribute types.
type AttributeTypeForm struct {
	Deps
}

// NewAttributeTypeForm creates the attribute type form handler.
func NewAttributeTypeForm(d Deps) *AttributeTypeForm {
	return &AttributeTypeForm{Deps: d}
}

// Build returns the form for t.
func (f *AttributeTypeForm) Build(ctx context.Context, t *models.AttributeType, state *form.State) (*form.Form, error) {
	out := form.New("attribute_type_" + state.Operation + "_form")
	if t.IsNew() {
		out.Title = f.t("Add attribute type", nil)
	} else {
		out.Title = f.t("Edit %label", i18n.Args{"%label": t.Label})
	}

	out.Add(&form.Element{
		Key:          "label",
		Type:         form.TypeTextfield,
		Title:        f.t("Label", nil),
		MaxLength:    255,
		DefaultValue: t.Label,
		Description:  f.t("Label for the %content_entity_id entity type (bundle).", i18n.Args{"%content_entity_id": entity.AttributeTypeEntityType.BundleOf}),
		Required:     true,
	})

	out.Add(&form.Element{
		Key:          "description",
		Type:         form.TypeTextarea,
		Title:        f.t("Description", nil),
		DefaultValue: t.Description,
		Description:  f.t("This text will be displayed on the <em>Add new attribute</em>.", nil),
	})

	out.Add(&form.Element{
		Key:          "id",
		Type:         form.TypeMachineName,
		Title:        f.t("Machine-readable name", nil),
		DefaultValue: t.ID,
		MaxLength:    entity.BundleMaxLength,
		Required:     true,
		Disabled:     !t.IsNew(),
		Attributes: map[string]any{
			"source": "label",
			"exists": entity.TypeAttributeType,
		},
	})
	if !t.IsNew() {
		out.Element("id").Description = f.t("A unique machine-readable name for this attribute type. It cannot be changed once saved.", nil)
	}

	if f.Modules.Exists(ModuleLanguage) {
		settings, err := f.Languages.Load(ctx, entity.TypeAttribute, t.ID)
		if err != nil {
			return nil, err
		}
		details := out.Add(&form.Element{
			Key:   "language",
			Type:  form.TypeDetails,
			Title: f.t("Language settings", nil),
			Group: "additional_settings",
		})
		details.AddChild(f.languageConfiguration(t, settings))
	}

	out.AddAction(&form.Element{
		Key:    "submit",
		Type:   form.TypeSubmit,
		Value:  f.t("Save attribute type", nil).String(),
		Weight: 5,
	})
	if !t.IsNew() {
		if ok, err := f.Access.AttributeTypeAccess(state.Account); err == nil && ok {
			out.AddAction(&form.Element{
				Key:    "delete",
				Type:   form.TypeLink,
				Title:  f.t("Delete", nil),
				URL:    routes.MustURL(routes.AttributeTypeDeleteForm, map[string]string{"attribute_type": t.ID}),
				Weight: 10,
			})
		}
	}

	out.Sort()
	return out, nil
}

func (f *AttributeTypeForm) languageConfiguration(t *models.AttributeType, settings *models.ContentLanguageSettings) *form.Element {
	el := &form.Element{
		Key:  "language_configuration",
		Type: form.TypeLanguageConfiguration,
		Attributes: map[string]any{
			"entity_type": entity.TypeAttribute,
			"bundle":      t.ID,
		},
		DefaultValue: settings,
	}

	options := map[string]string{
		models.LangcodeSiteDefault:      f.t("Site's default language (@language)", i18n.Args{"@language": f.Translator.LanguageName(f.Translator.DefaultLangcode())}).String(),
		models.LangcodeCurrentInterface: f.t("Interface text language selected for page", nil).String(),
		models.LangcodeAuthorsDefault:   f.t("Author's preferred language", nil).String(),
	}
	for _, code := range f.Translator.Langcodes() {
		options[code] = f.Translator.LanguageName(code)
	}

	el.AddChild(&form.Element{
		Key:          "langcode",
		Type:         form.TypeSelect,
		Title:        f.t("Default language", nil),
		Options:      options,
		DefaultValue: settings.DefaultLangcode,
		Description:  f.t("Explanation of the language options is found on the <a href=\":languages_list_page\">languages list page</a>.", i18n.Args{":languages_list_page": "/admin/config/regional/language"}),
	})
	el.AddChild(&form.Element{
		Key:          "language_alterable",
		Type:         form.TypeCheckbox,
		Title:        f.t("Show language selector on create and edit pages", nil),
		DefaultValue: settings.LanguageAlterable,
	})
	if f.Modules.Exists(ModuleContentTranslation) {
		el.AddChild(&form.Element{
			Key:          "content_translation",
			Type:         form.TypeCheckbox,
			Title:        f.t("Enable translation", nil),
			DefaultValue: settings.TranslationEnabled,
		})
	}
	return el
}

// Submit copies the submitted values into t, saves it with its language
// settings and redirects to the collection.
func (f *AttributeTypeForm) Submit(ctx context.Context, t *models.AttributeType, state *form.State) (service.SaveResult, error) {
	if state.HasValue("label") {
		t.Label = state.String("label")
	}
	if state.HasValue("description") {
		t.Description = state.String("description")
	}
	if t.IsNew() && state.HasValue("id") {
		t.ID = state.String("id")
	}
	if t.IsNew() {
		if err := service.ValidateMachineName(t.ID); err != nil {
			collectErrors(state, err)
		}
	}

	langValues, hasLanguage := state.ValueMap("language_configuration")
	if hasLanguage && f.Modules.Exists(ModuleLanguage) {
		if langcode, ok := langValues["langcode"].(string); ok && !f.validDefaultLangcode(langcode) {
			state.SetError("language_configuration", f.t("An illegal choice has been detected. Please contact the site administrator.", nil).String())
		}
	}
	if err := validationError(state); err != nil {
		return 0, err
	}

	status, err := f.Types.Save(ctx, t, accountID(state.Account))
	if err != nil {
		collectErrors(state, err)
		return 0, err
	}

	if hasLanguage && f.Modules.Exists(ModuleLanguage) {
		if err := f.saveLanguageConfiguration(ctx, t, langValues, state); err != nil {
			return status, err
		}
	}

	args := i18n.Args{
		"%label":             t.Label,
		"%content_entity_id": entity.AttributeTypeEntityType.BundleOf,
	}
	switch status {
	case service.SavedNew:
		f.addStatus(ctx, state, f.t("Created the %label %content_entity_id bundle.", args))
	default:
		f.addStatus(ctx, state, f.t("Saved the %label %content_entity_id bundle.", args))
	}

	if err := state.SetRedirect(routes.AttributeTypeCollection, nil); err != nil {
		return status, err
	}
	return status, nil
}

func (f *AttributeTypeForm) validDefaultLangcode(langcode string) bool {
	switch langcode {
	case models.LangcodeSiteDefault, models.LangcodeCurrentInterface, models.LangcodeAuthorsDefault:
		return true
	}
	return f.Translator.IsConfigured(langcode)
}

func (f *AttributeTypeForm) saveLanguageConfiguration(ctx context.Context, t *models.AttributeType, values map[string]any, state *form.State) error {
	settings, err := f.Languages.Load(ctx, entity.TypeAttribute, t.ID)
	if err != nil {
		return err
	}
	if langcode, ok := values["langcode"].(string); ok && langcode != "" {
		settings.DefaultLangcode = langcode
	}
	if v, ok := values["language_alterable"]; ok {
		settings.LanguageAlterable = form.ToBool(v)
	}
	if v, ok := values["content_translation"]; ok && f.Modules.Exists(ModuleContentTranslation) {
		settings.TranslationEnabled = form.ToBool(v)
	}
	return f.Languages.Save(ctx, settings, accountID(state.Account))
}
