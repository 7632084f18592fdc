package entityform

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/nebari-dev/attributes/internal/rbac"
	"github.com/nebari-dev/attributes/internal/routes"
	"github.com/nebari-dev/attributes/internal/service"
)

// AttributeDeleteForm confirms deleting an attribute, or only its active
// translation when that is not the default one.
type AttributeDeleteForm struct {
	Deps
	logger *slog.Logger
}

// NewAttributeDeleteForm creates the attribute delete form handler.
func NewAttributeDeleteForm(d Deps) *AttributeDeleteForm {
	return &AttributeDeleteForm{Deps: d, logger: d.contentLogger()}
}

func (f *AttributeDeleteForm) args(a *models.Attribute) i18n.Args {
	return i18n.Args{
		"@entity-type": strings.ToLower(entity.AttributeEntityType.Label),
		"%label":       a.EntityLabel(),
		"@language":    f.Translator.LanguageName(a.ActiveLangcode()),
	}
}

// Build returns the confirmation form.
func (f *AttributeDeleteForm) Build(a *models.Attribute, state *form.State) *form.Form {
	out := form.New("attribute_" + a.Bundle() + "_delete_form")
	if a.IsDefaultTranslation() {
		out.Title = f.t("Are you sure you want to delete the @entity-type %label?", f.args(a))
	} else {
		out.Title = f.t("Are you sure you want to delete the @language translation of the @entity-type %label?", f.args(a))
	}
	out.Add(&form.Element{
		Key:   "description",
		Type:  form.TypeMarkup,
		Title: f.t("This action cannot be undone.", nil),
	})

	out.AddAction(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: f.t("Delete", nil).String(), Weight: 5})
	out.AddAction(&form.Element{
		Key:    "cancel",
		Type:   form.TypeLink,
		Title:  f.t("Cancel", nil),
		URL:    routes.MustURL(routes.AttributeCanonical, map[string]string{"attribute": a.EntityID()}),
		Weight: 10,
	})
	return out
}

// Submit deletes the attribute or its active translation.
func (f *AttributeDeleteForm) Submit(ctx context.Context, a *models.Attribute, state *form.State) error {
	args := f.args(a)
	actor := accountID(state.Account)

	if !a.IsDefaultTranslation() {
		langcode := a.ActiveLangcode()
		if err := f.Attributes.DeleteTranslation(ctx, a, langcode, actor); err != nil {
			return err
		}
		msg := f.t("The @entity-type %label @language translation has been deleted.", args)
		f.logger.Info(i18n.FormatPlain("The @entity-type %label @language translation has been deleted.", args))
		f.addStatus(ctx, state, msg)
		return state.SetRedirect(routes.AttributeCanonical, map[string]string{"attribute": a.EntityID()})
	}

	if err := f.Attributes.Delete(ctx, a, actor); err != nil {
		return err
	}
	f.logger.Info(i18n.FormatPlain("@entity-type: deleted %label.", args))
	f.addStatus(ctx, state, f.t("The @entity-type %label has been deleted.", args))
	return state.SetRedirect(routes.AttributeCollection, nil)
}

// AttributeTypeDeleteForm confirms deleting an attribute type. Types still
// in use cannot be deleted and get no submit button.
type AttributeTypeDeleteForm struct {
	Deps
}

// NewAttributeTypeDeleteForm creates the attribute type delete form handler.
func NewAttributeTypeDeleteForm(d Deps) *AttributeTypeDeleteForm {
	return &AttributeTypeDeleteForm{Deps: d}
}

func (f *AttributeTypeDeleteForm) args(t *models.AttributeType) i18n.Args {
	return i18n.Args{
		"@entity-type": strings.ToLower(entity.AttributeTypeEntityType.Label),
		"%label":       t.Label,
	}
}

// Build returns the confirmation form, listing the roles that will lose
// the type's permissions.
func (f *AttributeTypeDeleteForm) Build(ctx context.Context, t *models.AttributeType, state *form.State) (*form.Form, error) {
	out := form.New("attribute_type_delete_form")
	out.Title = f.t("Are you sure you want to delete the @entity-type %label?", f.args(t))

	cancel := &form.Element{
		Key:    "cancel",
		Type:   form.TypeLink,
		Title:  f.t("Cancel", nil),
		URL:    routes.MustURL(routes.AttributeTypeCollection, nil),
		Weight: 10,
	}

	count, err := f.Attributes.CountByBundle(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		out.Add(&form.Element{
			Key:   "description",
			Type:  form.TypeMarkup,
			Title: i18n.Format("@message", i18n.Args{"@message": service.InUseMessage(t.Label, count)}),
		})
		out.AddAction(cancel)
		return out, nil
	}

	roles := map[string]bool{}
	for _, perm := range permissions.BundlePermissionNames(t.ID) {
		granted, err := rbac.RolesWithPermission(perm)
		if err != nil {
			return nil, err
		}
		for _, role := range granted {
			roles[role] = true
		}
	}
	if len(roles) > 0 {
		updates := &form.Element{
			Key:         "entity_updates",
			Type:        form.TypeDetails,
			Title:       f.t("Configuration updates", nil),
			Description: f.t("The listed configuration will be updated.", nil),
			Open:        true,
		}
		for _, role := range sortedKeys(roles) {
			updates.AddChild(&form.Element{Key: role, Type: form.TypeMarkup, Title: i18n.Format("@role", i18n.Args{"@role": role})})
		}
		out.Add(updates)
	}

	out.Add(&form.Element{
		Key:    "description",
		Type:   form.TypeMarkup,
		Title:  f.t("This action cannot be undone.", nil),
		Weight: 10,
	})
	out.AddAction(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: f.t("Delete", nil).String(), Weight: 5})
	out.AddAction(cancel)
	return out, nil
}

// Submit deletes the attribute type.
func (f *AttributeTypeDeleteForm) Submit(ctx context.Context, t *models.AttributeType, state *form.State) error {
	if err := f.Types.Delete(ctx, t, accountID(state.Account)); err != nil {
		return err
	}
	f.contentLogger().Info(i18n.FormatPlain("@entity-type: deleted %label.", f.args(t)))
	f.addStatus(ctx, state, f.t("The @entity-type %label has been deleted.", f.args(t)))
	return state.SetRedirect(routes.AttributeTypeCollection, nil)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
