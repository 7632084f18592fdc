// Package entityform builds and submits the add, edit and delete forms of
// attributes and attribute types.
package entityform

import (
	"context"
	"errors"
	"html"
	"log/slog"

	"github.com/nebari-dev/attributes/internal/access"
	"github.com/nebari-dev/attributes/internal/config"
	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/logger"
	"github.com/nebari-dev/attributes/internal/messenger"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
	"github.com/nebari-dev/attributes/internal/service"
	"github.com/nebari-dev/attributes/internal/translation"
)

// Optional modules the forms react to.
const (
	ModuleLanguage           = "language"
	ModuleContentTranslation = "content_translation"
)

// Deps are the collaborators shared by every form in the package.
type Deps struct {
	Attributes  *service.AttributeService
	Types       *service.AttributeTypeService
	Languages   *service.LanguageSettingsService
	Users       *service.UserService
	Access      *access.Handler
	Translation *translation.Handler
	Messenger   messenger.Messenger
	Translator  *i18n.Translator
	Dates       *datetime.Formatter
	Fields      entity.FieldDefinitions
	Modules     config.ModulesConfig
	Logger      *slog.Logger
}

// In returns a copy of d producing interface text in langcode.
func (d Deps) In(langcode string) Deps {
	if d.Translator != nil {
		d.Translator = d.Translator.In(langcode)
	}
	if d.Translation != nil {
		d.Translation = d.Translation.In(langcode)
	}
	return d
}

func (d Deps) contentLogger() *slog.Logger {
	return logger.Channel(d.Logger, "content")
}

func (d Deps) t(src string, args i18n.Args) i18n.Markup {
	return d.Translator.T("", src, args)
}

// addStatus queues a status message for the submitting user. Delivery
// failures are logged, never returned: the submission itself succeeded.
func (d Deps) addStatus(ctx context.Context, state *form.State, text i18n.Markup) {
	if d.Messenger == nil || state.Recipient == "" {
		return
	}
	if err := messenger.AddStatus(ctx, d.Messenger, state.Recipient, text); err != nil {
		slog.Warn("Failed to queue status message", "recipient", state.Recipient, "error", err)
	}
}

// Result is what a form route responds with: the form to show, or the
// redirect a successful submission asks for.
type Result struct {
	Form     *form.Form        `json:"form,omitempty"`
	Redirect *routes.Redirect  `json:"redirect,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// accountID returns the id of the submitting account, anonymous when unset.
func accountID(account *models.User) uint {
	if account == nil {
		return models.AnonymousUserID
	}
	return account.ID
}

// validationError turns the errors collected on state into a service
// validation error.
func validationError(state *form.State) error {
	if !state.HasErrors() {
		return nil
	}
	return &service.ValidationError{Message: "The submitted values are invalid.", Fields: state.Errors()}
}

// collectErrors copies field errors returned by storage onto the state.
func collectErrors(state *form.State, err error) {
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	if len(ve.Fields) == 0 {
		state.SetError("", ve.Message)
		return
	}
	for field, msg := range ve.Fields {
		state.SetError(field, msg)
	}
}

// link renders an HTML link to an entity route.
func link(text, route string, params map[string]string) i18n.Markup {
	u, err := routes.URL(route, params)
	if err != nil {
		return i18n.Markup(html.EscapeString(text))
	}
	return i18n.Markup(`<a href="` + html.EscapeString(u) + `">` + html.EscapeString(text) + `</a>`)
}

func boolPtr(b bool) *bool { return &b }
