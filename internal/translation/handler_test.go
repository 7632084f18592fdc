package translation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nebari-dev/attributes/internal/datetime"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/service"
)

type userMap map[uint]*models.User

func (m userMap) Get(_ context.Context, id uint) (*models.User, error) {
	if id == models.AnonymousUserID {
		return models.AnonymousUser(), nil
	}
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, service.ErrNotFound
}

func newTestHandler(t *testing.T, fields entity.FieldDefinitions) *Handler {
	t.Helper()
	dates, err := datetime.NewFormatter("UTC")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}
	dates.SetClock(func() time.Time { return time.Unix(5000, 0) })
	tr, err := i18n.NewTranslator("en", []string{"en", "fr", "de"})
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	users := userMap{
		1: {ID: 1, Username: "admin"},
		4: {ID: 4, Username: "editor"},
	}
	return NewHandler(fields, dates, tr, users)
}

func savedAttribute(langcodes ...string) *models.Attribute {
	a := models.NewAttribute("color", langcodes[0], 1000)
	a.ID = 7
	a.SetName("Red")
	for _, l := range langcodes[1:] {
		a.AddTranslation(l, 1000)
	}
	return a
}

func formWithSubmit() *form.Form {
	f := form.New("attribute_color_edit_form")
	f.AddAction(&form.Element{Key: "submit", Type: form.TypeSubmit, Value: "Save", Weight: 5})
	f.AddAction(&form.Element{Key: "delete", Type: form.TypeLink, Title: "Delete", Weight: 10})
	return f
}

func TestEntityFormAlterSubmitLabel(t *testing.T) {
	tests := []struct {
		name         string
		attribute    func() *models.Attribute
		langcode     string
		statusFields func() entity.FieldDefinitions
		want         string
	}{
		{
			name:      "single translation edited in its language",
			attribute: func() *models.Attribute { return savedAttribute("en") },
			langcode:  "en",
			want:      "Save",
		},
		{
			name:      "several translations",
			attribute: func() *models.Attribute { return savedAttribute("en", "fr") },
			langcode:  "en",
			want:      "Save (this translation)",
		},
		{
			name:      "form language not yet translated",
			attribute: func() *models.Attribute { return savedAttribute("en") },
			langcode:  "fr",
			want:      "Save (this translation)",
		},
		{
			name:      "untranslatable status",
			attribute: func() *models.Attribute { return savedAttribute("en", "fr") },
			langcode:  "fr",
			statusFields: func() entity.FieldDefinitions {
				fields := entity.AttributeBaseFields().Clone()
				fields.Get("status").Translatable = false
				return fields
			},
			want: "Save (all translations)",
		},
		{
			name: "new entity",
			attribute: func() *models.Attribute {
				return models.NewAttribute("color", "en", 1000)
			},
			langcode: "fr",
			want:     "Save",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := entity.AttributeBaseFields()
			if tt.statusFields != nil {
				fields = tt.statusFields()
			}
			h := newTestHandler(t, fields)
			f := formWithSubmit()
			h.EntityFormAlter(f, form.NewState(form.OpEdit, tt.langcode, nil), tt.attribute())

			if got := f.Action("submit").Value; got != tt.want {
				t.Errorf("submit label = %q, want %q", got, tt.want)
			}
			if got := f.Action("delete").Title; got != "Delete" {
				t.Errorf("links must keep their label, got %q", got)
			}
		})
	}
}

func TestEntityFormAlterHidesMetadataFields(t *testing.T) {
	h := newTestHandler(t, entity.AttributeBaseFields())
	a := savedAttribute("en", "fr")
	f := formWithSubmit()

	h.EntityFormAlter(f, form.NewState(form.OpEdit, "fr", nil), a)

	el := f.Element(ElementKey)
	if el == nil {
		t.Fatal("expected translation element when several translations exist")
	}
	for _, key := range []string{"status", "name", "created"} {
		child := el.Child(key)
		if child == nil {
			t.Fatalf("missing child %s", key)
		}
		if child.Accessible() {
			t.Errorf("%s should be hidden", key)
		}
	}
	if !strings.Contains(string(f.Title), "[<em class=\"placeholder\">French</em> translation]") {
		t.Errorf("unexpected title %q", f.Title)
	}
}

func TestEntityFormAlterNewTranslationTitle(t *testing.T) {
	h := newTestHandler(t, entity.AttributeBaseFields())
	a := savedAttribute("en")
	a.AddTranslation("de", 1000)
	a.SetActiveLangcode("de")

	state := form.NewState(form.OpEdit, "de", &models.User{ID: 3})
	state.SourceLangcode = "en"
	f := formWithSubmit()
	h.EntityFormAlter(f, state, a)

	want := `Create <em class="placeholder">German</em> translation of <em class="placeholder">Red</em>`
	if string(f.Title) != want {
		t.Errorf("title = %q, want %q", f.Title, want)
	}
	if uid := f.Element(ElementKey).Child("name").DefaultValue; uid != uint(3) {
		t.Errorf("new translation should default to the current account, got %v", uid)
	}
}

func TestEntityFormAlterSingleTranslationHasNoElement(t *testing.T) {
	h := newTestHandler(t, entity.AttributeBaseFields())
	f := formWithSubmit()
	h.EntityFormAlter(f, form.NewState(form.OpEdit, "en", nil), savedAttribute("en"))

	if f.Element(ElementKey) != nil {
		t.Error("translation element added for an untranslated attribute")
	}
	if f.Title != "" {
		t.Errorf("title should be left alone, got %q", f.Title)
	}
}

func TestEntityFormEntityBuild(t *testing.T) {
	h := newTestHandler(t, entity.AttributeBaseFields())

	t.Run("copies translation metadata", func(t *testing.T) {
		a := savedAttribute("en")
		a.SetOwnerID(4)
		a.SetUnpublished()
		a.SetCreatedTime(86400)

		state := form.NewState(form.OpEdit, "en", nil)
		state.SetValue(ElementKey, map[string]any{"status": true, "uid": 9, "created": ""})
		if err := h.EntityFormEntityBuild(t.Context(), a, state); err != nil {
			t.Fatalf("build: %v", err)
		}

		values, _ := state.ValueMap(ElementKey)
		if values["status"] != false {
			t.Errorf("status = %v, want false", values["status"])
		}
		if values["uid"] != uint(4) {
			t.Errorf("uid = %v, want 4", values["uid"])
		}
		if values["created"] != "1970-01-02 00:00:00 +0000" {
			t.Errorf("created = %v", values["created"])
		}
		if uid, _ := a.OwnerID(); uid != 4 || a.IsPublished() || a.CreatedTime() != 86400 {
			t.Errorf("translation changed: uid=%d published=%v created=%d", uid, a.IsPublished(), a.CreatedTime())
		}
	})

	t.Run("unset owner becomes anonymous", func(t *testing.T) {
		a := savedAttribute("en")
		state := form.NewState(form.OpEdit, "en", nil)
		state.SetValue(ElementKey, map[string]any{})
		if err := h.EntityFormEntityBuild(t.Context(), a, state); err != nil {
			t.Fatalf("build: %v", err)
		}
		values, _ := state.ValueMap(ElementKey)
		if values["uid"] != models.AnonymousUserID {
			t.Errorf("uid = %v, want 0", values["uid"])
		}
		if uid, ok := a.OwnerID(); !ok || uid != models.AnonymousUserID {
			t.Errorf("owner = %d/%v, want anonymous", uid, ok)
		}
	})

	t.Run("dangling owner becomes anonymous", func(t *testing.T) {
		a := savedAttribute("en")
		a.SetOwnerID(99)
		state := form.NewState(form.OpEdit, "en", nil)
		state.SetValue(ElementKey, map[string]any{"uid": 99})
		if err := h.EntityFormEntityBuild(t.Context(), a, state); err != nil {
			t.Fatalf("build: %v", err)
		}
		values, _ := state.ValueMap(ElementKey)
		if values["uid"] != models.AnonymousUserID {
			t.Errorf("uid = %v, want 0", values["uid"])
		}
		if uid, ok := a.OwnerID(); !ok || uid != models.AnonymousUserID {
			t.Errorf("owner = %d/%v, want anonymous", uid, ok)
		}
	})

	t.Run("no metadata submitted", func(t *testing.T) {
		a := savedAttribute("en")
		state := form.NewState(form.OpEdit, "en", nil)
		if err := h.EntityFormEntityBuild(t.Context(), a, state); err != nil {
			t.Fatalf("build: %v", err)
		}
		if state.HasValue(ElementKey) {
			t.Error("metadata value created from nothing")
		}
		if _, ok := a.OwnerID(); ok {
			t.Error("owner set without metadata")
		}
	})
}

func TestApplyMetadataCreated(t *testing.T) {
	h := newTestHandler(t, entity.AttributeBaseFields())
	a := savedAttribute("en")

	if err := h.applyMetadata(a, map[string]any{"status": "1"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if a.CreatedTime() != 5000 {
		t.Errorf("blank created should use the current time, got %d", a.CreatedTime())
	}
	if err := h.applyMetadata(a, map[string]any{"created": "yesterday"}); !errors.Is(err, ErrInvalidCreated) {
		t.Errorf("err = %v, want ErrInvalidCreated", err)
	}
}

func TestEntityFormTitle(t *testing.T) {
	h := newTestHandler(t, entity.AttributeBaseFields())
	got := h.EntityFormTitle(savedAttribute("en"))
	if got != "<em>Edit color</em> Red" {
		t.Errorf("title = %q", got)
	}
}
