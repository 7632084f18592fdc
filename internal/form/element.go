// Package form holds the structures forms are rendered to and the state a
// submission is processed with.
package form

import (
	"sort"

	"github.com/nebari-dev/attributes/internal/i18n"
)

// Element types.
const (
	TypeTextfield             = "textfield"
	TypeTextarea              = "textarea"
	TypeMachineName           = "machine_name"
	TypeHidden                = "hidden"
	TypeCheckbox              = "checkbox"
	TypeNumber                = "number"
	TypeSelect                = "select"
	TypeDetails               = "details"
	TypeDatetime              = "datetime"
	TypeEntityAutocomplete    = "entity_autocomplete"
	TypeLanguageSelect        = "language_select"
	TypeLanguageConfiguration = "language_configuration"
	TypeSubmit                = "submit"
	TypeLink                  = "link"
	TypeMarkup                = "markup"
	TypeContainer             = "container"
)

// Element is one form control or grouping.
type Element struct {
	Key          string            `json:"key"`
	Type         string            `json:"type"`
	Title        i18n.Markup       `json:"title,omitempty"`
	Description  i18n.Markup       `json:"description,omitempty"`
	DefaultValue any               `json:"default_value,omitempty"`
	Value        any               `json:"value,omitempty"`
	Required     bool              `json:"required,omitempty"`
	MaxLength    int               `json:"maxlength,omitempty"`
	Disabled     bool              `json:"disabled,omitempty"`
	Access       *bool             `json:"access,omitempty"`
	Group        string            `json:"group,omitempty"`
	Weight       int               `json:"weight"`
	Open         bool              `json:"open,omitempty"`
	Optional     bool              `json:"optional,omitempty"`
	URL          string            `json:"url,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
	Attributes   map[string]any    `json:"attributes,omitempty"`
	Children     []*Element        `json:"children,omitempty"`
}

// Accessible reports whether the element is shown. Elements are accessible
// unless access was denied explicitly.
func (e *Element) Accessible() bool {
	return e.Access == nil || *e.Access
}

// DenyAccess hides the element.
func (e *Element) DenyAccess() {
	denied := false
	e.Access = &denied
}

// Child returns the direct child with key, or nil.
func (e *Element) Child(key string) *Element {
	for _, c := range e.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// AddChild appends a child element.
func (e *Element) AddChild(c *Element) {
	e.Children = append(e.Children, c)
}

// find searches elements depth first.
func find(elements []*Element, key string) *Element {
	for _, e := range elements {
		if e.Key == key {
			return e
		}
		if found := find(e.Children, key); found != nil {
			return found
		}
	}
	return nil
}

// sortByWeight orders elements by weight, keeping insertion order for ties.
func sortByWeight(elements []*Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Weight < elements[j].Weight
	})
	for _, e := range elements {
		sortByWeight(e.Children)
	}
}
