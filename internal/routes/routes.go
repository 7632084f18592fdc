// Package routes names every path the service exposes and builds URLs
// from route names and parameters.
package routes

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Route names.
const (
	AttributeCanonical      = "entity.attribute.canonical"
	AttributeAddPage        = "entity.attribute.add_page"
	AttributeAddForm        = "entity.attribute.add_form"
	AttributeAdd            = "attribute.add"
	AttributeEditForm       = "entity.attribute.edit_form"
	AttributeDeleteForm     = "entity.attribute.delete_form"
	AttributeCollection     = "entity.attribute.collection"
	AttributeTranslationAdd = "entity.attribute.content_translation_add"

	AttributeTypeCanonical  = "entity.attribute_type.canonical"
	AttributeTypeAddForm    = "entity.attribute_type.add_form"
	AttributeTypeAdd        = "attribute.attribute_type_add"
	AttributeTypeEditForm   = "entity.attribute_type.edit_form"
	AttributeTypeDeleteForm = "entity.attribute_type.delete_form"
	AttributeTypeCollection = "entity.attribute_type.collection"

	// AttributeView is the public listing of published attributes.
	AttributeView = "view.attribute.page_1"
)

var patterns = map[string]string{
	AttributeCanonical:      "/attribute/{attribute}",
	AttributeAddPage:        "/attribute/add",
	AttributeAddForm:        "/attribute/add/{attribute_type}",
	AttributeAdd:            "/attribute/add/{attribute_type}",
	AttributeEditForm:       "/attribute/{attribute}/edit",
	AttributeDeleteForm:     "/attribute/{attribute}/delete",
	AttributeCollection:     "/admin/content/attribute",
	AttributeTranslationAdd: "/attribute/{attribute}/translations/add/{source}/{target}",

	AttributeTypeCanonical:  "/admin/structure/attribute_type/{attribute_type}",
	AttributeTypeAddForm:    "/admin/structure/attribute_type/add",
	AttributeTypeAdd:        "/admin/structure/attribute_type/add",
	AttributeTypeEditForm:   "/admin/structure/attribute_type/{attribute_type}/edit",
	AttributeTypeDeleteForm: "/admin/structure/attribute_type/{attribute_type}/delete",
	AttributeTypeCollection: "/admin/structure/attribute_type",

	AttributeView: "/attributes",
}

// Pattern returns the raw path pattern for a route name.
func Pattern(name string) (string, bool) {
	p, ok := patterns[name]
	return p, ok
}

// GinPath returns the pattern with {param} rewritten to gin's :param form.
func GinPath(name string) string {
	p, ok := patterns[name]
	if !ok {
		panic(fmt.Sprintf("routes: unknown route %q", name))
	}
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = ":" + seg[1:len(seg)-1]
		}
	}
	return strings.Join(segments, "/")
}

// URL builds the path for a route. Parameters not consumed by the pattern
// are appended as a query string.
func URL(name string, params map[string]string) (string, error) {
	p, ok := patterns[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}

	used := make(map[string]bool, len(params))
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		key := seg[1 : len(seg)-1]
		value, ok := params[key]
		if !ok || value == "" {
			return "", fmt.Errorf("route %q: missing parameter %q", name, key)
		}
		segments[i] = url.PathEscape(value)
		used[key] = true
	}
	path := strings.Join(segments, "/")

	var extra []string
	for k := range params {
		if !used[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return path, nil
	}
	sort.Strings(extra)
	q := url.Values{}
	for _, k := range extra {
		q.Set(k, params[k])
	}
	return path + "?" + q.Encode(), nil
}

// MustURL is URL for callers that pass statically known parameters.
func MustURL(name string, params map[string]string) string {
	u, err := URL(name, params)
	if err != nil {
		panic(err)
	}
	return u
}

// Redirect points at a route (with parameters) or at a literal URL.
type Redirect struct {
	Route  string            `json:"route,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	URL    string            `json:"url"`
}

// NewRedirect resolves a route redirect.
func NewRedirect(name string, params map[string]string) (*Redirect, error) {
	u, err := URL(name, params)
	if err != nil {
		return nil, err
	}
	return &Redirect{Route: name, Params: params, URL: u}, nil
}
