// Package controller holds the attribute add page: the choice of attribute
// type to create content with.
package controller

import (
	"context"

	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/routes"
)

// AddListTheme names the template of the type choice list.
const AddListTheme = "attribute_add_list"

// TypeLister loads every attribute type.
type TypeLister interface {
	ListAttributeTypes(ctx context.Context) ([]models.AttributeType, error)
}

// CreateAccessChecker decides whether an account may create attributes of
// a bundle.
type CreateAccessChecker interface {
	CreateAccess(account *models.User, bundle string) (bool, error)
}

// AddListItem is one type offered on the add page.
type AddListItem struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	Label       string `json:"label"`
	Description string `json:"description"`
	AddLink     string `json:"add_link"`
}

// Cache carries the cache metadata of a build.
type Cache struct {
	Tags []string `json:"tags"`
}

// Build is the rendered add page.
type Build struct {
	Theme   string        `json:"theme"`
	Cache   Cache         `json:"cache"`
	Content []AddListItem `json:"content"`
}

// AddPageResult is either a redirect or a build.
type AddPageResult struct {
	Redirect *routes.Redirect `json:"redirect,omitempty"`
	Build    *Build           `json:"build,omitempty"`
}

// AttributeController serves the attribute add page.
type AttributeController struct {
	types  TypeLister
	access CreateAccessChecker
}

// NewAttributeController creates the controller.
func NewAttributeController(types TypeLister, access CreateAccessChecker) *AttributeController {
	return &AttributeController{types: types, access: access}
}

// AddPage lists the types the account may create attributes of. When
// exactly one qualifies the account is sent straight to its add form.
func (c *AttributeController) AddPage(ctx context.Context, account *models.User) (*AddPageResult, error) {
	types, err := c.types.ListAttributeTypes(ctx)
	if err != nil {
		return nil, err
	}
	models.SortAttributeTypes(types)

	content := []AddListItem{}
	for _, t := range types {
		ok, err := c.access.CreateAccess(account, t.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		u, err := routes.URL(routes.AttributeAdd, map[string]string{"attribute_type": t.ID})
		if err != nil {
			return nil, err
		}
		content = append(content, AddListItem{
			ID:          t.ID,
			UUID:        t.UUID,
			Label:       t.Label,
			Description: t.Description,
			AddLink:     u,
		})
	}

	if len(content) == 1 {
		r, err := routes.NewRedirect(routes.AttributeAdd, map[string]string{"attribute_type": content[0].ID})
		if err != nil {
			return nil, err
		}
		return &AddPageResult{Redirect: r}, nil
	}

	return &AddPageResult{Build: &Build{
		Theme:   AddListTheme,
		Cache:   Cache{Tags: []string{"config:attribute_type_list"}},
		Content: content,
	}}, nil
}
