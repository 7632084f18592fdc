package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/entityform"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/listing"
	"github.com/nebari-dev/attributes/internal/models"
)

// AttributeTypeHandler serves the attribute type administration. Every
// route sits behind middleware.RequireAttributeTypeAdmin.
type AttributeTypeHandler struct {
	deps entityform.Deps
}

func NewAttributeTypeHandler(d entityform.Deps) *AttributeTypeHandler {
	return &AttributeTypeHandler{deps: d}
}

// AttributeTypeResponse is a bundle with its language settings.
type AttributeTypeResponse struct {
	*models.AttributeType
	Language *models.ContentLanguageSettings `json:"language,omitempty"`
}

// ListAttributeTypes godoc
// @Summary List attribute types
// @Tags attribute_types
// @Security BearerAuth
// @Produce json
// @Success 200 {object} listing.Table
// @Failure 403 {object} ErrorResponse
// @Router /admin/structure/attribute_type [get]
func (h *AttributeTypeHandler) ListAttributeTypes(c *gin.Context) {
	types, err := h.deps.Types.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	tr := h.deps.Translator.In(interfaceLangcode(c, h.deps))
	builder := listing.NewAttributeTypeListBuilder(accessFunc(h.deps.Access, auth.CurrentUser(c)), tr)
	table, err := builder.Render(types)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// GetAttributeType godoc
// @Summary Show an attribute type
// @Tags attribute_types
// @Security BearerAuth
// @Produce json
// @Param attribute_type path string true "Attribute type machine name"
// @Success 200 {object} AttributeTypeResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/structure/attribute_type/{attribute_type} [get]
func (h *AttributeTypeHandler) GetAttributeType(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.deps.Types.Get(ctx, c.Param("attribute_type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	settings, err := h.deps.Languages.Load(ctx, entity.TypeAttribute, t.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AttributeTypeResponse{AttributeType: t, Language: settings})
}

// AddForm godoc
// @Summary Build or submit the attribute type add form
// @Tags attribute_types
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} entityform.Result
// @Failure 400 {object} ErrorResponse
// @Router /admin/structure/attribute_type/add [get]
// @Router /admin/structure/attribute_type/add [post]
func (h *AttributeTypeHandler) AddForm(c *gin.Context) {
	h.handleForm(c, models.NewAttributeType("", "", ""), newState(c, form.OpAdd, ""))
}

// EditForm godoc
// @Summary Build or submit the attribute type edit form
// @Tags attribute_types
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param attribute_type path string true "Attribute type machine name"
// @Success 200 {object} entityform.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/structure/attribute_type/{attribute_type}/edit [get]
// @Router /admin/structure/attribute_type/{attribute_type}/edit [post]
func (h *AttributeTypeHandler) EditForm(c *gin.Context) {
	t, err := h.deps.Types.Get(c.Request.Context(), c.Param("attribute_type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	h.handleForm(c, t, newState(c, form.OpEdit, ""))
}

func (h *AttributeTypeHandler) handleForm(c *gin.Context, t *models.AttributeType, state *form.State) {
	ctx := c.Request.Context()
	tf := entityform.NewAttributeTypeForm(localized(c, h.deps))
	if isSubmit(c) {
		if !bindValues(c, state) {
			return
		}
		if _, err := tf.Submit(ctx, t, state); err != nil {
			handleSubmitError(c, state, err)
			return
		}
		respondRedirect(c, state)
		return
	}

	f, err := tf.Build(ctx, t, state)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondForm(c, f)
}

// DeleteForm godoc
// @Summary Confirm or perform deleting an attribute type
// @Description Types still used by attributes cannot be deleted.
// @Tags attribute_types
// @Security BearerAuth
// @Produce json
// @Param attribute_type path string true "Attribute type machine name"
// @Success 200 {object} entityform.Result
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/structure/attribute_type/{attribute_type}/delete [get]
// @Router /admin/structure/attribute_type/{attribute_type}/delete [post]
func (h *AttributeTypeHandler) DeleteForm(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.deps.Types.Get(ctx, c.Param("attribute_type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	df := entityform.NewAttributeTypeDeleteForm(localized(c, h.deps))
	state := newState(c, form.OpDelete, "")
	if isSubmit(c) {
		if err := df.Submit(ctx, t, state); err != nil {
			handleSubmitError(c, state, err)
			return
		}
		respondRedirect(c, state)
		return
	}

	f, err := df.Build(ctx, t, state)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondForm(c, f)
}
