package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/access"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/controller"
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/entityform"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/listing"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/service"
)

// AttributeHandler serves attribute pages and forms. Forms are built per
// request so their text follows the negotiated interface language.
type AttributeHandler struct {
	deps       entityform.Deps
	controller *controller.AttributeController
}

func NewAttributeHandler(d entityform.Deps) *AttributeHandler {
	return &AttributeHandler{
		deps:       d,
		controller: controller.NewAttributeController(d.Types, d.Access),
	}
}

// AttributeResponse is an attribute with its active translation resolved.
type AttributeResponse struct {
	*models.Attribute
	ActiveLangcode string `json:"active_langcode"`
	Name           string `json:"name"`
	Published      bool   `json:"published"`
	OwnerID        *uint  `json:"owner_id"`
}

func newAttributeResponse(a *models.Attribute) AttributeResponse {
	resp := AttributeResponse{
		Attribute:      a,
		ActiveLangcode: a.ActiveLangcode(),
		Name:           a.Name(),
		Published:      a.IsPublished(),
	}
	if uid, ok := a.OwnerID(); ok {
		resp.OwnerID = &uid
	}
	return resp
}

func (h *AttributeHandler) interfaceLangcode(c *gin.Context) string {
	return interfaceLangcode(c, h.deps)
}

// loadAttribute loads the attribute of the :attribute parameter and
// activates the translation asked for with ?langcode=.
func (h *AttributeHandler) loadAttribute(c *gin.Context) (*models.Attribute, error) {
	id, err := parseID(c, "attribute")
	if err != nil {
		return nil, err
	}
	a, err := h.deps.Attributes.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if langcode := c.Query("langcode"); langcode != "" && !a.SetActiveLangcode(langcode) {
		return nil, service.ErrNotFound
	}
	return a, nil
}

// GetAttribute godoc
// @Summary Show an attribute
// @Tags attributes
// @Produce json
// @Param attribute path int true "Attribute ID"
// @Param langcode query string false "Translation to show"
// @Success 200 {object} AttributeResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attribute/{attribute} [get]
func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	a, err := h.loadAttribute(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok, err := h.deps.Access.Access(auth.CurrentUser(c), a, access.OpView)
	if !checkAccess(c, ok, err) {
		return
	}
	c.JSON(http.StatusOK, newAttributeResponse(a))
}

// AddPage godoc
// @Summary Choose the attribute type to create
// @Description Redirects straight to the add form when only one type may be used.
// @Tags attributes
// @Produce json
// @Success 200 {object} controller.Build
// @Success 302
// @Router /attribute/add [get]
func (h *AttributeHandler) AddPage(c *gin.Context) {
	result, err := h.controller.AddPage(c.Request.Context(), auth.CurrentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if result.Redirect != nil {
		c.Redirect(http.StatusFound, result.Redirect.URL)
		return
	}
	c.JSON(http.StatusOK, result.Build)
}

// AddForm godoc
// @Summary Build or submit the attribute add form
// @Tags attributes
// @Accept json
// @Produce json
// @Param attribute_type path string true "Attribute type"
// @Success 200 {object} entityform.Result
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attribute/add/{attribute_type} [get]
// @Router /attribute/add/{attribute_type} [post]
func (h *AttributeHandler) AddForm(c *gin.Context) {
	ctx := c.Request.Context()
	bundle, err := h.deps.Types.Get(ctx, c.Param("attribute_type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok, err := h.deps.Access.CreateAccess(auth.CurrentUser(c), bundle.ID)
	if !checkAccess(c, ok, err) {
		return
	}

	state := newState(c, form.OpAdd, h.interfaceLangcode(c))
	a, err := entityform.NewAttributeForm(localized(c, h.deps)).NewAttribute(ctx, bundle.ID, state)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	state.Langcode = a.ActiveLangcode()
	h.handleForm(c, a, state)
}

// EditForm godoc
// @Summary Build or submit the attribute edit form
// @Tags attributes
// @Accept json
// @Produce json
// @Param attribute path int true "Attribute ID"
// @Param langcode query string false "Translation to edit"
// @Success 200 {object} entityform.Result
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attribute/{attribute}/edit [get]
// @Router /attribute/{attribute}/edit [post]
func (h *AttributeHandler) EditForm(c *gin.Context) {
	a, err := h.loadAttribute(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok, err := h.deps.Access.Access(auth.CurrentUser(c), a, access.OpUpdate)
	if !checkAccess(c, ok, err) {
		return
	}
	h.handleForm(c, a, newState(c, form.OpEdit, a.ActiveLangcode()))
}

// TranslationAddForm godoc
// @Summary Build or submit the form adding a translation
// @Tags attributes
// @Accept json
// @Produce json
// @Param attribute path int true "Attribute ID"
// @Param source path string true "Source language"
// @Param target path string true "Target language"
// @Success 200 {object} entityform.Result
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attribute/{attribute}/translations/add/{source}/{target} [get]
// @Router /attribute/{attribute}/translations/add/{source}/{target} [post]
func (h *AttributeHandler) TranslationAddForm(c *gin.Context) {
	a, err := h.loadAttribute(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok, err := h.deps.Access.Access(auth.CurrentUser(c), a, access.OpUpdate)
	if !checkAccess(c, ok, err) {
		return
	}

	state := newState(c, form.OpEdit, a.ActiveLangcode())
	if err := entityform.NewAttributeForm(localized(c, h.deps)).PrepareTranslation(a, state, c.Param("source"), c.Param("target")); err != nil {
		handleServiceError(c, err)
		return
	}
	h.handleForm(c, a, state)
}

// handleForm builds the attribute form on GET and submits it on POST.
func (h *AttributeHandler) handleForm(c *gin.Context, a *models.Attribute, state *form.State) {
	ctx := c.Request.Context()
	af := entityform.NewAttributeForm(localized(c, h.deps))
	if isSubmit(c) {
		if !bindValues(c, state) {
			return
		}
		if _, err := af.Submit(ctx, a, state); err != nil {
			handleSubmitError(c, state, err)
			return
		}
		respondRedirect(c, state)
		return
	}

	f, err := af.Build(ctx, a, state)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondForm(c, f)
}

// DeleteForm godoc
// @Summary Confirm or perform deleting an attribute or one translation
// @Tags attributes
// @Produce json
// @Param attribute path int true "Attribute ID"
// @Param langcode query string false "Translation to delete"
// @Success 200 {object} entityform.Result
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attribute/{attribute}/delete [get]
// @Router /attribute/{attribute}/delete [post]
func (h *AttributeHandler) DeleteForm(c *gin.Context) {
	a, err := h.loadAttribute(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok, err := h.deps.Access.Access(auth.CurrentUser(c), a, access.OpDelete)
	if !checkAccess(c, ok, err) {
		return
	}

	df := entityform.NewAttributeDeleteForm(localized(c, h.deps))
	state := newState(c, form.OpDelete, a.ActiveLangcode())
	if isSubmit(c) {
		if err := df.Submit(c.Request.Context(), a, state); err != nil {
			handleSubmitError(c, state, err)
			return
		}
		respondRedirect(c, state)
		return
	}
	respondForm(c, df.Build(a, state))
}

// ListAttributes godoc
// @Summary Administrative list of attributes
// @Tags attributes
// @Security BearerAuth
// @Produce json
// @Param type query string false "Restrict to one attribute type"
// @Param page query int false "Zero based page"
// @Param limit query int false "Page size"
// @Success 200 {object} listing.Table
// @Failure 403 {object} ErrorResponse
// @Router /admin/content/attribute [get]
func (h *AttributeHandler) ListAttributes(c *gin.Context) {
	page, limit := pageParams(c, 50)
	opts := service.AttributeListOptions{
		Bundle: c.Query("type"),
		Limit:  limit,
		Offset: page * limit,
	}
	h.renderList(c, opts, page)
}

// ListPublished godoc
// @Summary Published attributes ordered by weight
// @Tags attributes
// @Produce json
// @Param page query int false "Zero based page"
// @Success 200 {object} listing.Table
// @Router /attributes [get]
func (h *AttributeHandler) ListPublished(c *gin.Context) {
	page, limit := pageParams(c, 10)
	published := true
	opts := service.AttributeListOptions{
		Published: &published,
		OrderBy:   "weight",
		Langcode:  c.Query("langcode"),
		Limit:     limit,
		Offset:    page * limit,
	}
	h.renderList(c, opts, page)
}

func (h *AttributeHandler) renderList(c *gin.Context, opts service.AttributeListOptions, page int) {
	ctx := c.Request.Context()
	attrs, total, err := h.deps.Attributes.List(ctx, opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	types, err := h.deps.Types.List(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	account := auth.CurrentUser(c)
	tr := h.deps.Translator.In(h.interfaceLangcode(c))
	builder := listing.NewAttributeListBuilder(h.entityAccess(account), h.deps.Dates, tr, types)
	table, err := builder.Render(attrs, &listing.Pager{Page: page, Limit: opts.Limit, Total: total})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// entityAccess adapts the access handler to list builder operations.
func (h *AttributeHandler) entityAccess(account *models.User) listing.AccessFunc {
	return accessFunc(h.deps.Access, account)
}

func accessFunc(handler *access.Handler, account *models.User) listing.AccessFunc {
	return func(e entity.Entity, op string) (bool, error) {
		switch v := e.(type) {
		case *models.Attribute:
			return handler.Access(account, v, op)
		case *models.AttributeType:
			return handler.AttributeTypeAccess(account)
		default:
			return false, nil
		}
	}
}
