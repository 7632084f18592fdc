package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/api/middleware"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/entityform"
	"github.com/nebari-dev/attributes/internal/form"
	"github.com/nebari-dev/attributes/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// handleServiceError maps service-layer errors to HTTP status codes.
func handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Fields: validationErr.Fields})
		return
	}
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflictErr.Message})
		return
	}
	slog.Error("unhandled service error", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// handleSubmitError responds to a failed form submission. Validation
// failures carry every error recorded on the form state.
func handleSubmitError(c *gin.Context, state *form.State, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) && state.HasErrors() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Fields: state.Errors()})
		return
	}
	handleServiceError(c, err)
}

// checkAccess writes the response for a denied or failed access check and
// reports whether the request may go on.
func checkAccess(c *gin.Context, ok bool, err error) bool {
	if err != nil {
		slog.Error("Access check failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return false
	}
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Access denied"})
		return false
	}
	return true
}

// interfaceLangcode negotiates the interface language from Accept-Language.
func interfaceLangcode(c *gin.Context, d entityform.Deps) string {
	return d.Translator.Negotiate(c.GetHeader("Accept-Language"))
}

// localized returns d with interface text in the negotiated language.
func localized(c *gin.Context, d entityform.Deps) entityform.Deps {
	return d.In(interfaceLangcode(c, d))
}

// newState starts a form state for the current account and recipient.
func newState(c *gin.Context, op, langcode string) *form.State {
	state := form.NewState(op, langcode, auth.CurrentUser(c))
	state.Recipient = middleware.GetRecipient(c)
	return state
}

// bindValues reads the submitted form values from a JSON object body.
func bindValues(c *gin.Context, state *form.State) bool {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	for k, v := range values {
		state.SetValue(k, v)
	}
	return true
}

// isSubmit reports whether the request submits the form rather than
// asking for it.
func isSubmit(c *gin.Context) bool {
	return c.Request.Method == http.MethodPost
}

func respondForm(c *gin.Context, f *form.Form) {
	c.JSON(http.StatusOK, entityform.Result{Form: f})
}

func respondRedirect(c *gin.Context, state *form.State) {
	c.JSON(http.StatusOK, entityform.Result{Redirect: state.Redirect()})
}

// parseID parses a numeric path parameter. Malformed ids are reported as
// not found.
func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// pageParams reads ?page= (zero based) and ?limit=.
func pageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	if page < 0 {
		page = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 || limit > 200 {
		limit = defaultLimit
	}
	return page, limit
}
