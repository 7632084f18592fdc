package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/audit"
	"github.com/nebari-dev/attributes/internal/auth"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/nebari-dev/attributes/internal/rbac"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db        *gorm.DB
	generator *permissions.Generator
}

func NewAdminHandler(db *gorm.DB, generator *permissions.Generator) *AdminHandler {
	return &AdminHandler{db: db, generator: generator}
}

// PermissionsResponse lists every permission and what each role holds.
type PermissionsResponse struct {
	Permissions []permissions.Permission `json:"permissions"`
	Roles       map[string][]string      `json:"roles"`
}

// PermissionRequest names a permission to grant or revoke.
type PermissionRequest struct {
	Permission string `json:"permission" binding:"required"`
}

// UserWithRoles is an account with the roles it holds.
type UserWithRoles struct {
	models.User
	Roles []string `json:"roles"`
}

// ListPermissions godoc
// @Summary List permissions and role grants (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} PermissionsResponse
// @Router /admin/people/permissions [get]
func (h *AdminHandler) ListPermissions(c *gin.Context) {
	all, err := h.generator.All(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	resp := PermissionsResponse{Roles: map[string][]string{}}
	for _, name := range all.Names() {
		resp.Permissions = append(resp.Permissions, all[name])
	}

	var roles []models.Role
	if err := h.db.Order("weight ASC").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch roles"})
		return
	}
	for _, role := range roles {
		perms, err := rbac.RolePermissions(role.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch role permissions"})
			return
		}
		resp.Roles[role.Name] = perms
	}

	c.JSON(http.StatusOK, resp)
}

// ListRoles godoc
// @Summary List roles (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Role
// @Router /admin/people/roles [get]
func (h *AdminHandler) ListRoles(c *gin.Context) {
	var roles []models.Role
	if err := h.db.Order("weight ASC").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch roles"})
		return
	}
	c.JSON(http.StatusOK, roles)
}

// resolveGrant checks the role and permission of a grant request.
func (h *AdminHandler) resolveGrant(c *gin.Context) (role string, req PermissionRequest, ok bool) {
	role = c.Param("role")
	var r models.Role
	if err := h.db.Where("name = ?", role).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Role not found"})
			return "", req, false
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch role"})
		return "", req, false
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return "", req, false
	}

	all, err := h.generator.All(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return "", req, false
	}
	if _, known := all[req.Permission]; !known {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Unknown permission %q", req.Permission)})
		return "", req, false
	}
	return role, req, true
}

// GrantPermission godoc
// @Summary Grant a permission to a role (admin only)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param role path string true "Role name"
// @Param permission body PermissionRequest true "Permission"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/people/roles/{role}/permissions [post]
func (h *AdminHandler) GrantPermission(c *gin.Context) {
	role, req, ok := h.resolveGrant(c)
	if !ok {
		return
	}
	if err := rbac.GrantPermission(role, req.Permission); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to grant permission"})
		return
	}

	audit.LogAction(h.db, auth.CurrentUser(c).ID, audit.ActionGrantPermission, "role:"+role, map[string]interface{}{
		"permission": req.Permission,
	})
	c.JSON(http.StatusOK, gin.H{"role": role, "permission": req.Permission})
}

// RevokePermission godoc
// @Summary Revoke a permission from a role (admin only)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param role path string true "Role name"
// @Param permission body PermissionRequest true "Permission"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/people/roles/{role}/permissions [delete]
func (h *AdminHandler) RevokePermission(c *gin.Context) {
	role, req, ok := h.resolveGrant(c)
	if !ok {
		return
	}
	if err := rbac.RevokePermission(role, req.Permission); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to revoke permission"})
		return
	}

	audit.LogAction(h.db, auth.CurrentUser(c).ID, audit.ActionRevokePermission, "role:"+role, map[string]interface{}{
		"permission": req.Permission,
	})
	c.Status(http.StatusNoContent)
}

// ListUsers godoc
// @Summary List all users with their roles (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} UserWithRoles
// @Router /admin/people [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("username ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch users"})
		return
	}

	result := make([]UserWithRoles, len(users))
	for i, user := range users {
		roles, err := rbac.GetUserRoles(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch roles"})
			return
		}
		result[i] = UserWithRoles{User: user, Roles: roles}
	}
	c.JSON(http.StatusOK, result)
}

// ListAuditLogs godoc
// @Summary List audit logs (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param action query string false "Filter by action"
// @Success 200 {array} models.AuditLog
// @Router /admin/reports/audit [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	query := h.db.Order("timestamp DESC").Limit(500)
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch audit logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
