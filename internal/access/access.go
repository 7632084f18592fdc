// Package access decides what an account may do with attributes and
// attribute types.
package access

import (
	"github.com/nebari-dev/attributes/internal/entity"
	"github.com/nebari-dev/attributes/internal/models"
	"github.com/nebari-dev/attributes/internal/permissions"
	"github.com/nebari-dev/attributes/internal/rbac"
)

// Entity operations.
const (
	OpView   = "view"
	OpUpdate = "update"
	OpDelete = "delete"
)

// PermissionChecker answers whether an account holds a permission.
type PermissionChecker interface {
	HasPermission(userID uint, permission string) (bool, error)
}

// RBAC checks permissions against the global casbin enforcer.
type RBAC struct{}

// HasPermission implements PermissionChecker.
func (RBAC) HasPermission(userID uint, permission string) (bool, error) {
	return rbac.HasPermission(userID, permission)
}

// Handler is the access control handler of attributes.
type Handler struct {
	perms PermissionChecker
}

// NewHandler creates an access handler.
func NewHandler(perms PermissionChecker) *Handler {
	return &Handler{perms: perms}
}

func accountID(account *models.User) uint {
	if account == nil {
		return models.AnonymousUserID
	}
	return account.ID
}

// anyOf reports whether the account holds any of the permissions.
func (h *Handler) anyOf(account *models.User, perms ...string) (bool, error) {
	for _, p := range perms {
		ok, err := h.perms.HasPermission(accountID(account), p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// HasPermission reports whether the account holds one permission.
func (h *Handler) HasPermission(account *models.User, permission string) (bool, error) {
	return h.anyOf(account, permission)
}

// CreateAccess reports whether the account may create attributes of bundle.
func (h *Handler) CreateAccess(account *models.User, bundle string) (bool, error) {
	return h.anyOf(account, entity.PermissionAdministerAttributes, permissions.CreatePermission(bundle))
}

// Access reports whether the account may perform op on the attribute.
// Ownership is checked against the active translation.
func (h *Handler) Access(account *models.User, a *models.Attribute, op string) (bool, error) {
	if ok, err := h.anyOf(account, entity.PermissionAdministerAttributes); err != nil || ok {
		return ok, err
	}

	ownerID, hasOwner := a.OwnerID()
	isOwner := hasOwner && ownerID == accountID(account)

	switch op {
	case OpView:
		if a.IsPublished() {
			return h.anyOf(account, entity.PermissionAccessContent)
		}
		return isOwner && accountID(account) != models.AnonymousUserID, nil
	case OpUpdate:
		if isOwner {
			return h.anyOf(account, permissions.EditAnyPermission(a.Type), permissions.EditOwnPermission(a.Type))
		}
		return h.anyOf(account, permissions.EditAnyPermission(a.Type))
	case OpDelete:
		if isOwner {
			return h.anyOf(account, permissions.DeleteAnyPermission(a.Type), permissions.DeleteOwnPermission(a.Type))
		}
		return h.anyOf(account, permissions.DeleteAnyPermission(a.Type))
	default:
		return false, nil
	}
}

// AttributeTypeAccess reports whether the account may manage bundles.
func (h *Handler) AttributeTypeAccess(account *models.User) (bool, error) {
	return h.anyOf(account, entity.PermissionAdministerSite)
}
