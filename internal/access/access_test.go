package access

import (
	"testing"

	"github.com/nebari-dev/attributes/internal/models"
)

type stubPerms map[uint][]string

func (s stubPerms) HasPermission(userID uint, permission string) (bool, error) {
	for _, p := range s[userID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func ownedAttribute(owner uint) *models.Attribute {
	a := models.NewAttribute("color", "en", 0)
	a.SetOwnerID(owner)
	return a
}

func TestAccess(t *testing.T) {
	perms := stubPerms{
		1: {"administer attributes"},
		2: {"edit own color attribute", "delete any color attribute", "access content"},
		3: {"edit any color attribute"},
		0: {"edit own color attribute"},
	}
	h := NewHandler(perms)

	tests := []struct {
		name    string
		account *models.User
		attr    *models.Attribute
		op      string
		want    bool
	}{
		{"admin edits anything", &models.User{ID: 1}, ownedAttribute(5), OpUpdate, true},
		{"owner edits own", &models.User{ID: 2}, ownedAttribute(2), OpUpdate, true},
		{"edit own does not reach others", &models.User{ID: 2}, ownedAttribute(5), OpUpdate, false},
		{"edit any reaches others", &models.User{ID: 3}, ownedAttribute(5), OpUpdate, true},
		{"delete any", &models.User{ID: 2}, ownedAttribute(5), OpDelete, true},
		{"no delete permission", &models.User{ID: 3}, ownedAttribute(3), OpDelete, false},
		{"anonymous edits anonymous content", nil, ownedAttribute(0), OpUpdate, true},
		{"published needs access content", &models.User{ID: 3}, ownedAttribute(5), OpView, false},
		{"published viewable", &models.User{ID: 2}, ownedAttribute(5), OpView, true},
		{"unknown op", &models.User{ID: 2}, ownedAttribute(2), "publish", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Access(tt.account, tt.attr, tt.op)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnpublishedVisibleToOwnerOnly(t *testing.T) {
	h := NewHandler(stubPerms{2: {"access content"}, 4: {"access content"}})
	a := ownedAttribute(4)
	a.SetUnpublished()

	if ok, _ := h.Access(&models.User{ID: 4}, a, OpView); !ok {
		t.Error("owner should see own unpublished attribute")
	}
	if ok, _ := h.Access(&models.User{ID: 2}, a, OpView); ok {
		t.Error("unpublished attribute visible to another user")
	}
}

func TestCreateAccess(t *testing.T) {
	h := NewHandler(stubPerms{2: {"create color attribute"}, 1: {"administer attributes"}})

	if ok, _ := h.CreateAccess(&models.User{ID: 2}, "color"); !ok {
		t.Error("expected create access for color")
	}
	if ok, _ := h.CreateAccess(&models.User{ID: 2}, "size"); ok {
		t.Error("unexpected create access for size")
	}
	if ok, _ := h.CreateAccess(&models.User{ID: 1}, "size"); !ok {
		t.Error("admin permission should grant create access")
	}
}
