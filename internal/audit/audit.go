package audit

import (
	"encoding/json"
	"time"

	"github.com/nebari-dev/attributes/internal/models"
	"gorm.io/gorm"
)

// LogAction records an audit log entry
func LogAction(db *gorm.DB, userID uint, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.Create(&log).Error
}

// Audit actions constants
const (
	ActionCreateUser           = "create_user"
	ActionGrantPermission      = "grant_permission"
	ActionRevokePermission     = "revoke_permission"
	ActionAssignRole           = "assign_role"
	ActionRemoveRole           = "remove_role"
	ActionCreateAttribute      = "create_attribute"
	ActionUpdateAttribute      = "update_attribute"
	ActionDeleteAttribute      = "delete_attribute"
	ActionDeleteTranslation    = "delete_translation"
	ActionCreateAttributeType  = "create_attribute_type"
	ActionUpdateAttributeType  = "update_attribute_type"
	ActionDeleteAttributeType  = "delete_attribute_type"
	ActionImportConfig         = "import_config"
	ActionUpdateLanguageConfig = "update_language_settings"
	ActionLogin                = "login"
	ActionLoginFailed          = "login_failed"
)
