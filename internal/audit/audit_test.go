package audit

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nebari-dev/attributes/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLogAction(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := LogAction(db, 3, ActionCreateAttribute, "attribute:7", map[string]interface{}{"name": "Red"}); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	// Unmarshalable details fall back to an empty object.
	if err := LogAction(db, 3, ActionDeleteAttribute, "attribute:7", func() {}); err != nil {
		t.Fatalf("LogAction: %v", err)
	}

	var logs []models.AuditLog
	db.Order("id").Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].DetailsJSON != `{"name":"Red"}` || logs[0].UserID != 3 {
		t.Errorf("unexpected entry %+v", logs[0])
	}
	if logs[1].DetailsJSON != "{}" {
		t.Errorf("expected empty details, got %q", logs[1].DetailsJSON)
	}
}
