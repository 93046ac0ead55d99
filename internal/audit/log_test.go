package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/internal/authz"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	stmt := `
CREATE TABLE IF NOT EXISTS audit_log_entries (
  id TEXT PRIMARY KEY,
  actor_profile_id TEXT NOT NULL,
  action TEXT NOT NULL,
  target_type TEXT NOT NULL,
  target_id TEXT NOT NULL,
  details TEXT,
  ip_address TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(stmt).Error)
	return db
}

func seedAuditEntry(t *testing.T, db *gorm.DB, action string) models.AuditLogEntry {
	t.Helper()

	row := models.AuditLogEntry{
		ID:             uuid.New(),
		ActorProfileID: uuid.New(),
		Action:         action,
		TargetType:     "account",
		TargetID:       uuid.New(),
		IPAddress:      "203.0.113.7",
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func adminActor() authz.Actor {
	return authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleAdmin}
}

func TestAuditLogListRequiresAdmin(t *testing.T) {
	db := setupAuditTestDB(t)
	auditLog, err := NewLog(db)
	require.NoError(t, err)

	scope := uuid.New()
	actor := authz.Actor{ProfileID: uuid.New(), Role: enums.ProfileRoleWholesaler, ScopeID: &scope}

	_, err = auditLog.List(context.Background(), actor, ListParams{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestAuditLogListFiltersByAction(t *testing.T) {
	db := setupAuditTestDB(t)
	auditLog, err := NewLog(db)
	require.NoError(t, err)

	approve := seedAuditEntry(t, db, "wholesaler_approve")
	seedAuditEntry(t, db, "wholesaler_reject")

	result, err := auditLog.List(context.Background(), adminActor(), ListParams{Action: "wholesaler_approve"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, approve.ID, result.Items[0].ID)
	require.EqualValues(t, 1, result.Total)
}

func TestAuditLogListTotalIgnoresPageWindow(t *testing.T) {
	db := setupAuditTestDB(t)
	auditLog, err := NewLog(db)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		seedAuditEntry(t, db, "wholesaler_suspend")
	}

	result, err := auditLog.List(context.Background(), adminActor(), ListParams{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.EqualValues(t, 5, result.Total)
}
