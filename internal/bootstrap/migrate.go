package bootstrap

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"leavedesk/internal/activity"
	"leavedesk/internal/balance"
	"leavedesk/internal/employee"
	"leavedesk/internal/leave"
	"leavedesk/internal/rbac"
)

// outboxDDL stays raw SQL: the outbox repo reads and writes it through
// database/sql, so the table is defined on its own terms rather than through
// a gorm entity.
const outboxDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
    id             uuid PRIMARY KEY,
    request_id     text,
    aggregate_type text NOT NULL,
    aggregate_id   uuid NOT NULL,
    event_type     text NOT NULL,
    topic          text NOT NULL,
    payload        jsonb NOT NULL,
    status         text NOT NULL DEFAULT 'pending',
    retry_count    int NOT NULL DEFAULT 0,
    last_error     text,
    next_retry_at  timestamptz,
    sent_at        timestamptz,
    created_at     timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_pending
    ON outbox_events (created_at) WHERE status IN ('pending', 'failed');
`

// seedPermissions grants the elevated roles their decision rights. Plain
// employees carry no rows: filing and reading your own requests needs no
// permission entry.
var seedPermissions = []rbac.RolePermissionRow{
	{Role: employee.RoleManager, Resource: "leave", Action: "approve"},
	{Role: employee.RoleHR, Resource: "leave", Action: "approve"},
	{Role: employee.RoleAdmin, Resource: "leave", Action: "approve"},
	{Role: employee.RoleManager, Resource: "activity", Action: "decide"},
	{Role: employee.RoleHR, Resource: "activity", Action: "decide"},
	{Role: employee.RoleAdmin, Resource: "activity", Action: "decide"},
}

// Migrate brings the schema up at startup so request paths never create
// tables on the fly.
func Migrate(db *gorm.DB) error {
	zap.L().Info("running schema migration")

	if err := db.AutoMigrate(
		&employee.Employee{},
		&balance.LeaveBalance{},
		&leave.Leave{},
		&activity.WorkFromHomeRequest{},
		&activity.PartialDayRequest{},
		&activity.RegularizationRequest{},
		&rbac.RolePermissionRow{},
	); err != nil {
		return err
	}

	if err := db.Exec(outboxDDL).Error; err != nil {
		return err
	}

	for _, perm := range seedPermissions {
		err := db.Exec(
			`INSERT INTO role_permissions (role, resource, action) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			perm.Role, perm.Resource, perm.Action,
		).Error
		if err != nil {
			return err
		}
	}

	zap.L().Info("schema migration complete")
	return nil
}
