// Package hipaa persists the PHI access trail produced by the audit
// middleware.
package hipaa

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ehr/emr/internal/platform/middleware"
)

// Execer is the part of a pool or transaction the access log needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AccessLog writes one phi_access_log row per audited request. It
// implements middleware.AuditRecorder.
type AccessLog struct {
	db      Execer
	timeout time.Duration
}

func NewAccessLog(db Execer) *AccessLog {
	return &AccessLog{db: db, timeout: 2 * time.Second}
}

const insertAccess = `
	INSERT INTO phi_access_log (
		user_id, patient_id, resource, action, method, path,
		remote_ip, request_id, status_code, accessed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// RecordAccess runs detached from the request context so a client that
// hangs up still leaves a trail.
func (l *AccessLog) RecordAccess(e middleware.AuditEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	_, err := l.db.Exec(ctx, insertAccess,
		nullableUUID(e.UserID), nullableUUID(e.PatientID),
		e.Resource, e.Action, e.Method, e.Path,
		e.RemoteIP, e.RequestID, e.StatusCode, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("hipaa access log: %w", err)
	}
	return nil
}

func nullableUUID(s string) *uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
