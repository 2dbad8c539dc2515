package hipaa

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ehr/emr/internal/platform/middleware"
)

type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestRecordAccess(t *testing.T) {
	ex := &fakeExecer{}
	uid, pid := uuid.New(), uuid.New()
	at := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	err := NewAccessLog(ex).RecordAccess(middleware.AuditEntry{
		UserID: uid.String(), PatientID: pid.String(), Resource: "notes", Action: "create",
		Method: "POST", Path: "/api/v1/patients/" + pid.String() + "/notes",
		RemoteIP: "10.0.0.1", RequestID: "req-1", StatusCode: 201, Timestamp: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(ex.sql, "phi_access_log") || len(ex.args) != 10 {
		t.Fatalf("unexpected statement %q with %d args", ex.sql, len(ex.args))
	}
	if got := ex.args[0].(*uuid.UUID); *got != uid {
		t.Errorf("user_id = %v, want %v", got, uid)
	}
	if got := ex.args[1].(*uuid.UUID); *got != pid {
		t.Errorf("patient_id = %v, want %v", got, pid)
	}
	if ex.args[9] != at {
		t.Errorf("accessed_at = %v, want %v", ex.args[9], at)
	}
}

func TestRecordAccess_NoPatient(t *testing.T) {
	ex := &fakeExecer{}
	if err := NewAccessLog(ex).RecordAccess(middleware.AuditEntry{Resource: "profile", Action: "read"}); err != nil {
		t.Fatal(err)
	}
	if ex.args[0].(*uuid.UUID) != nil || ex.args[1].(*uuid.UUID) != nil {
		t.Errorf("expected NULL ids, got %v %v", ex.args[0], ex.args[1])
	}
}

func TestRecordAccess_Error(t *testing.T) {
	ex := &fakeExecer{err: errors.New("relation \"phi_access_log\" does not exist")}
	if err := NewAccessLog(ex).RecordAccess(middleware.AuditEntry{}); err == nil {
		t.Fatal("expected error")
	}
}
