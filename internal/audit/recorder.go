// Package audit records who changed what. Writes are best effort: a
// failed audit insert is logged and swallowed, never propagated to the
// operation being audited.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"careermatrix/internal/models"
	"careermatrix/internal/store"
)

type Recorder struct {
	st store.Store
}

func NewRecorder(st store.Store) *Recorder {
	return &Recorder{st: st}
}

// Record appends one entry. oldValue/newValue are JSON-marshaled
// snapshots of the affected record; either may be nil.
func (r *Recorder) Record(ctx context.Context, actorID string, action models.AuditAction, tableName, recordID string, oldValue, newValue any) {
	entry := models.AuditEntry{
		ID:          uuid.NewString(),
		ActorUserID: actorID,
		Action:      action,
		TableName:   tableName,
		RecordID:    recordID,
		OldValues:   marshalSnapshot(oldValue),
		NewValues:   marshalSnapshot(newValue),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.st.InsertAudit(ctx, entry); err != nil {
		log.Printf("audit_write_failed action=%s table=%s record_id=%s err=%q",
			action, tableName, recordID, err.Error())
	}
}

func marshalSnapshot(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
