package contracts

import (
	"time"
)

// Audit actions
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
	AuditStatus = "STATUS_CHANGE"
)

// AuditEntry describes one successful write for the external audit log
type AuditEntry struct {
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId"`
	Details    string    `json:"details,omitempty"`
	UserEmail  string    `json:"userEmail,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
