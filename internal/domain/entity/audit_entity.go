package entity

import "time"

// Audit actions recorded for authentication events.
const (
	AuditLoginSuccess      = "login_success"
	AuditLoginFailure      = "login_failure"
	AuditRegisterSuccess   = "register_success"
	AuditRegisterDuplicate = "register_duplicate"
)

type AuditEntry struct {
	ID        int64
	Username  string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
