package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionTokenRefresh    = "TOKEN_REFRESH"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionAccountCreate   = "ACCOUNT_CREATE"
	AuditActionAccountUpdate   = "ACCOUNT_UPDATE"
	AuditActionAccountDelete   = "ACCOUNT_DELETE"
	AuditActionRequirementSet  = "REQUIREMENT_SET"
	AuditActionRecalculate     = "COMPETENCY_RECALCULATE"
	AuditActionAttachmentAdd   = "ATTACHMENT_UPLOAD"
	AuditActionAttachmentDrop  = "ATTACHMENT_DELETE"
	AuditActionAnnouncementAdd = "ANNOUNCEMENT_CREATE"
	AuditActionExport          = "COMPETENCY_EXPORT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	AccountID  *string   `db:"account_id" json:"account_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RequestMeta identifies who triggered a write and from where.
type RequestMeta struct {
	ActorID   string
	IP        string
	UserAgent string
}
