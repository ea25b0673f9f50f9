package models

import "time"

// Admin audit actions
const (
	AuditActionDisputeRefunded    = "dispute_refunded"
	AuditActionDisputeRejected    = "dispute_rejected"
	AuditActionDisputeUnderReview = "dispute_under_review"
	AuditActionWalletAdjusted     = "wallet_adjusted"
	AuditActionUserBanned         = "user_banned"
	AuditActionUserUnbanned       = "user_unbanned"
	AuditActionPlanOverrideSaved  = "plan_override_saved"
	AuditActionFundingVerified    = "funding_verified"
)

// AdminActivityLog is the append-only audit trail of admin actions. Rows are
// only ever inserted by the application.
type AdminActivityLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AdminID     uint      `gorm:"not null;index" json:"admin_id"`
	Action      string    `gorm:"not null;index" json:"action"`
	TargetTable string    `json:"target_table"`
	TargetID    string    `json:"target_id"`
	Details     JSON      `gorm:"type:jsonb" json:"details"`
	CreatedAt   time.Time `json:"created_at"`
}
