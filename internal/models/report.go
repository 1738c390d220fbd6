package models

// ReportReason is one of the enumerated report categories.
type ReportReason string

const (
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonInappropriate ReportReason = "inappropriate_content"
	ReportReasonImpersonation ReportReason = "impersonation"
	ReportReasonOther         ReportReason = "other"
)

// ValidReportReason reports whether reason is one of the known categories.
func ValidReportReason(reason ReportReason) bool {
	switch reason {
	case ReportReasonHarassment, ReportReasonSpam, ReportReasonInappropriate,
		ReportReasonImpersonation, ReportReasonOther:
		return true
	}
	return false
}

// Report is a safety report against either a user or a message. Exactly one
// of TargetUserID / TargetMessageID is set, never both, never neither.
// Reports are fire-and-forget: there is no retraction operation.
type Report struct {
	BaseModel
	ReporterID      uint         `gorm:"not null;index" json:"reporterId"`
	Reason          ReportReason `gorm:"type:varchar(50);not null" json:"reason"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	TargetUserID    *uint        `gorm:"index" json:"targetUserId,omitempty"`
	TargetMessageID *uint        `gorm:"index" json:"targetMessageId,omitempty"`
}

// TableName specifies the table name for the Report model.
func (Report) TableName() string {
	return "reports"
}
