package models

// SummaryStatus is the review state of an intake's status summary.
type SummaryStatus string

const (
	SummaryStatusPendingReview SummaryStatus = "Pending Review"
	SummaryStatusApproved      SummaryStatus = "Approved"
	SummaryStatusRejected      SummaryStatus = "Rejected"
)

// IntakeRecord is a row of the submitted requests table.
type IntakeRecord struct {
	RecordID            string        `json:"record_id"`
	IntakeID            string        `json:"intake_id"`
	ProjectName         string        `json:"project_name"`
	StatusSummary       *string       `json:"status_summary,omitempty"`
	StatusSummaryStatus SummaryStatus `json:"status_summary_status,omitempty"`
}

// ProjectRecord is a row of the projects table, used as the link target of status notes.
type ProjectRecord struct {
	RecordID string `json:"record_id"`
	IntakeID string `json:"intake_id"`
}
