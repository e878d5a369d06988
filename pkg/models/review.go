package models

// ReviewAction is the decision a reviewer took on a summary card.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
	ReviewActionModify  ReviewAction = "modify"
)

// ParseReviewAction returns the action for s, or false when s is not one of
// the exact lowercase action names. Case and surrounding space are significant.
func ParseReviewAction(s string) (ReviewAction, bool) {
	switch a := ReviewAction(s); a {
	case ReviewActionApprove, ReviewActionReject, ReviewActionModify:
		return a, true
	default:
		return "", false
	}
}

// PastTense is used in confirmation messages.
func (a ReviewAction) PastTense() string {
	switch a {
	case ReviewActionApprove:
		return "approved"
	case ReviewActionReject:
		return "rejected"
	case ReviewActionModify:
		return "modified"
	default:
		return string(a)
	}
}

// ReviewRequest is the payload submitted from a review card.
type ReviewRequest struct {
	Action       string `json:"-"`
	IntakeID     string `json:"intakeId"`
	Summary      string `json:"summary"`
	ModifiedText string `json:"modifiedText"`
}

// ReviewResult is returned once a review decision has been persisted.
type ReviewResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	IntakeID string `json:"intakeId"`
	Action   string `json:"action"`
}
