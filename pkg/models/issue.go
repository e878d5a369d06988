package models

// ParentRef is a structured reference to a parent issue.
type ParentRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IssueRecord is a row of the issue sync table.
type IssueRecord struct {
	RecordID string
	IssueKey string
	// ParentText is the parent cell rendered as a string.
	ParentText string
	// ParentRefs holds the parent cell when it is a linked or structured value.
	ParentRefs []ParentRef
	Comments   string
}

// CommentMatch is emitted for an issue whose parent matched a requested identifier.
type CommentMatch struct {
	ParentEpic string `json:"parentEpic"`
	Comments   string `json:"comments"`
}
