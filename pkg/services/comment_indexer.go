package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/repositories"
)

// ParseParentIDs normalizes the requested parent identifiers: a comma
// separated string, a list, or a single scalar. Values are trimmed and empty
// entries dropped.
func ParseParentIDs(input any) []string {
	var raw []string
	switch v := input.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if item != nil {
				raw = append(raw, fmt.Sprint(item))
			}
		}
	default:
		raw = strings.Split(fmt.Sprint(v), ",")
	}

	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// CommentIndexer finds the comments of issues whose parent matches a requested identifier.
type CommentIndexer interface {
	Index(ctx context.Context, parentIDs []string) ([]models.CommentMatch, error)
}

type commentIndexer struct {
	issues repositories.IssueRepository
	logger *zap.Logger
}

// NewCommentIndexer creates a CommentIndexer.
func NewCommentIndexer(issues repositories.IssueRepository, logger *zap.Logger) CommentIndexer {
	return &commentIndexer{
		issues: issues,
		logger: logger.Named("comment-indexer"),
	}
}

var _ CommentIndexer = (*commentIndexer)(nil)

func (c *commentIndexer) Index(ctx context.Context, parentIDs []string) ([]models.CommentMatch, error) {
	issues, err := c.issues.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := []models.CommentMatch{}
	for _, issue := range issues {
		if id, ok := matchParent(issue, parentIDs); ok {
			matches = append(matches, models.CommentMatch{ParentEpic: id, Comments: issue.Comments})
		}
	}

	c.logger.Info("Indexed issue comments",
		zap.Int("issues", len(issues)),
		zap.Int("requested", len(parentIDs)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// matchParent returns the first requested id contained in the issue's parent,
// checking the rendered text before the structured references.
func matchParent(issue models.IssueRecord, parentIDs []string) (string, bool) {
	for _, id := range parentIDs {
		if issue.ParentText != "" && strings.Contains(issue.ParentText, id) {
			return id, true
		}
		for _, ref := range issue.ParentRefs {
			if (ref.Name != "" && strings.Contains(ref.Name, id)) || (ref.ID != "" && strings.Contains(ref.ID, id)) {
				return id, true
			}
		}
	}
	return "", false
}
