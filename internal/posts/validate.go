package posts

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BorisDmv/posts-api/internal/models"
)

const (
	messageMissingQuery = `query "q" is required`
	messageInvalidID    = "invalid id"
)

// PostRequest is the decoded body of a create or update request. A nil field
// was absent from the body.
type PostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Author  *string `json:"author"`
}

// ValidateCreate requires title, content and author to be present and
// non-blank.
func ValidateCreate(req PostRequest) (models.PostInput, error) {
	var missing []string
	if isBlank(req.Title) {
		missing = append(missing, "title")
	}
	if isBlank(req.Content) {
		missing = append(missing, "content")
	}
	if isBlank(req.Author) {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return models.PostInput{}, &Error{
			Kind:    KindMissingFields,
			Message: "required fields: " + strings.Join(missing, ", "),
			Fields:  missing,
		}
	}

	return models.PostInput{
		Title:   *req.Title,
		Content: *req.Content,
		Author:  *req.Author,
	}, nil
}

// ValidateUpdate passes the partial through unchanged. Blank values are
// rejected later, when the service checks the merged document.
func ValidateUpdate(req PostRequest) models.PostPatch {
	return models.PostPatch{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
	}
}

// ValidateSearchQuery returns the trimmed query.
func ValidateSearchQuery(raw string) (string, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return "", newError(KindMissingQuery, messageMissingQuery, nil)
	}
	return query, nil
}

// ValidateID checks that raw has the 24 hex digit ObjectID shape.
func ValidateID(raw string) error {
	if !primitive.IsValidObjectID(raw) {
		return newError(KindInvalidID, messageInvalidID, nil)
	}
	return nil
}

func isBlank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}
