package domain

import (
	"context"
	"time"
)

const (
	// Titles must be longer than this many characters.
	MinTitleLength = 5
	// Post bodies must be longer than this many characters.
	MinContentLength = 25
	MaxCommentLength = 2000
)

// Post is a unit of content with its comments embedded in insertion order.
type Post struct {
	ID        string
	AuthorID  string
	Author    string
	Title     string
	Content   string
	CreatedAt time.Time
	Comments  []Comment
}

// Comment belongs to exactly one post and is never edited or removed.
type Comment struct {
	Author    string
	Text      string
	CreatedAt time.Time
}

// FormatDate renders a creation time the way posts and comments display it.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// PostRepository defines persistence operations for posts and comments.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	// ListByAuthor returns posts stamped with the given author name in
	// creation order.
	ListByAuthor(ctx context.Context, author string) ([]Post, error)
	ListAll(ctx context.Context) ([]Post, error)
	Delete(ctx context.Context, id string) error
	// AppendComment atomically adds a comment to the end of the post's
	// comment list. It returns ErrNotFound if the post does not exist.
	AppendComment(ctx context.Context, postID string, comment *Comment) error
}
