package models

import "time"

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostInput is a validated creation value.
type PostInput struct {
	Title   string
	Content string
	Author  string
}

// PostPatch carries the fields supplied by a partial update. A nil field was
// not supplied and must be left untouched.
type PostPatch struct {
	Title   *string
	Content *string
	Author  *string
}

// Apply copies the supplied fields onto post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Author != nil {
		post.Author = *p.Author
	}
}

// Empty reports whether no field was supplied.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Author == nil
}
