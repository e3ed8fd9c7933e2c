package models

import (
	"fmt"
	"strings"
	"time"
)

// AnonymousName is stored as the name of comments posted without one.
const AnonymousName = "Anonymous"

// Comment is immutable once appended. ID is assigned by the store.
type Comment struct {
	ID        string `json:"id" mapstructure:"-"`
	Type      Choice `json:"type" mapstructure:"type"`
	Message   string `json:"message" mapstructure:"message"`
	Name      string `json:"name" mapstructure:"name"`
	Avatar    string `json:"avatar,omitempty" mapstructure:"avatar"`
	CreatedAt int64  `json:"createdAt" mapstructure:"createdAt"`
}

func (c Comment) Anonymous() bool {
	return c.Name == "" || c.Name == AnonymousName
}

func (c Comment) Fields() map[string]any {
	fields := map[string]any{
		"type":      string(c.Type),
		"message":   c.Message,
		"name":      c.Name,
		"createdAt": c.CreatedAt,
	}
	if c.Avatar != "" {
		fields["avatar"] = c.Avatar
	}
	return fields
}

func DecodeComment(id string, fields map[string]any) (Comment, error) {
	var c Comment
	if err := weakDecode(fields, &c); err != nil {
		return Comment{}, fmt.Errorf("%w: comment %s: %v", ErrMalformedSnapshot, id, err)
	}
	c.ID = id
	if !c.Type.Valid() || strings.TrimSpace(c.Message) == "" {
		return Comment{}, fmt.Errorf("%w: comment %s has type %q and message %q", ErrMalformedSnapshot, id, c.Type, c.Message)
	}
	if c.Anonymous() {
		c.Name = AnonymousName
		c.Avatar = ""
	}
	return c, nil
}

// CommentDraft holds what the user typed before submitting. Avatar is an inline data URI.
type CommentDraft struct {
	Text   string `json:"text"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func (d CommentDraft) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Comment builds the entity to append. A blank draft yields ErrEmptyCommentIgnored, and an
// avatar is only kept when a name is present.
func (d CommentDraft) Comment(choice Choice, now time.Time) (Comment, error) {
	if d.Empty() {
		return Comment{}, ErrEmptyCommentIgnored
	}
	if !choice.Valid() {
		return Comment{}, ErrInvalidChoice
	}
	c := Comment{
		Type:      choice,
		Message:   strings.TrimSpace(d.Text),
		Name:      strings.TrimSpace(d.Name),
		CreatedAt: now.UnixMilli(),
	}
	if c.Anonymous() {
		c.Name = AnonymousName
	} else {
		c.Avatar = d.Avatar
	}
	return c, nil
}
