package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MaxTagNameLength = 20

var (
	ErrEmptyTagName   = errors.New("model: tag name is required")
	ErrTagNameTooLong = errors.New("model: tag name exceeds 20 characters")
)

type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TagInput is the create/update body for a tag.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (t Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTagName
	}
	if utf8.RuneCountInString(t.Name) > MaxTagNameLength {
		return ErrTagNameTooLong
	}
	return nil
}

// HasTag reports whether tags contains an entry with the given id.
func HasTag(tags []Tag, id int64) bool {
	for _, t := range tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// ToggleTag removes tag from tags when an entry with its id is present and
// appends it otherwise. The result never holds two entries with one id.
func ToggleTag(tags []Tag, tag Tag) []Tag {
	if HasTag(tags, tag.ID) {
		return RemoveTag(tags, tag.ID)
	}
	out := make([]Tag, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag)
}

func RemoveTag(tags []Tag, id int64) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func TagIDs(tags []Tag) []int64 {
	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
