package note

import (
	"strings"

	"github.com/alimasry/marginalia/anchor"
)

// Filter returns the notes matching query, case-insensitively, against ID,
// title, tags, body, and comment bodies. An empty query matches everything.
func Filter(notes []*Note, query string) []*Note {
	if query == "" {
		return notes
	}
	q := strings.ToLower(query)
	var out []*Note
	for _, n := range notes {
		if matches(n, q) {
			out = append(out, n)
		}
	}
	return out
}

func matches(n *Note, q string) bool {
	if strings.Contains(strings.ToLower(n.ID), q) ||
		strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	for _, c := range n.Comments {
		if strings.Contains(strings.ToLower(c.Body), q) {
			return true
		}
	}
	return false
}

// ByStatus returns the note's comments currently in the given status.
func ByStatus(n *Note, status anchor.Status) []anchor.Comment {
	var out []anchor.Comment
	for _, c := range n.Comments {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}
