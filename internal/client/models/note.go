package models

import "fmt"

// Note is a server-owned note record.
type Note struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OwnerEmail string `json:"userEmail,omitempty"`
}

func (n Note) String() string {
	if n.Content == "" {
		return fmt.Sprintf("[%s] %s", n.ID, n.Title)
	}
	return fmt.Sprintf("[%s] %s\n    %s", n.ID, n.Title, n.Content)
}

// NoteDraft is the create-note request body.
type NoteDraft struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	OwnerEmail string `json:"userEmail"`
}
