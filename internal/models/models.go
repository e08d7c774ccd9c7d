// Package models defines the domain types for Arbor.
package models

import "time"

// Folder is a node in the navigation forest. Children and Notes are
// populated by the store when building a tree snapshot; there is no
// parent back-pointer, ancestor lookups go through the tree package.
type Folder struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	ParentID *int64    `json:"parentId,omitempty"`
	Children []*Folder `json:"children"`
	Notes    []*Note   `json:"notes"`
}

// Note is a leaf content unit. Content is omitted in tree snapshots
// and populated only when a single note is fetched.
type Note struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	FolderID *int64 `json:"folderId,omitempty"`

	WordCount      int   `json:"wordCount"`
	LineCount      int   `json:"lineCount"`
	CharacterCount int   `json:"characterCount"`
	SizeInBytes    int64 `json:"sizeInBytes"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// NoteDetail is a fetched note enriched with incoming references.
type NoteDetail struct {
	Note
	Backlinks []int64 `json:"backlinks"`
}
