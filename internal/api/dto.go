package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateFolderRequest is the body of POST /api/folders.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// RenameFolderRequest is the body of PUT /api/folders/{id}.
type RenameFolderRequest struct {
	Name string `json:"name"`
}

func (r RenameFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// CreateNoteRequest is the body of POST /api/notes.
type CreateNoteRequest struct {
	Title    string `json:"title"`
	FolderID *int64 `json:"folderId"`
}

func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
	)
}

// UpdateNoteRequest is the body of PUT /api/notes/{id}.
type UpdateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
	)
}

// DraftRequest is the body of PUT /api/notes/{id}/draft. A draft may
// carry an empty title: the user clearing the field mid-edit is still
// an edit the autosave session has to track. The non-empty rule
// applies only on explicit update.
type DraftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r DraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 255)),
	)
}

// ToggleRequest is the body of POST /api/tree/toggle.
type ToggleRequest struct {
	FolderID int64 `json:"folderId"`
}

func (r ToggleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FolderID, validation.Required, validation.Min(int64(1))),
	)
}

// ImportNoteRequest is one entry of POST /api/notes/import. Exports
// from older releases spell the timestamp keys differently, so the
// decoder duck-types them instead of binding a single tag.
type ImportNoteRequest struct {
	Title     string
	Content   string
	FolderID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r ImportNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
	)
}

var (
	createdKeys = []string{"createdAt", "created_at", "createdDate", "created_date"}
	updatedKeys = []string{"updatedAt", "updated_at", "updatedDate", "updated_date", "lastModifiedDate", "last_modified_date"}
)

func (r *ImportNoteRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &r.Title); err != nil {
			return err
		}
	}
	if v, ok := raw["content"]; ok {
		if err := json.Unmarshal(v, &r.Content); err != nil {
			return err
		}
	}
	if v, ok := raw["folderId"]; ok {
		if err := json.Unmarshal(v, &r.FolderID); err != nil {
			return err
		}
	} else if v, ok := raw["folder_id"]; ok {
		if err := json.Unmarshal(v, &r.FolderID); err != nil {
			return err
		}
	}
	r.CreatedAt = legacyTime(raw, createdKeys)
	r.UpdatedAt = legacyTime(raw, updatedKeys)
	return nil
}

// legacyTime returns the first key that parses. Unparseable or absent
// values yield the zero time; the store substitutes now.
func legacyTime(raw map[string]json.RawMessage, keys []string) time.Time {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if t, ok := parseLegacyTime(v); ok {
			return t
		}
	}
	return time.Time{}
}

var legacyLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseLegacyTime(v json.RawMessage) (time.Time, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" || s == "null" {
		return time.Time{}, false
	}

	// Epoch number, seconds or milliseconds.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return time.Time{}, false
		}
		if n > 1e12 {
			return time.UnixMilli(n), true
		}
		return time.Unix(n, 0), true
	}

	var str string
	if err := json.Unmarshal(v, &str); err != nil {
		return time.Time{}, false
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
