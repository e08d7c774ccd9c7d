package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oakmere/arbor/internal/apperr"
	"github.com/oakmere/arbor/internal/models"
	"github.com/oakmere/arbor/internal/parser"
)

// CreateNote inserts an empty note in the given folder. When folderID
// is nil the note lands in the first live root folder; creating a note
// with no folder and no root at all is a not-found error.
func (db *DB) CreateNote(title string, folderID *int64) (*models.Note, error) {
	if folderID == nil {
		var rootID int64
		err := db.conn.QueryRow(
			`SELECT id FROM folders WHERE parent_id IS NULL AND deleted = 0 ORDER BY id LIMIT 1`).
			Scan(&rootID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: no root folder: %w", apperr.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("store: root lookup: %w", err)
		}
		folderID = &rootID
	} else {
		live, err := db.folderLive(*folderID)
		if err != nil {
			return nil, err
		}
		if !live {
			return nil, fmt.Errorf("store: folder %d: %w", *folderID, apperr.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	res, err := db.conn.Exec(`
		INSERT INTO notes (title, content, folder_id, created_at, updated_at)
		VALUES (?, '', ?, ?, ?)`,
		title, *folderID, now, now)
	if err != nil {
		return nil, fmt.Errorf("store: create note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: create note id: %w", err)
	}
	return &models.Note{
		ID:        id,
		Title:     title,
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetNote fetches a live note with content and incoming references.
func (db *DB) GetNote(id int64) (*models.NoteDetail, error) {
	n := models.Note{ID: id}
	var folder sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT title, content, folder_id, word_count, line_count, character_count,
		       size_bytes, created_at, updated_at
		FROM notes WHERE id = ? AND deleted = 0`, id).
		Scan(&n.Title, &n.Content, &folder, &n.WordCount, &n.LineCount,
			&n.CharacterCount, &n.SizeInBytes, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	if folder.Valid {
		fid := folder.Int64
		n.FolderID = &fid
	}

	backlinks, err := db.Backlinks(id)
	if err != nil {
		return nil, err
	}
	return &models.NoteDetail{Note: n, Backlinks: backlinks}, nil
}

// UpdateNote persists new title and content, recomputes metadata, and
// replaces the note's outgoing references within one transaction.
func (db *DB) UpdateNote(id int64, title, content string, refs []parser.Reference) (*models.Note, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	md := parser.Measure(content)
	now := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE notes
		SET title = ?, content = ?, word_count = ?, line_count = ?,
		    character_count = ?, size_bytes = ?, updated_at = ?
		WHERE id = ? AND deleted = 0`,
		title, content, md.Words, md.Lines, md.Characters, md.SizeBytes, now, id)
	if err != nil {
		return nil, fmt.Errorf("store: update note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("store: note %d: %w", id, apperr.ErrNotFound)
	}

	// Replace outgoing references: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM refs WHERE source = ?`, id); err != nil {
		return nil, fmt.Errorf("store: clear refs: %w", err)
	}
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO refs (source, target, label) VALUES (?, ?, ?)`)
		if err != nil {
			return nil, fmt.Errorf("store: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range refs {
			if _, err := stmt.Exec(id, r.Target, r.Label); err != nil {
				return nil, fmt.Errorf("store: insert ref: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit update: %w", err)
	}

	detail, err := db.GetNote(id)
	if err != nil {
		return nil, err
	}
	return &detail.Note, nil
}

// ImportNote inserts a fully-formed note, preserving the timestamps
// carried by a legacy export. Zero timestamps fall back to now.
func (db *DB) ImportNote(title, content string, folderID *int64, createdAt, updatedAt time.Time, refs []parser.Reference) (*models.Note, error) {
	created, err := db.CreateNote(title, folderID)
	if err != nil {
		return nil, err
	}
	note, err := db.UpdateNote(created.ID, title, content, refs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	if _, err := db.conn.Exec(
		`UPDATE notes SET created_at = ?, updated_at = ? WHERE id = ?`,
		createdAt.UTC(), updatedAt.UTC(), note.ID); err != nil {
		return nil, fmt.Errorf("store: import timestamps: %w", err)
	}
	note.CreatedAt = createdAt.UTC()
	note.UpdatedAt = updatedAt.UTC()
	return note, nil
}

// SoftDeleteNote moves a note to the bin.
func (db *DB) SoftDeleteNote(id int64) error {
	res, err := db.conn.Exec(
		`UPDATE notes SET deleted = 1, deleted_at = ? WHERE id = ? AND deleted = 0`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Backlinks returns ids of live notes that reference the target.
func (db *DB) Backlinks(target int64) ([]int64, error) {
	rows, err := db.conn.Query(`
		SELECT r.source FROM refs r
		JOIN notes n ON n.id = r.source AND n.deleted = 0
		WHERE r.target = ?
		ORDER BY r.source`, target)
	if err != nil {
		return nil, fmt.Errorf("store: backlinks: %w", err)
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var src int64
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
