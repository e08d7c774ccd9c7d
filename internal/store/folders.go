package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oakmere/arbor/internal/apperr"
	"github.com/oakmere/arbor/internal/models"
)

// CreateFolder inserts a folder under the given parent (nil = root).
func (db *DB) CreateFolder(name string, parentID *int64) (*models.Folder, error) {
	if parentID != nil {
		live, err := db.folderLive(*parentID)
		if err != nil {
			return nil, err
		}
		if !live {
			return nil, fmt.Errorf("store: parent folder %d: %w", *parentID, apperr.ErrNotFound)
		}
	}

	res, err := db.conn.Exec(
		`INSERT INTO folders (name, parent_id, created_at) VALUES (?, ?, ?)`,
		name, nullableID(parentID), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("store: create folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: create folder id: %w", err)
	}
	return &models.Folder{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Children: []*models.Folder{},
		Notes:    []*models.Note{},
	}, nil
}

// RenameFolder updates a live folder's display name.
func (db *DB) RenameFolder(id int64, name string) (*models.Folder, error) {
	res, err := db.conn.Exec(
		`UPDATE folders SET name = ? WHERE id = ? AND deleted = 0`, name, id)
	if err != nil {
		return nil, fmt.Errorf("store: rename folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("store: folder %d: %w", id, apperr.ErrNotFound)
	}
	return db.getFolder(id)
}

// SoftDeleteFolder moves a folder to the bin. Its subtree disappears
// from the live tree but stays intact for restore.
func (db *DB) SoftDeleteFolder(id int64) error {
	res, err := db.conn.Exec(
		`UPDATE folders SET deleted = 1, deleted_at = ? WHERE id = ? AND deleted = 0`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: delete folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: folder %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Tree builds the full live forest: every non-deleted folder with its
// non-deleted notes (content omitted), children attached to parents.
// A live folder whose parent sits in the bin is hidden with it.
func (db *DB) Tree() ([]*models.Folder, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, parent_id FROM folders WHERE deleted = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: load folders: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Folder)
	var order []int64
	for rows.Next() {
		f := &models.Folder{Children: []*models.Folder{}, Notes: []*models.Note{}}
		var parent sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &parent); err != nil {
			return nil, fmt.Errorf("store: scan folder: %w", err)
		}
		if parent.Valid {
			p := parent.Int64
			f.ParentID = &p
		}
		byID[f.ID] = f
		order = append(order, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load folders: %w", err)
	}

	noteRows, err := db.conn.Query(`
		SELECT id, title, folder_id, word_count, line_count, character_count,
		       size_bytes, created_at, updated_at
		FROM notes WHERE deleted = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: load notes: %w", err)
	}
	defer noteRows.Close()

	for noteRows.Next() {
		n := &models.Note{}
		var folder sql.NullInt64
		if err := noteRows.Scan(&n.ID, &n.Title, &folder, &n.WordCount, &n.LineCount,
			&n.CharacterCount, &n.SizeInBytes, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		if folder.Valid {
			fid := folder.Int64
			n.FolderID = &fid
			if f, ok := byID[fid]; ok {
				f.Notes = append(f.Notes, n)
			}
		}
	}
	if err := noteRows.Err(); err != nil {
		return nil, fmt.Errorf("store: load notes: %w", err)
	}

	// Non-nil even when no folder is live: callers distinguish an empty
	// forest from a failed load by the error, not by nilness.
	roots := []*models.Folder{}
	for _, id := range order {
		f := byID[id]
		if f.ParentID == nil {
			roots = append(roots, f)
			continue
		}
		if parent, ok := byID[*f.ParentID]; ok {
			parent.Children = append(parent.Children, f)
		}
		// Parent in the bin: subtree stays hidden until restore.
	}
	return roots, nil
}

func (db *DB) getFolder(id int64) (*models.Folder, error) {
	f := &models.Folder{ID: id, Children: []*models.Folder{}, Notes: []*models.Note{}}
	var parent sql.NullInt64
	err := db.conn.QueryRow(
		`SELECT name, parent_id FROM folders WHERE id = ? AND deleted = 0`, id).
		Scan(&f.Name, &parent)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: folder %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get folder: %w", err)
	}
	if parent.Valid {
		p := parent.Int64
		f.ParentID = &p
	}
	return f, nil
}

func (db *DB) folderLive(id int64) (bool, error) {
	var one int
	err := db.conn.QueryRow(
		`SELECT 1 FROM folders WHERE id = ? AND deleted = 0`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: folder lookup: %w", err)
	}
	return true, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
