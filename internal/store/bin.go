package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oakmere/arbor/internal/apperr"
	"github.com/oakmere/arbor/internal/models"
)

// DeletedNotes lists notes currently in the bin, oldest deletion first.
func (db *DB) DeletedNotes() ([]*models.Note, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, folder_id, created_at, updated_at, deleted_at
		FROM notes WHERE deleted = 1 ORDER BY deleted_at`)
	if err != nil {
		return nil, fmt.Errorf("store: deleted notes: %w", err)
	}
	defer rows.Close()

	out := []*models.Note{}
	for rows.Next() {
		n := &models.Note{}
		var folder sql.NullInt64
		var deletedAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.Title, &folder, &n.CreatedAt, &n.UpdatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("store: scan deleted note: %w", err)
		}
		if folder.Valid {
			fid := folder.Int64
			n.FolderID = &fid
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			n.DeletedAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeletedFolders lists folders currently in the bin as a flat list.
func (db *DB) DeletedFolders() ([]*models.Folder, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, parent_id FROM folders WHERE deleted = 1 ORDER BY deleted_at`)
	if err != nil {
		return nil, fmt.Errorf("store: deleted folders: %w", err)
	}
	defer rows.Close()

	out := []*models.Folder{}
	for rows.Next() {
		f := &models.Folder{Children: []*models.Folder{}, Notes: []*models.Note{}}
		var parent sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &parent); err != nil {
			return nil, fmt.Errorf("store: scan deleted folder: %w", err)
		}
		if parent.Valid {
			p := parent.Int64
			f.ParentID = &p
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RestoreNote clears a note's tombstone.
func (db *DB) RestoreNote(id int64) error {
	res, err := db.conn.Exec(
		`UPDATE notes SET deleted = 0, deleted_at = NULL WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return fmt.Errorf("store: restore note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: binned note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// RestoreFolder clears a folder's tombstone; the next tree rebuild
// resurfaces its still-live subtree.
func (db *DB) RestoreFolder(id int64) error {
	res, err := db.conn.Exec(
		`UPDATE folders SET deleted = 0, deleted_at = NULL WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return fmt.Errorf("store: restore folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: binned folder %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// PurgeNote permanently removes a binned note and its outgoing
// references. Incoming references from other notes are left dangling;
// they resolve to a not-found view, never an error.
func (db *DB) PurgeNote(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM notes WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return fmt.Errorf("store: purge note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: binned note %d: %w", id, apperr.ErrNotFound)
	}
	if _, err := tx.Exec(`DELETE FROM refs WHERE source = ?`, id); err != nil {
		return fmt.Errorf("store: purge refs: %w", err)
	}
	return tx.Commit()
}

// PurgeFolder permanently removes a binned folder and its whole
// subtree, including any notes the subtree still holds.
func (db *DB) PurgeFolder(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var one int
	if err := tx.QueryRow(`SELECT 1 FROM folders WHERE id = ? AND deleted = 1`, id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("store: binned folder %d: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("store: purge folder lookup: %w", err)
	}

	const subtree = `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM folders WHERE id = ?
			UNION ALL
			SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
		)`

	if _, err := tx.Exec(subtree+`
		DELETE FROM refs WHERE source IN (SELECT id FROM notes WHERE folder_id IN (SELECT id FROM subtree))`, id); err != nil {
		return fmt.Errorf("store: purge subtree refs: %w", err)
	}
	if _, err := tx.Exec(subtree+`
		DELETE FROM notes WHERE folder_id IN (SELECT id FROM subtree)`, id); err != nil {
		return fmt.Errorf("store: purge subtree notes: %w", err)
	}
	if _, err := tx.Exec(subtree+`
		DELETE FROM folders WHERE id IN (SELECT id FROM subtree)`, id); err != nil {
		return fmt.Errorf("store: purge subtree folders: %w", err)
	}
	return tx.Commit()
}

// PurgeExpired permanently removes bin items deleted before the cutoff.
// Returns how many notes and folders were purged.
func (db *DB) PurgeExpired(cutoff time.Time) (notes int, folders int, err error) {
	noteIDs, err := db.expiredIDs(`SELECT id FROM notes WHERE deleted = 1 AND deleted_at < ?`, cutoff)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range noteIDs {
		if err := db.PurgeNote(id); err != nil {
			return notes, folders, err
		}
		notes++
	}

	folderIDs, err := db.expiredIDs(`SELECT id FROM folders WHERE deleted = 1 AND deleted_at < ?`, cutoff)
	if err != nil {
		return notes, 0, err
	}
	for _, id := range folderIDs {
		err := db.PurgeFolder(id)
		if err != nil && !isNotFound(err) {
			// Already removed as part of an ancestor's subtree is fine.
			return notes, folders, err
		}
		if err == nil {
			folders++
		}
	}
	return notes, folders, nil
}

func (db *DB) expiredIDs(query string, cutoff time.Time) ([]int64, error) {
	rows, err := db.conn.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: expired lookup: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
