/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scholarai/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertArchivedVersionSQL = `INSERT OR IGNORE INTO archived_versions(version_id, ts, title, payload) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectArchivedVersionSQL = `SELECT payload FROM archived_versions WHERE version_id = ?`

// language=SQL
// dialect=SQLite
const listArchivedVersionsSQL = `SELECT version_id, ts, title FROM archived_versions ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneArchivedVersionsSQL = `DELETE FROM archived_versions WHERE id NOT IN (
	SELECT id FROM archived_versions ORDER BY ts DESC LIMIT ?
)`

// ArchivedVersionInfo is a listing row for the version archive; the full
// snapshot payload is loaded separately via GetArchivedVersion.
type ArchivedVersionInfo struct {
	VersionID string
	Timestamp time.Time
	Title     string
}

// ArchiveVersion persists a paper version snapshot into the workspace index.
// The in-memory history keeps only the five newest versions; snapshots evicted
// from it are archived here so they remain recoverable. Re-archiving the same
// version id is a no-op.
func ArchiveVersion(ctx context.Context, wh *WorkspaceHandle, v domain.Version) error {
	if wh == nil {
		return errors.New("nil WorkspaceHandle")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal version: %w", err)
	}
	db, err := InitOrOpenIndex(wh.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertArchivedVersionSQL, v.ID, v.Timestamp.UTC().Format(time.RFC3339Nano), v.Title, payload)
	return err
}

// GetArchivedVersion loads one archived version by id. Returns (nil, nil) when
// the id is not in the archive.
func GetArchivedVersion(ctx context.Context, wh *WorkspaceHandle, versionID string) (*domain.Version, error) {
	if wh == nil {
		return nil, errors.New("nil WorkspaceHandle")
	}
	db, err := InitOrOpenIndex(wh.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	var payload []byte
	err = db.QueryRowContext(ctx, selectArchivedVersionSQL, versionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v domain.Version
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("parse archived version: %w", err)
	}
	return &v, nil
}

// ListArchivedVersions returns up to limit most recent archive entries.
func ListArchivedVersions(ctx context.Context, wh *WorkspaceHandle, limit int) ([]ArchivedVersionInfo, error) {
	if wh == nil {
		return nil, errors.New("nil WorkspaceHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(wh.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listArchivedVersionsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ArchivedVersionInfo
	for rows.Next() {
		var info ArchivedVersionInfo
		var tsStr string
		if err := rows.Scan(&info.VersionID, &tsStr, &info.Title); err != nil {
			return nil, err
		}
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, info)
	}
	return out, rows.Err()
}

// PruneArchivedVersions keeps at most keepLast entries and deletes older ones.
func PruneArchivedVersions(ctx context.Context, wh *WorkspaceHandle, keepLast int) (int64, error) {
	if wh == nil {
		return 0, errors.New("nil WorkspaceHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(wh.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneArchivedVersionsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
