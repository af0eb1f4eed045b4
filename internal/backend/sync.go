/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"scholarai/internal/domain"
)

// PaperSummary is a minimal projection for listing synced papers.
type PaperSummary struct {
	ID        int64     `json:"id"`
	PaperID   string    `json:"paper_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// PaperEnvelope matches the sync server response for one paper.
type PaperEnvelope struct {
	PaperID   string          `json:"paper_id"`
	Version   int64           `json:"version"`
	UpdatedAt string          `json:"updated_at"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

// ListPapers returns the papers known to the sync server.
func (c *Client) ListPapers(ctx context.Context) ([]PaperSummary, error) {
	var list []PaperSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/papers", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetPaper fetches the latest synced snapshot for a paperId.
func (c *Client) GetPaper(ctx context.Context, paperID string) (*PaperEnvelope, error) {
	var env PaperEnvelope
	path := "/api/papers/" + url.PathEscape(paperID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PutPaper uploads the persisted paper state under its paperId and returns the
// server-side version after the write.
func (c *Client) PutPaper(ctx context.Context, state domain.PaperState) (int64, error) {
	if state.PaperID == "" {
		return 0, fmt.Errorf("paper state has no paperId")
	}
	path := "/api/papers/" + url.PathEscape(state.PaperID)
	var resp struct {
		PaperID string `json:"paper_id"`
		Version int64  `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodPut, path, state, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}
