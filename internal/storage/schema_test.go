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
	"os"
	"path/filepath"
	"testing"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"scholarai/internal/domain"
)

func TestPaperConformsToSchema(t *testing.T) {
	root := t.TempDir()
	wh, err := InitWorkspace(root, defaultMinimalState())
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}

	// Load document bytes
	data, err := os.ReadFile(wh.PaperPath)
	if err != nil {
		t.Fatalf("read paper: %v", err)
	}

	// Load schema bytes via relative path to repository docs
	schemaPath := filepath.Join("..", "..", "docs", "paper.schema.json")
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("paper does not conform to schema")
	}
}

// defaultMinimalState returns a small but fully populated state for schema compliance
func defaultMinimalState() domain.PaperState {
	sec := domain.Section{ID: "s1", Title: "Introduction", Content: "<p>hello</p>", WordCount: 1}
	return domain.PaperState{
		Title:    "Schema Test",
		Sections: []domain.Section{sec},
		Citations: []domain.Citation{
			{ID: "1", Author: "Smith, J.", Title: "X", Journal: "Y", Year: "2024", Type: domain.StyleIEEE},
		},
		Versions: []domain.Version{
			{ID: "version-1-a", Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), Title: "Schema Test", Sections: []domain.Section{sec}},
		},
		WritingSessions: []domain.WritingSession{
			{Date: "2025-06-01", WordsWritten: 1, TimeSpentMs: 60000, AIAssistanceUsed: 0},
		},
		PaperID:       "paper-1-a",
		DismissedTips: []string{},
	}
}
