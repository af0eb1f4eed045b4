/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders the paper to local files: Markdown, LaTeX and plain
// text as string templates, PDF via gofpdf. Server-side DOCX/PDF rendering
// stays with the backend; these exporters work offline.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scholarai/internal/analytics"
	"scholarai/internal/citation"
	"scholarai/internal/domain"
	"scholarai/internal/storage"
)

// Markdown renders the paper as Markdown. Section content is passed through
// unchanged; the editor's inline markup survives into the output.
func Markdown(state domain.PaperState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", state.Title)
	fmt.Fprintf(&b, "**Authors:** %s\n\n", state.Authors)
	fmt.Fprintf(&b, "**Keywords:** %s\n\n", state.Keywords)
	fmt.Fprintf(&b, "## Abstract\n\n%s\n\n", state.Abstract)
	for _, s := range state.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Content)
	}
	return b.String()
}

// LaTeX renders the paper as a minimal article-class document.
func LaTeX(state domain.PaperState) string {
	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage[utf8]{inputenc}\n\n")
	fmt.Fprintf(&b, "\\title{%s}\n", state.Title)
	fmt.Fprintf(&b, "\\author{%s}\n", state.Authors)
	b.WriteString("\\date{}\n\n")
	b.WriteString("\\begin{document}\n\n")
	b.WriteString("\\maketitle\n\n")
	fmt.Fprintf(&b, "\\begin{abstract}\n%s\n\\end{abstract}\n\n", state.Abstract)
	for _, s := range state.Sections {
		fmt.Fprintf(&b, "\\section{%s}\n%s\n\n", s.Title, s.Content)
	}
	b.WriteString("\\end{document}")
	return b.String()
}

// PlainText renders the paper with all editor markup stripped, plus the
// bibliography in the paper's selected citation style.
func PlainText(state domain.PaperState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", state.Title)
	if state.Authors != "" {
		fmt.Fprintf(&b, "%s\n\n", state.Authors)
	}
	if state.Abstract != "" {
		fmt.Fprintf(&b, "Abstract\n\n%s\n\n", analytics.StripTags(state.Abstract))
	}
	for _, s := range state.Sections {
		fmt.Fprintf(&b, "%s\n\n%s\n\n", s.Title, analytics.StripTags(s.Content))
	}
	if len(state.Citations) > 0 {
		style := state.SelectedTemplate
		fmt.Fprintf(&b, "References\n\n%s\n", citation.FormatAll(state.Citations, style))
	}
	return b.String()
}

// Supported local export formats.
const (
	FormatMarkdown = "md"
	FormatLaTeX    = "tex"
	FormatText     = "txt"
)

// WriteLocal renders the workspace paper in the given format and writes it to
// outPath. A relative outPath lands under the workspace exports folder.
func WriteLocal(wh *storage.WorkspaceHandle, format, outPath string) error {
	if wh == nil {
		return fmt.Errorf("workspace handle is nil")
	}
	var content string
	switch format {
	case FormatMarkdown:
		content = Markdown(wh.State)
	case FormatLaTeX:
		content = LaTeX(wh.State)
	case FormatText:
		content = PlainText(wh.State)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(wh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
