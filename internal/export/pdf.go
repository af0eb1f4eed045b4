/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"scholarai/internal/analytics"
	"scholarai/internal/citation"
	"scholarai/internal/domain"
	"scholarai/internal/storage"
)

// PDFOptions controls PDF export behavior.
// Template supplies font family/size; nil falls back to Times 12pt.
// We rely on gofpdf's built-in core fonts for portability, so the template's
// font family is mapped to the closest of Times/Helvetica/Courier.
type PDFOptions struct {
	Template          *domain.TemplateFormat
	IncludeReferences bool
	AIDisclosure      string
}

// ExportPaperPDF renders the workspace paper to a PDF at outPath.
// A relative outPath lands under the workspace exports folder.
func ExportPaperPDF(wh *storage.WorkspaceHandle, outPath string, opt PDFOptions) error {
	if wh == nil {
		return fmt.Errorf("workspace handle is nil")
	}
	state := wh.State

	family := "Times"
	size := 12.0
	if opt.Template != nil {
		family = coreFontFor(opt.Template.FontFamily)
		if opt.Template.FontSize > 0 {
			size = float64(opt.Template.FontSize)
		}
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(state.Title, true)
	pdf.SetAuthor(state.Authors, true)
	pdf.SetMargins(72, 72, 72)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	textW := pageW - 144

	// Title block
	pdf.SetFont(family, "B", size+6)
	pdf.MultiCell(textW, (size+6)*1.4, state.Title, "", "C", false)
	pdf.Ln(6)
	if state.Authors != "" {
		pdf.SetFont(family, "", size)
		pdf.MultiCell(textW, size*1.4, state.Authors, "", "C", false)
		pdf.Ln(6)
	}

	// Abstract and keywords
	if state.Abstract != "" {
		pdf.SetFont(family, "B", size)
		pdf.MultiCell(textW, size*1.4, "Abstract", "", "L", false)
		pdf.SetFont(family, "I", size-1)
		pdf.MultiCell(textW, size*1.4, analytics.StripTags(state.Abstract), "", "L", false)
		pdf.Ln(4)
	}
	if state.Keywords != "" {
		pdf.SetFont(family, "I", size-1)
		pdf.MultiCell(textW, size*1.4, "Keywords: "+state.Keywords, "", "L", false)
		pdf.Ln(8)
	}

	// Sections
	for _, s := range state.Sections {
		pdf.SetFont(family, "B", size+2)
		pdf.MultiCell(textW, (size+2)*1.4, s.Title, "", "L", false)
		pdf.SetFont(family, "", size)
		body := analytics.StripTags(s.Content)
		if body != "" {
			pdf.MultiCell(textW, size*1.4, body, "", "L", false)
		}
		pdf.Ln(6)
	}

	// References
	if opt.IncludeReferences && len(state.Citations) > 0 {
		pdf.SetFont(family, "B", size+2)
		pdf.MultiCell(textW, (size+2)*1.4, "References", "", "L", false)
		pdf.SetFont(family, "", size-1)
		for _, c := range state.Citations {
			pdf.MultiCell(textW, (size-1)*1.4, citation.Format(c, state.SelectedTemplate), "", "L", false)
			pdf.Ln(2)
		}
	}

	// AI disclosure statement, when provided
	if opt.AIDisclosure != "" {
		pdf.Ln(6)
		pdf.SetFont(family, "I", size-2)
		pdf.MultiCell(textW, (size-2)*1.4, opt.AIDisclosure, "", "L", false)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(wh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// coreFontFor maps a template font family to a gofpdf built-in core font.
func coreFontFor(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "times"), strings.Contains(f, "serif"), strings.Contains(f, "georgia"), strings.Contains(f, "garamond"):
		return "Times"
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return "Courier"
	case f == "":
		return "Times"
	default:
		return "Helvetica"
	}
}
