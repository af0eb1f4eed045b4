/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend wraps the remote AI service HTTP API. Every call takes a
// context and returns the decoded response or an error; failed calls are not
// retried, callers surface them to the user as-is.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scholarai/internal/domain"
)

// Writing improvement actions accepted by ImproveWriting.
const (
	ActionImproveClarity = "improve_clarity"
	ActionMakeFormal     = "make_formal"
	ActionSimplify       = "simplify"
	ActionExpand         = "expand"
	ActionSummarize      = "summarize"
	ActionFixGrammar     = "fix_grammar"
)

// Research paper types accepted by Brainstorm.
const (
	ResearchExperimental = "experimental"
	ResearchReview       = "review"
	ResearchCaseStudy    = "case_study"
	ResearchTheoretical  = "theoretical"
	ResearchSurvey       = "survey"
)

// Client is an HTTP client for the AI backend API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTimeout overrides the per-request timeout (defaults to 30s).
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.client.Timeout = d
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// HealthStatus is the backend liveness report.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var hs HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

// Templates lists all journal formatting templates.
func (c *Client) Templates(ctx context.Context) ([]domain.TemplateFormat, error) {
	var list []domain.TemplateFormat
	if err := c.doJSON(ctx, http.MethodGet, "/api/templates", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Template fetches one template by its format name.
func (c *Client) Template(ctx context.Context, name string) (*domain.TemplateFormat, error) {
	var tf domain.TemplateFormat
	path := "/api/templates/" + url.PathEscape(name)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &tf); err != nil {
		return nil, err
	}
	return &tf, nil
}

// Detect runs AI-content detection over the given text.
func (c *Client) Detect(ctx context.Context, text string) (*domain.DetectionResult, error) {
	req := struct {
		Text string `json:"text"`
	}{Text: text}
	var dr domain.DetectionResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/detect", req, &dr); err != nil {
		return nil, err
	}
	return &dr, nil
}

// GenerateDisclosure produces an academic-integrity disclosure statement for
// the named AI tools.
func (c *Client) GenerateDisclosure(ctx context.Context, aiToolsUsed []string, purpose string) (string, error) {
	req := struct {
		AIToolsUsed []string `json:"ai_tools_used"`
		Purpose     string   `json:"purpose"`
	}{AIToolsUsed: aiToolsUsed, Purpose: purpose}
	var resp struct {
		DisclosureStatement string `json:"disclosure_statement"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate-disclosure", req, &resp); err != nil {
		return "", err
	}
	return resp.DisclosureStatement, nil
}

// BrainstormResult is the outline suggestion set for a paper topic.
type BrainstormResult struct {
	TitleSuggestions       []string            `json:"title_suggestions"`
	Structure              []BrainstormSection `json:"structure"`
	KeyPoints              []string            `json:"key_points"`
	MethodologySuggestions []string            `json:"methodology_suggestions"`
	ReferenceTopics        []string            `json:"reference_topics"`
}

// BrainstormSection is one suggested section of the outline.
type BrainstormSection struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Brainstorm asks the backend for an outline for the given topic.
func (c *Client) Brainstorm(ctx context.Context, topic, field, researchType string) (*BrainstormResult, error) {
	req := struct {
		Topic        string `json:"topic"`
		ResearchType string `json:"research_type"`
		Field        string `json:"field"`
	}{Topic: topic, ResearchType: researchType, Field: field}
	var br BrainstormResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/brainstorm", req, &br); err != nil {
		return nil, err
	}
	return &br, nil
}

// ImproveWriting rewrites text according to one of the Action* constants.
func (c *Client) ImproveWriting(ctx context.Context, text, action string) (string, error) {
	req := struct {
		Text   string `json:"text"`
		Action string `json:"action"`
	}{Text: text, Action: action}
	var resp struct {
		ImprovedText string `json:"improved_text"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/writing/improve", req, &resp); err != nil {
		return "", err
	}
	return resp.ImprovedText, nil
}

// GenerateSection drafts content for a named section given paper context.
func (c *Client) GenerateSection(ctx context.Context, sectionName, paperContext string, keyPoints []string) (string, error) {
	req := struct {
		SectionName string   `json:"section_name"`
		Context     string   `json:"context"`
		KeyPoints   []string `json:"key_points,omitempty"`
	}{SectionName: sectionName, Context: paperContext, KeyPoints: keyPoints}
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/writing/generate-section", req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Chat sends a free-form assistant message with optional paper context.
func (c *Client) Chat(ctx context.Context, message, chatContext string) (string, error) {
	req := struct {
		Message string `json:"message"`
		Context string `json:"context,omitempty"`
	}{Message: message, Context: chatContext}
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// CitationFromDOI resolves bibliographic fields for a DOI.
func (c *Client) CitationFromDOI(ctx context.Context, doi string) (*domain.Citation, error) {
	var cit domain.Citation
	path := "/api/citations/doi/" + url.PathEscape(doi)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &cit); err != nil {
		return nil, err
	}
	return &cit, nil
}

// FormatCitation asks the backend to render a citation in the given style.
// The local internal/citation package produces the same templates offline.
func (c *Client) FormatCitation(ctx context.Context, cit domain.Citation, style string) (string, error) {
	req := struct {
		Citation domain.Citation `json:"citation"`
		Style    string          `json:"style"`
	}{Citation: cit, Style: style}
	var resp struct {
		Formatted string `json:"formatted"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/citations/format", req, &resp); err != nil {
		return "", err
	}
	return resp.Formatted, nil
}

// Humanize rewrites text to read less machine-generated. style is one of
// academic, casual or formal; the backend falls back to academic.
func (c *Client) Humanize(ctx context.Context, text, style string) (string, []string, error) {
	req := struct {
		Text  string `json:"text"`
		Style string `json:"style,omitempty"`
	}{Text: text, Style: style}
	var resp struct {
		HumanizedText string   `json:"humanized_text"`
		ChangesMade   []string `json:"changes_made"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/humanize", req, &resp); err != nil {
		return "", nil, err
	}
	return resp.HumanizedText, resp.ChangesMade, nil
}

// AnalyzeFile uploads a manuscript (docx/pdf/txt) for structural analysis and
// AI detection. filename determines the server-side parser.
func (c *Client) AnalyzeFile(ctx context.Context, filename string, r io.Reader) (*domain.FileAnalysis, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/upload/analyze", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server POST /api/upload/analyze: %s", resp.Status)
	}
	var fa domain.FileAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&fa); err != nil {
		return nil, err
	}
	return &fa, nil
}

// ExportRequest is the document payload for server-side export.
type ExportRequest struct {
	Title          string          `json:"title"`
	Authors        []string        `json:"authors"`
	Abstract       string          `json:"abstract"`
	Keywords       []string        `json:"keywords"`
	Sections       []ExportSection `json:"sections"`
	TemplateFormat string          `json:"template_format"`
	AIDisclosure   string          `json:"ai_disclosure,omitempty"`
	FileFormat     string          `json:"file_format,omitempty"` // docx, pdf or txt
}

// ExportSection is one section of the export payload.
type ExportSection struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ExportDocument renders the paper server-side and returns the binary stream
// and its content type.
func (c *Client) ExportDocument(ctx context.Context, er ExportRequest) ([]byte, string, error) {
	b, err := json.Marshal(er)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/export/file", bytes.NewReader(b))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("server POST /api/export/file: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// ModelSettings is the backend's model routing configuration.
type ModelSettings struct {
	Provider        string             `json:"provider"`
	DefaultModel    string             `json:"default_model"`
	SmartSwitching  bool               `json:"smart_switching"`
	AvailableModels []domain.ModelInfo `json:"available_models"`
}

// GetModelSettings fetches the provider, default model and available models.
func (c *Client) GetModelSettings(ctx context.Context) (*ModelSettings, error) {
	var ms ModelSettings
	if err := c.doJSON(ctx, http.MethodGet, "/api/models/settings", nil, &ms); err != nil {
		return nil, err
	}
	return &ms, nil
}
