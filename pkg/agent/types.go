package agent

import "context"

// ToolSpec describes how a tool is presented to the model. InputSchema is
// JSON-schema shaped: {"type": "object", "properties": {...}, "required": [...]}.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolRequest captures an invocation request for a tool.
type ToolRequest struct {
	SessionID string
	Arguments map[string]any
}

// ToolResponse is the text result of a tool invocation. Not-found and
// upstream-store conditions are reported inside Content rather than as
// errors; Invoke errors are reserved for malformed requests.
type ToolResponse struct {
	Content  string
	Metadata map[string]string
}

// Source is citation metadata recorded alongside a tool's text answer.
// It is consumed by the UI layer and never appears in the answer itself.
type Source struct {
	DisplayText  string `json:"display_text"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	LessonLink   string `json:"lesson_link,omitempty"`
}

// Tool exposes structured metadata, an invocation handler, and the sources
// recorded by its most recent invocation. Source tracking is part of the
// contract so the catalog never has to probe for it; tools that cite
// nothing keep an empty list, which embedding SourceTracker provides.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
	LastSources() []Source
	ResetSources()
}

// SourceTracker holds the single most recent source list for a tool. Each
// invocation overwrites the previous list; nothing is accumulated.
type SourceTracker struct {
	sources []Source
}

// SetSources replaces the tracked list.
func (t *SourceTracker) SetSources(sources []Source) {
	t.sources = sources
}

// LastSources returns the sources recorded by the most recent invocation.
func (t *SourceTracker) LastSources() []Source {
	return t.sources
}

// ResetSources clears the tracked list.
func (t *SourceTracker) ResetSources() {
	t.sources = nil
}
