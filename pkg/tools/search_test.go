package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/syllabus-ai/syllabus/pkg/agent"
	"github.com/syllabus-ai/syllabus/pkg/store"
)

// fakeStore is a scripted VectorStore for tool tests.
type fakeStore struct {
	results       store.SearchResults
	searchErr     error
	courses       []store.Course
	metadataErr   error
	resolved      string
	resolveErr    error
	searchCalls   int
	metadataCalls int
	lastQuery     string
	lastOpts      store.SearchOptions
}

func (f *fakeStore) Search(ctx context.Context, query string, opts store.SearchOptions) (store.SearchResults, error) {
	f.searchCalls++
	f.lastQuery = query
	f.lastOpts = opts
	return f.results, f.searchErr
}

func (f *fakeStore) AllCoursesMetadata(ctx context.Context) ([]store.Course, error) {
	f.metadataCalls++
	return f.courses, f.metadataErr
}

func (f *fakeStore) ResolveCourseName(ctx context.Context, partial string) (string, error) {
	return f.resolved, f.resolveErr
}

func (f *fakeStore) AddCourse(ctx context.Context, course store.Course, chunks []store.Chunk) error {
	return nil
}

func (f *fakeStore) CourseCount(ctx context.Context) (int, error) {
	return len(f.courses), nil
}

func intPtr(n int) *int { return &n }

func request(args map[string]any) agent.ToolRequest {
	return agent.ToolRequest{Arguments: args}
}

func TestSearchMissingQuery(t *testing.T) {
	tool := NewCourseSearchTool(&fakeStore{})

	_, err := tool.Invoke(context.Background(), request(map[string]any{}))
	if err == nil {
		t.Fatal("expected error for missing query")
	}
	if err.Error() != "missing or invalid 'query' argument" {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
}

func TestSearchStoreErrorVerbatim(t *testing.T) {
	fs := &fakeStore{searchErr: errors.New("No course found matching 'Bogus'")}
	tool := NewCourseSearchTool(fs)

	resp, err := tool.Invoke(context.Background(), request(map[string]any{"query": "anything"}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if resp.Content != "No course found matching 'Bogus'" {
		t.Fatalf("store error not passed through verbatim: %q", resp.Content)
	}
}

func TestSearchEmptyResultsMessage(t *testing.T) {
	fs := &fakeStore{}
	tool := NewCourseSearchTool(fs)

	cases := []struct {
		args map[string]any
		want string
	}{
		{map[string]any{"query": "q"}, "No relevant content found."},
		{map[string]any{"query": "q", "course_name": "MCP"}, "No relevant content found in course 'MCP'."},
		{map[string]any{"query": "q", "lesson_number": 3}, "No relevant content found in lesson 3."},
		{map[string]any{"query": "q", "course_name": "MCP", "lesson_number": 3}, "No relevant content found in course 'MCP' in lesson 3."},
	}
	for _, tc := range cases {
		resp, err := tool.Invoke(context.Background(), request(tc.args))
		if err != nil {
			t.Fatalf("Invoke(%v) returned error: %v", tc.args, err)
		}
		if resp.Content != tc.want {
			t.Fatalf("Invoke(%v) = %q, want %q", tc.args, resp.Content, tc.want)
		}
	}
}

func TestSearchFormattingAndSources(t *testing.T) {
	fs := &fakeStore{
		results: store.SearchResults{
			Documents: []string{"Protocol details", "Transport notes"},
			Metadata: []store.ChunkMetadata{
				{CourseTitle: "MCP", LessonNumber: intPtr(2), ChunkIndex: 0},
				{CourseTitle: "MCP", LessonNumber: intPtr(3), ChunkIndex: 1},
			},
		},
		courses: []store.Course{{
			Title: "MCP",
			Lessons: []store.Lesson{
				{Number: 2, Title: "Protocols", Link: "https://example.com/mcp/2"},
				{Number: 3, Title: "Transports"},
			},
		}},
	}
	tool := NewCourseSearchTool(fs)

	resp, err := tool.Invoke(context.Background(), request(map[string]any{"query": "protocol"}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	want := "[MCP - Lesson 2]\nProtocol details\n\n[MCP - Lesson 3]\nTransport notes"
	if resp.Content != want {
		t.Fatalf("formatted output mismatch:\ngot:  %q\nwant: %q", resp.Content, want)
	}

	sources := tool.LastSources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].DisplayText != "MCP - Lesson 2" {
		t.Fatalf("first source display = %q", sources[0].DisplayText)
	}
	if sources[0].LessonLink != "https://example.com/mcp/2" {
		t.Fatalf("first source link = %q", sources[0].LessonLink)
	}
	if sources[1].LessonLink != "" {
		t.Fatalf("lesson without link should yield empty link, got %q", sources[1].LessonLink)
	}

	// Both hits belong to one course: metadata was fetched once.
	if fs.metadataCalls != 1 {
		t.Fatalf("expected 1 metadata fetch, got %d", fs.metadataCalls)
	}
}

func TestSearchUnknownCourseTitleFallback(t *testing.T) {
	fs := &fakeStore{
		results: store.SearchResults{
			Documents: []string{"Orphaned chunk", "Numbered orphan"},
			Metadata: []store.ChunkMetadata{
				{CourseTitle: "", ChunkIndex: 0},
				{CourseTitle: "", LessonNumber: intPtr(4), ChunkIndex: 1},
			},
		},
	}
	tool := NewCourseSearchTool(fs)

	resp, err := tool.Invoke(context.Background(), request(map[string]any{"query": "orphan"}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	want := "[unknown]\nOrphaned chunk\n\n[unknown - Lesson 4]\nNumbered orphan"
	if resp.Content != want {
		t.Fatalf("formatted output mismatch:\ngot:  %q\nwant: %q", resp.Content, want)
	}

	sources := tool.LastSources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].DisplayText != "unknown" {
		t.Fatalf("first source display = %q", sources[0].DisplayText)
	}
	if sources[1].DisplayText != "unknown - Lesson 4" {
		t.Fatalf("second source display = %q", sources[1].DisplayText)
	}
	// No course name means no link lookup either.
	if fs.metadataCalls != 0 {
		t.Fatalf("expected no metadata fetch, got %d", fs.metadataCalls)
	}
}

func TestSearchSourcesOverwrittenPerInvocation(t *testing.T) {
	fs := &fakeStore{
		results: store.SearchResults{
			Documents: []string{"doc"},
			Metadata:  []store.ChunkMetadata{{CourseTitle: "MCP"}},
		},
	}
	tool := NewCourseSearchTool(fs)

	if _, err := tool.Invoke(context.Background(), request(map[string]any{"query": "one"})); err != nil {
		t.Fatalf("first Invoke: %v", err)
	}
	if _, err := tool.Invoke(context.Background(), request(map[string]any{"query": "two"})); err != nil {
		t.Fatalf("second Invoke: %v", err)
	}
	if got := len(tool.LastSources()); got != 1 {
		t.Fatalf("sources must be replaced, not accumulated; got %d", got)
	}
}

func TestSearchStoreErrorLeavesSources(t *testing.T) {
	fs := &fakeStore{
		results: store.SearchResults{
			Documents: []string{"doc"},
			Metadata:  []store.ChunkMetadata{{CourseTitle: "MCP"}},
		},
	}
	tool := NewCourseSearchTool(fs)

	if _, err := tool.Invoke(context.Background(), request(map[string]any{"query": "one"})); err != nil {
		t.Fatalf("first Invoke: %v", err)
	}

	fs.searchErr = fmt.Errorf("connection refused")
	resp, err := tool.Invoke(context.Background(), request(map[string]any{"query": "two"}))
	if err != nil {
		t.Fatalf("second Invoke: %v", err)
	}
	if resp.Content != "connection refused" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if got := len(tool.LastSources()); got != 1 {
		t.Fatalf("failed search must not clear prior sources; got %d", got)
	}
}

func TestSearchPassesFiltersToStore(t *testing.T) {
	fs := &fakeStore{}
	tool := NewCourseSearchTool(fs)

	// JSON-decoded numbers arrive as float64.
	_, err := tool.Invoke(context.Background(), request(map[string]any{
		"query":         "protocol",
		"course_name":   "MCP",
		"lesson_number": float64(4),
	}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if fs.lastQuery != "protocol" {
		t.Fatalf("query = %q", fs.lastQuery)
	}
	if fs.lastOpts.CourseName != "MCP" {
		t.Fatalf("course filter = %q", fs.lastOpts.CourseName)
	}
	if fs.lastOpts.LessonNumber == nil || *fs.lastOpts.LessonNumber != 4 {
		t.Fatalf("lesson filter = %v", fs.lastOpts.LessonNumber)
	}
}
