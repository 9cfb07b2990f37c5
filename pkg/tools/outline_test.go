package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/syllabus-ai/syllabus/pkg/store"
)

func outlineCourses() []store.Course {
	return []store.Course{
		{
			Title:      "MCP",
			Link:       "https://example.com/mcp",
			Instructor: "Ada",
			Lessons: []store.Lesson{
				{Number: 0, Title: "Introduction", Link: "https://example.com/mcp/0"},
				{Number: 1, Title: "Architecture"},
				{Number: 2, Title: "Protocols"},
				{Number: 3, Title: "Transports"},
			},
		},
		{
			Title: "Prompt Engineering",
		},
	}
}

func TestOutlineEmptyCatalog(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{})

	resp, err := tool.Invoke(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if resp.Content != "No courses available in the knowledge base." {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
}

func TestOutlineMetadataErrorVerbatim(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{metadataErr: errors.New("connection refused")})

	resp, err := tool.Invoke(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if resp.Content != "connection refused" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
}

func TestOutlineUnresolvableCourse(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{courses: outlineCourses(), resolved: ""})

	resp, err := tool.Invoke(context.Background(), request(map[string]any{"course_name": "Quantum Basket Weaving"}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if resp.Content != "No course found matching 'Quantum Basket Weaving'." {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if tool.LastSources() != nil {
		t.Fatalf("unresolvable course must not record sources: %+v", tool.LastSources())
	}
}

func TestOutlineSingleCourse(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{courses: outlineCourses(), resolved: "MCP"})

	resp, err := tool.Invoke(context.Background(), request(map[string]any{"course_name": "mcp"}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	for _, want := range []string{
		"## MCP",
		"**Course Link:** https://example.com/mcp",
		"**Instructor:** Ada",
		"**Lessons:**",
		"- Lesson 0: [Introduction](https://example.com/mcp/0)",
		"- Lesson 1: Architecture",
	} {
		if !strings.Contains(resp.Content, want) {
			t.Fatalf("outline missing %q in:\n%s", want, resp.Content)
		}
	}

	sources := tool.LastSources()
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].DisplayText != "MCP" || sources[0].LessonLink != "https://example.com/mcp" {
		t.Fatalf("unexpected source: %+v", sources[0])
	}
}

func TestOutlineSingleCourseNoLessons(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{courses: outlineCourses(), resolved: "Prompt Engineering"})

	resp, err := tool.Invoke(context.Background(), request(map[string]any{"course_name": "prompt"}))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if !strings.Contains(resp.Content, "*No lessons found for this course.*") {
		t.Fatalf("missing empty-lessons marker in:\n%s", resp.Content)
	}
}

func TestOutlineAllCourses(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{courses: outlineCourses()})

	resp, err := tool.Invoke(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	for _, want := range []string{
		"# Available Courses",
		"## MCP",
		"**Instructor:** Ada",
		"**Total Lessons:** 4",
		"**Topics:** L0: Introduction, L1: Architecture, L2: Protocols",
		"*... and 1 more lessons*",
		"## Prompt Engineering",
		"**Instructor:** Unknown",
		"**Total Lessons:** 0",
	} {
		if !strings.Contains(resp.Content, want) {
			t.Fatalf("catalog view missing %q in:\n%s", want, resp.Content)
		}
	}

	sources := tool.LastSources()
	if len(sources) != 2 {
		t.Fatalf("expected one source per course, got %d", len(sources))
	}
	if sources[0].CourseTitle != "MCP" || sources[1].CourseTitle != "Prompt Engineering" {
		t.Fatalf("sources out of order: %+v", sources)
	}
}
