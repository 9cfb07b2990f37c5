package ingest

import (
	"strings"
	"testing"
)

const sampleDocument = `Course Title: Introduction to MCP
Course Link: https://example.com/mcp
Course Instructor: Ada

Lesson 0: Welcome
Lesson Link: https://example.com/mcp/0
Welcome to the course. This lesson covers the basics.

Lesson 1: Protocols
Protocol messages are exchanged over a transport.
`

func TestParseCourseDocument(t *testing.T) {
	course, chunks, err := ParseCourseDocument(strings.NewReader(sampleDocument), 0, 0)
	if err != nil {
		t.Fatalf("ParseCourseDocument returned error: %v", err)
	}

	if course.Title != "Introduction to MCP" {
		t.Fatalf("title = %q", course.Title)
	}
	if course.Link != "https://example.com/mcp" {
		t.Fatalf("link = %q", course.Link)
	}
	if course.Instructor != "Ada" {
		t.Fatalf("instructor = %q", course.Instructor)
	}

	if len(course.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(course.Lessons))
	}
	if course.Lessons[0].Number != 0 || course.Lessons[0].Title != "Welcome" {
		t.Fatalf("lesson 0 = %+v", course.Lessons[0])
	}
	if course.Lessons[0].Link != "https://example.com/mcp/0" {
		t.Fatalf("lesson 0 link = %q", course.Lessons[0].Link)
	}
	if course.Lessons[1].Link != "" {
		t.Fatalf("lesson 1 should have no link, got %q", course.Lessons[1].Link)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Content, "Course Introduction to MCP Lesson 0 content: ") {
		t.Fatalf("chunk 0 prefix: %q", chunks[0].Content)
	}
	if chunks[0].LessonNumber == nil || *chunks[0].LessonNumber != 0 {
		t.Fatalf("chunk 0 lesson = %v", chunks[0].LessonNumber)
	}
	if chunks[1].LessonNumber == nil || *chunks[1].LessonNumber != 1 {
		t.Fatalf("chunk 1 lesson = %v", chunks[1].LessonNumber)
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.CourseTitle != "Introduction to MCP" {
			t.Fatalf("chunk %d course = %q", i, chunk.CourseTitle)
		}
	}
}

func TestParseCourseDocumentPreambleContent(t *testing.T) {
	doc := `Course Title: Minimal
Some introduction before any lesson heading.

Lesson 1: Only Lesson
Lesson body.
`
	course, chunks, err := ParseCourseDocument(strings.NewReader(doc), 0, 0)
	if err != nil {
		t.Fatalf("ParseCourseDocument returned error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].LessonNumber != nil {
		t.Fatalf("preamble chunk must have no lesson number, got %v", chunks[0].LessonNumber)
	}
	if !strings.HasPrefix(chunks[0].Content, "Course Minimal content: ") {
		t.Fatalf("preamble chunk prefix: %q", chunks[0].Content)
	}
	if len(course.Lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(course.Lessons))
	}
}

func TestParseCourseDocumentMissingTitle(t *testing.T) {
	_, _, err := ParseCourseDocument(strings.NewReader("just some text"), 0, 0)
	if err == nil {
		t.Fatal("expected error for document without a title header")
	}
}
