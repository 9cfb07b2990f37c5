package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/syllabus-ai/syllabus/pkg/agent"
	"github.com/syllabus-ai/syllabus/pkg/store"
)

// CourseSearchTool searches course content with semantic course-name
// matching and optional lesson filtering.
type CourseSearchTool struct {
	agent.SourceTracker
	store store.VectorStore
}

func NewCourseSearchTool(vs store.VectorStore) *CourseSearchTool {
	return &CourseSearchTool{store: vs}
}

func (t *CourseSearchTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Invoke runs the search. Store errors come back verbatim as the response
// text and leave previously recorded sources untouched.
func (t *CourseSearchTool) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	query, ok := stringArg(req.Arguments, "query")
	if !ok {
		return agent.ToolResponse{}, fmt.Errorf("missing or invalid 'query' argument")
	}

	opts := store.SearchOptions{}
	courseName, hasCourse := stringArg(req.Arguments, "course_name")
	if hasCourse {
		opts.CourseName = courseName
	}
	if lessonNumber, ok := intArg(req.Arguments, "lesson_number"); ok {
		n := lessonNumber
		opts.LessonNumber = &n
	}

	results, err := t.store.Search(ctx, query, opts)
	if err != nil {
		return agent.ToolResponse{Content: err.Error()}, nil
	}
	if results.IsEmpty() {
		var filters strings.Builder
		if hasCourse {
			fmt.Fprintf(&filters, " in course '%s'", courseName)
		}
		if opts.LessonNumber != nil {
			fmt.Fprintf(&filters, " in lesson %d", *opts.LessonNumber)
		}
		return agent.ToolResponse{Content: fmt.Sprintf("No relevant content found%s.", filters.String())}, nil
	}

	return agent.ToolResponse{Content: t.formatResults(ctx, results)}, nil
}

// formatResults renders each hit under a course/lesson header and records
// one source per hit, overwriting the previous source list.
func (t *CourseSearchTool) formatResults(ctx context.Context, results store.SearchResults) string {
	var formatted []string
	var sources []agent.Source

	// One metadata fetch per distinct course within this call.
	courseCache := make(map[string]*store.Course)

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		courseTitle := meta.CourseTitle
		if courseTitle == "" {
			courseTitle = "unknown"
		}

		header := "[" + courseTitle
		if meta.LessonNumber != nil {
			header += fmt.Sprintf(" - Lesson %d", *meta.LessonNumber)
		}
		header += "]"

		lessonLink := ""
		if meta.CourseTitle != "" && meta.LessonNumber != nil {
			if course := t.courseMetadata(ctx, courseCache, meta.CourseTitle); course != nil {
				if lesson, ok := course.Lesson(*meta.LessonNumber); ok {
					lessonLink = lesson.Link
				}
			}
		}

		displayText := courseTitle
		if meta.LessonNumber != nil {
			displayText = fmt.Sprintf("%s - Lesson %d", courseTitle, *meta.LessonNumber)
		}
		sources = append(sources, agent.Source{
			DisplayText:  displayText,
			CourseTitle:  meta.CourseTitle,
			LessonNumber: meta.LessonNumber,
			LessonLink:   lessonLink,
		})

		formatted = append(formatted, header+"\n"+doc)
	}

	t.SetSources(sources)
	return strings.Join(formatted, "\n\n")
}

// courseMetadata looks up one course record, caching per call. Lookup
// failures degrade to a missing link; they never abort formatting.
func (t *CourseSearchTool) courseMetadata(ctx context.Context, cache map[string]*store.Course, title string) *store.Course {
	if course, ok := cache[title]; ok {
		return course
	}
	courses, err := t.store.AllCoursesMetadata(ctx)
	if err != nil {
		log.Printf("course metadata lookup failed for %q: %v", title, err)
		cache[title] = nil
		return nil
	}
	var found *store.Course
	for i := range courses {
		if courses[i].Title == title {
			found = &courses[i]
			break
		}
	}
	cache[title] = found
	return found
}
