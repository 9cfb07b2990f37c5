package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/syllabus-ai/syllabus/pkg/agent"
	"github.com/syllabus-ai/syllabus/pkg/store"
)

// topicPreviewCount is how many lesson titles the all-courses view shows
// per course before truncating.
const topicPreviewCount = 3

// CourseOutlineTool renders course structure: a single course's full
// outline, or a summary of every course in the catalog.
type CourseOutlineTool struct {
	agent.SourceTracker
	store store.VectorStore
}

func NewCourseOutlineTool(vs store.VectorStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: vs}
}

func (t *CourseOutlineTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name:        "get_course_outline",
		Description: "Get structured course outline with lessons, instructor, and links",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title to get outline for (partial matches work). Leave empty to get all courses.",
				},
			},
			"required": []string{},
		},
	}
}

func (t *CourseOutlineTool) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	courses, err := t.store.AllCoursesMetadata(ctx)
	if err != nil {
		return agent.ToolResponse{Content: err.Error()}, nil
	}
	if len(courses) == 0 {
		return agent.ToolResponse{Content: "No courses available in the knowledge base."}, nil
	}

	courseName, ok := stringArg(req.Arguments, "course_name")
	if !ok {
		return agent.ToolResponse{Content: t.formatAllCourses(courses)}, nil
	}

	resolved, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil || resolved == "" {
		return agent.ToolResponse{Content: fmt.Sprintf("No course found matching '%s'.", courseName)}, nil
	}
	for _, course := range courses {
		if course.Title == resolved {
			return agent.ToolResponse{Content: t.formatSingleCourse(course)}, nil
		}
	}
	return agent.ToolResponse{Content: fmt.Sprintf("Course metadata not found for '%s'.", resolved)}, nil
}

func (t *CourseOutlineTool) formatSingleCourse(course store.Course) string {
	var lines []string

	lines = append(lines, "## "+course.Title)
	if course.Link != "" {
		lines = append(lines, "**Course Link:** "+course.Link)
	}
	if course.Instructor != "" {
		lines = append(lines, "**Instructor:** "+course.Instructor)
	}

	if len(course.Lessons) > 0 {
		lines = append(lines, "\n**Lessons:**")
		for _, lesson := range course.Lessons {
			title := lesson.Title
			if title == "" {
				title = "Untitled"
			}
			if lesson.Link != "" {
				lines = append(lines, fmt.Sprintf("- Lesson %d: [%s](%s)", lesson.Number, title, lesson.Link))
			} else {
				lines = append(lines, fmt.Sprintf("- Lesson %d: %s", lesson.Number, title))
			}
		}
	} else {
		lines = append(lines, "\n*No lessons found for this course.*")
	}

	t.SetSources([]agent.Source{{
		DisplayText: course.Title,
		CourseTitle: course.Title,
		LessonLink:  course.Link,
	}})

	return strings.Join(lines, "\n")
}

func (t *CourseOutlineTool) formatAllCourses(courses []store.Course) string {
	lines := []string{"# Available Courses\n"}
	var sources []agent.Source

	for _, course := range courses {
		instructor := course.Instructor
		if instructor == "" {
			instructor = "Unknown"
		}

		lines = append(lines, "## "+course.Title)
		if course.Link != "" {
			lines = append(lines, "**Link:** "+course.Link)
		}
		lines = append(lines, "**Instructor:** "+instructor)
		lines = append(lines, fmt.Sprintf("**Total Lessons:** %d", len(course.Lessons)))

		sources = append(sources, agent.Source{
			DisplayText: course.Title,
			CourseTitle: course.Title,
			LessonLink:  course.Link,
		})

		if len(course.Lessons) > 0 {
			var topics []string
			for _, lesson := range course.Lessons {
				if len(topics) == topicPreviewCount {
					break
				}
				title := lesson.Title
				if title == "" {
					title = "Untitled"
				}
				topics = append(topics, fmt.Sprintf("L%d: %s", lesson.Number, title))
			}
			lines = append(lines, "**Topics:** "+strings.Join(topics, ", "))
			if extra := len(course.Lessons) - topicPreviewCount; extra > 0 {
				lines = append(lines, fmt.Sprintf("*... and %d more lessons*", extra))
			}
		}

		lines = append(lines, "")
	}

	t.SetSources(sources)
	return strings.Join(lines, "\n")
}
