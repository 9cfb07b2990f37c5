package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/syllabus-ai/syllabus/pkg/store"
)

var lessonHeading = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseCourseDocument reads a course transcript in the expected layout:
// three metadata header lines (Course Title / Course Link / Course
// Instructor), then `Lesson N: title` sections, each optionally followed
// by a `Lesson Link:` line, then the lesson transcript. Content before the
// first lesson heading is attributed to the course without a lesson number.
func ParseCourseDocument(r io.Reader, chunkSize, overlap int) (store.Course, []store.Chunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	course := store.Course{}
	headerDone := false
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if !headerDone {
			switch {
			case strings.HasPrefix(line, "Course Title:"):
				course.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
				continue
			case strings.HasPrefix(line, "Course Link:"):
				course.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
				continue
			case strings.HasPrefix(line, "Course Instructor:"):
				course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
				continue
			case strings.TrimSpace(line) == "":
				continue
			}
			headerDone = true
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return store.Course{}, nil, err
	}
	if course.Title == "" {
		return store.Course{}, nil, fmt.Errorf("document has no 'Course Title:' header")
	}

	var chunks []store.Chunk
	var sectionText []string
	var currentLesson *store.Lesson

	flush := func() {
		text := strings.TrimSpace(strings.Join(sectionText, "\n"))
		sectionText = nil
		if text == "" {
			return
		}
		var lessonNumber *int
		prefix := fmt.Sprintf("Course %s content: ", course.Title)
		if currentLesson != nil {
			n := currentLesson.Number
			lessonNumber = &n
			prefix = fmt.Sprintf("Course %s Lesson %d content: ", course.Title, n)
		}
		for _, piece := range ChunkText(text, chunkSize, overlap) {
			chunks = append(chunks, store.Chunk{
				Content:      prefix + piece,
				CourseTitle:  course.Title,
				LessonNumber: lessonNumber,
				Index:        len(chunks),
			})
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := lessonHeading.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			if currentLesson != nil {
				course.Lessons = append(course.Lessons, *currentLesson)
			}
			number, _ := strconv.Atoi(m[1])
			lesson := store.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, "Lesson Link:") {
					lesson.Link = strings.TrimSpace(strings.TrimPrefix(next, "Lesson Link:"))
					i++
				}
			}
			currentLesson = &lesson
			continue
		}
		sectionText = append(sectionText, line)
	}
	flush()
	if currentLesson != nil {
		course.Lessons = append(course.Lessons, *currentLesson)
	}

	return course, chunks, nil
}
