package store

import "context"

// DefaultLimit is the number of chunks a search returns when the caller
// does not ask for a specific amount.
const DefaultLimit = 5

// Lesson is one entry in a course outline.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Course is the catalog record for one course. Title is the stable natural
// key; every chunk and lesson refers back to it.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson returns the lesson with the given number, scanning in order.
func (c Course) Lesson(number int) (Lesson, bool) {
	for _, lesson := range c.Lessons {
		if lesson.Number == number {
			return lesson, true
		}
	}
	return Lesson{}, false
}

// Chunk is one indexed piece of course content.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	Index        int
}

// ChunkMetadata is the per-document metadata returned with search hits.
type ChunkMetadata struct {
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// SearchResults pairs matched documents with their metadata. The two
// slices share index alignment: Documents[i] belongs to Metadata[i].
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
}

// IsEmpty reports whether the search matched nothing.
func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

// SearchOptions scope a content search. CourseName may be a partial title;
// the store resolves it before filtering. A nil LessonNumber means no
// lesson filter. Limit <= 0 uses DefaultLimit.
type SearchOptions struct {
	CourseName   string
	LessonNumber *int
	Limit        int
}

// VectorStore is the semantic backend the tools query. Implementations own
// embedding and similarity ranking; callers only see documents, metadata,
// and canonical course records.
type VectorStore interface {
	// Search runs a scoped semantic query. An unresolvable CourseName is
	// an error; an empty result with nil error means no matches.
	Search(ctx context.Context, query string, opts SearchOptions) (SearchResults, error)

	// AllCoursesMetadata returns every course record in insertion order.
	AllCoursesMetadata(ctx context.Context) ([]Course, error)

	// ResolveCourseName maps a partial or fuzzy name to a canonical title.
	// It returns "" with a nil error when nothing matches.
	ResolveCourseName(ctx context.Context, partial string) (string, error)

	// AddCourse stores a course record and its content chunks.
	AddCourse(ctx context.Context, course Course, chunks []Chunk) error

	// CourseCount returns the number of stored courses.
	CourseCount(ctx context.Context) (int, error)
}

// SchemaInitializer allows stores to expose optional schema/bootstrap routines.
type SchemaInitializer interface {
	CreateSchema(ctx context.Context, schemaPath string) error
}
