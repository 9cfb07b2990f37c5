package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements VectorStore using Postgres + pgvector.
type PostgresStore struct {
	DB       *pgxpool.Pool
	embedder Embedder
}

// NewPostgresStore connects to Postgres and returns a pgvector-backed store.
func NewPostgresStore(ctx context.Context, connStr string, embedder Embedder) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if embedder == nil {
		embedder = DummyEmbedder{}
	}
	return &PostgresStore{DB: db, embedder: embedder}, nil
}

func (ps *PostgresStore) AddCourse(ctx context.Context, course Course, chunks []Chunk) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	titleVec, err := ps.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}
	_, err = ps.DB.Exec(ctx, `
                INSERT INTO courses (title, link, instructor, title_embedding)
                VALUES ($1, $2, $3, $4::vector)
                ON CONFLICT (title) DO UPDATE
                SET link = EXCLUDED.link, instructor = EXCLUDED.instructor,
                    title_embedding = EXCLUDED.title_embedding;
        `, course.Title, course.Link, course.Instructor, vectorLiteral(titleVec))
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}

	if _, err := ps.DB.Exec(ctx, `DELETE FROM lessons WHERE course_title = $1;`, course.Title); err != nil {
		return fmt.Errorf("clear lessons: %w", err)
	}
	if _, err := ps.DB.Exec(ctx, `DELETE FROM chunks WHERE course_title = $1;`, course.Title); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	for _, lesson := range course.Lessons {
		_, err := ps.DB.Exec(ctx, `
                        INSERT INTO lessons (course_title, number, title, link)
                        VALUES ($1, $2, $3, $4);
                `, course.Title, lesson.Number, lesson.Title, lesson.Link)
		if err != nil {
			return fmt.Errorf("insert lesson %d: %w", lesson.Number, err)
		}
	}

	for _, chunk := range chunks {
		vec, err := ps.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
		}
		_, err = ps.DB.Exec(ctx, `
                        INSERT INTO chunks (course_title, lesson_number, chunk_index, content, embedding)
                        VALUES ($1, $2, $3, $4, $5::vector);
                `, chunk.CourseTitle, chunk.LessonNumber, chunk.Index, chunk.Content, vectorLiteral(vec))
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}
	return nil
}

func (ps *PostgresStore) Search(ctx context.Context, query string, opts SearchOptions) (SearchResults, error) {
	if ps == nil || ps.DB == nil {
		return SearchResults{}, nil
	}
	courseFilter := ""
	if strings.TrimSpace(opts.CourseName) != "" {
		resolved, err := ps.ResolveCourseName(ctx, opts.CourseName)
		if err != nil {
			return SearchResults{}, err
		}
		if resolved == "" {
			return SearchResults{}, fmt.Errorf("No course found matching '%s'", opts.CourseName)
		}
		courseFilter = resolved
	}

	queryVec, err := ps.embedder.Embed(ctx, query)
	if err != nil {
		return SearchResults{}, fmt.Errorf("embed query: %w", err)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	sql := `
        SELECT content, course_title, lesson_number, chunk_index
        FROM chunks
        WHERE ($2 = '' OR course_title = $2)
          AND ($3::int IS NULL OR lesson_number = $3)
        ORDER BY embedding <-> $1::vector
        LIMIT $4;
        `
	rows, err := ps.DB.Query(ctx, sql, vectorLiteral(queryVec), courseFilter, opts.LessonNumber, limit)
	if err != nil {
		return SearchResults{}, err
	}
	defer rows.Close()

	results := SearchResults{}
	for rows.Next() {
		var doc string
		var meta ChunkMetadata
		if err := rows.Scan(&doc, &meta.CourseTitle, &meta.LessonNumber, &meta.ChunkIndex); err != nil {
			return SearchResults{}, err
		}
		results.Documents = append(results.Documents, doc)
		results.Metadata = append(results.Metadata, meta)
	}
	return results, rows.Err()
}

func (ps *PostgresStore) AllCoursesMetadata(ctx context.Context) ([]Course, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	rows, err := ps.DB.Query(ctx, `SELECT title, link, instructor FROM courses ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var course Course
		if err := rows.Scan(&course.Title, &course.Link, &course.Instructor); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range courses {
		lessonRows, err := ps.DB.Query(ctx, `
                        SELECT number, title, link FROM lessons
                        WHERE course_title = $1 ORDER BY number;
                `, courses[i].Title)
		if err != nil {
			return nil, err
		}
		for lessonRows.Next() {
			var lesson Lesson
			if err := lessonRows.Scan(&lesson.Number, &lesson.Title, &lesson.Link); err != nil {
				lessonRows.Close()
				return nil, err
			}
			courses[i].Lessons = append(courses[i].Lessons, lesson)
		}
		err = lessonRows.Err()
		lessonRows.Close()
		if err != nil {
			return nil, err
		}
	}
	return courses, nil
}

// ResolveCourseName prefers a case-insensitive substring match (smallest
// title first, so ties are deterministic), then falls back to the nearest
// title embedding.
func (ps *PostgresStore) ResolveCourseName(ctx context.Context, partial string) (string, error) {
	if ps == nil || ps.DB == nil {
		return "", nil
	}
	if strings.TrimSpace(partial) == "" {
		return "", nil
	}

	var title string
	err := ps.DB.QueryRow(ctx, `
                SELECT title FROM courses
                WHERE title ILIKE '%' || $1 || '%'
                ORDER BY title LIMIT 1;
        `, partial).Scan(&title)
	if err == nil {
		return title, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("resolve course name: %w", err)
	}

	partialVec, err := ps.embedder.Embed(ctx, partial)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}
	var similarity float64
	err = ps.DB.QueryRow(ctx, `
                SELECT title, 1 - (title_embedding <=> $1::vector) AS similarity
                FROM courses
                ORDER BY title_embedding <=> $1::vector, title
                LIMIT 1;
        `, vectorLiteral(partialVec)).Scan(&title, &similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve course name: %w", err)
	}
	return resolveIfAboveFloor(title, similarity), nil
}

// resolveIfAboveFloor keeps a fuzzy title match only when its cosine
// similarity clears the floor shared by every backend.
func resolveIfAboveFloor(title string, similarity float64) string {
	if similarity > resolveFloor {
		return title
	}
	return ""
}

func (ps *PostgresStore) CourseCount(ctx context.Context) (int, error) {
	if ps == nil || ps.DB == nil {
		return 0, nil
	}
	var count int
	if err := ps.DB.QueryRow(ctx, `SELECT COUNT(*) FROM courses;`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateSchema ensures the pgvector extension and tables are available.
func (ps *PostgresStore) CreateSchema(ctx context.Context, schemaPath string) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := ps.DB.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close releases the underlying Postgres connection pool.
func (ps *PostgresStore) Close() error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	ps.DB.Close()
	return nil
}

func vectorLiteral(vec []float32) string {
	jsonEmbed, _ := json.Marshal(vec)
	return fmt.Sprintf("[%s]", strings.Trim(string(jsonEmbed), "[]"))
}
