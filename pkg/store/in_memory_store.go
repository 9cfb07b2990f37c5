package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// resolveFloor is the minimum cosine similarity for a fuzzy title match.
const resolveFloor = 0.25

type chunkRecord struct {
	chunk     Chunk
	embedding []float32
}

// InMemoryStore implements VectorStore for tests and lightweight deployments.
// All ranking happens in-process with cosine similarity.
type InMemoryStore struct {
	embedder Embedder

	mu        sync.RWMutex
	courses   []Course
	titleVecs map[string][]float32
	chunks    []chunkRecord
}

func NewInMemoryStore(embedder Embedder) *InMemoryStore {
	if embedder == nil {
		embedder = DummyEmbedder{}
	}
	return &InMemoryStore{
		embedder:  embedder,
		titleVecs: make(map[string][]float32),
	}
}

func (s *InMemoryStore) AddCourse(ctx context.Context, course Course, chunks []Chunk) error {
	if strings.TrimSpace(course.Title) == "" {
		return fmt.Errorf("course title is empty")
	}
	titleVec, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}
	records := make([]chunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
		}
		records = append(records, chunkRecord{chunk: chunk, embedding: vec})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.titleVecs[course.Title]; ok {
		for i, existing := range s.courses {
			if existing.Title == course.Title {
				s.courses[i] = course
				break
			}
		}
		// Re-ingesting a course replaces its chunks.
		kept := s.chunks[:0]
		for _, rec := range s.chunks {
			if rec.chunk.CourseTitle != course.Title {
				kept = append(kept, rec)
			}
		}
		s.chunks = kept
	} else {
		s.courses = append(s.courses, course)
	}
	s.titleVecs[course.Title] = titleVec
	s.chunks = append(s.chunks, records...)
	return nil
}

func (s *InMemoryStore) Search(ctx context.Context, query string, opts SearchOptions) (SearchResults, error) {
	courseFilter := ""
	if strings.TrimSpace(opts.CourseName) != "" {
		resolved, err := s.ResolveCourseName(ctx, opts.CourseName)
		if err != nil {
			return SearchResults{}, err
		}
		if resolved == "" {
			return SearchResults{}, fmt.Errorf("No course found matching '%s'", opts.CourseName)
		}
		courseFilter = resolved
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return SearchResults{}, fmt.Errorf("embed query: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec   chunkRecord
		score float64
	}
	candidates := make([]scored, 0, len(s.chunks))
	for _, rec := range s.chunks {
		if courseFilter != "" && rec.chunk.CourseTitle != courseFilter {
			continue
		}
		if opts.LessonNumber != nil {
			if rec.chunk.LessonNumber == nil || *rec.chunk.LessonNumber != *opts.LessonNumber {
				continue
			}
		}
		candidates = append(candidates, scored{rec: rec, score: cosineSimilarity(queryVec, rec.embedding)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := SearchResults{}
	for _, c := range candidates {
		results.Documents = append(results.Documents, c.rec.chunk.Content)
		results.Metadata = append(results.Metadata, ChunkMetadata{
			CourseTitle:  c.rec.chunk.CourseTitle,
			LessonNumber: c.rec.chunk.LessonNumber,
			ChunkIndex:   c.rec.chunk.Index,
		})
	}
	return results, nil
}

func (s *InMemoryStore) AllCoursesMetadata(_ context.Context) ([]Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Course, len(s.courses))
	copy(out, s.courses)
	return out, nil
}

// ResolveCourseName matches a partial name against stored titles. A
// case-insensitive substring match wins outright; otherwise the highest
// embedding similarity above the floor wins. Ties go to the
// lexicographically smaller title so resolution stays deterministic.
func (s *InMemoryStore) ResolveCourseName(ctx context.Context, partial string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(partial))
	if needle == "" {
		return "", nil
	}

	s.mu.RLock()
	titles := make([]string, 0, len(s.courses))
	for _, course := range s.courses {
		titles = append(titles, course.Title)
	}
	s.mu.RUnlock()

	sorted := append([]string(nil), titles...)
	sort.Strings(sorted)
	for _, title := range sorted {
		if strings.Contains(strings.ToLower(title), needle) {
			return title, nil
		}
	}

	partialVec, err := s.embedder.Embed(ctx, partial)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}
	// Iterating titles in sorted order with a strict comparison means equal
	// scores resolve to the lexicographically smaller title.
	best := ""
	bestScore := resolveFloor
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, title := range sorted {
		score := cosineSimilarity(partialVec, s.titleVecs[title])
		if score > bestScore {
			best = title
			bestScore = score
		}
	}
	return best, nil
}

func (s *InMemoryStore) CourseCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses), nil
}
