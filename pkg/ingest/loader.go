package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syllabus-ai/syllabus/pkg/store"
)

// Loader reads course documents from disk into a vector store.
type Loader struct {
	Store     store.VectorStore
	ChunkSize int
	Overlap   int
}

// LoadFolder ingests every .txt and .md file in dir, in name order.
// Courses whose title is already stored are skipped unless replace is set.
// Returns the number of courses and chunks added.
func (l *Loader) LoadFolder(ctx context.Context, dir string, replace bool) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	existing := make(map[string]bool)
	if !replace {
		courses, err := l.Store.AllCoursesMetadata(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("list existing courses: %w", err)
		}
		for _, course := range courses {
			existing[course.Title] = true
		}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		course, chunks, err := l.loadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", name, err)
			continue
		}
		if existing[course.Title] {
			continue
		}
		if err := l.Store.AddCourse(ctx, course, chunks); err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("store course %q: %w", course.Title, err)
		}
		existing[course.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
	}
	return coursesAdded, chunksAdded, nil
}

func (l *Loader) loadFile(path string) (store.Course, []store.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.Course{}, nil, err
	}
	defer f.Close()
	return ParseCourseDocument(f, l.ChunkSize, l.Overlap)
}
