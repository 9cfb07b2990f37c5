// Package syllabus wires a semantic course-material store, the tools that
// query it, and a language model into a question-answering system. Each
// query runs one dispatch/collect/reset cycle: the model may call tools,
// the catalog gathers the citation sources those calls produced, and the
// sources are handed back to the caller before the next turn begins.
package syllabus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syllabus-ai/syllabus/pkg/agent"
	"github.com/syllabus-ai/syllabus/pkg/ingest"
	"github.com/syllabus-ai/syllabus/pkg/models"
	"github.com/syllabus-ai/syllabus/pkg/session"
	"github.com/syllabus-ai/syllabus/pkg/store"
	"github.com/syllabus-ai/syllabus/pkg/tools"
)

// Options configure a new System.
type Options struct {
	Store store.VectorStore
	Model models.Agent

	MaxHistory int // conversation exchanges kept per session
	ChunkSize  int // ingestion chunk budget, characters
	Overlap    int // ingestion chunk overlap, characters
}

// System owns the per-turn tool dispatch cycle.
type System struct {
	store    store.VectorStore
	model    models.Agent
	catalog  *agent.ToolCatalog
	sessions *session.Manager
	loader   *ingest.Loader
}

// New creates a System with the search and outline tools registered.
func New(opts Options) (*System, error) {
	if opts.Store == nil {
		return nil, errors.New("syllabus requires a vector store")
	}
	if opts.Model == nil {
		return nil, errors.New("syllabus requires a language model")
	}

	catalog, err := agent.NewToolCatalog(
		tools.NewCourseSearchTool(opts.Store),
		tools.NewCourseOutlineTool(opts.Store),
	)
	if err != nil {
		return nil, err
	}

	return &System{
		store:    opts.Store,
		model:    opts.Model,
		catalog:  catalog,
		sessions: session.NewManager(opts.MaxHistory),
		loader: &ingest.Loader{
			Store:     opts.Store,
			ChunkSize: opts.ChunkSize,
			Overlap:   opts.Overlap,
		},
	}, nil
}

// Catalog exposes the tool registry, e.g. for UTCP registration.
func (s *System) Catalog() *agent.ToolCatalog {
	return s.catalog
}

// NewSession returns a fresh session identifier.
func (s *System) NewSession() string {
	return s.sessions.CreateSession()
}

// Query answers one user message. The returned sources are the citations
// recorded by whichever tool the model invoked this turn; they are cleared
// from the catalog before returning.
func (s *System) Query(ctx context.Context, sessionID, userInput string) (string, []agent.Source, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", nil, errors.New("user input is empty")
	}

	history := s.sessions.FormatHistory(sessionID)

	var answer string
	var err error
	if toolModel, ok := s.model.(models.ToolAgent); ok {
		answer, err = toolModel.GenerateWithTools(ctx, userInput, history, s.catalog.Specs(), s.catalog.Dispatch)
	} else {
		answer, err = s.generatePlain(ctx, userInput, history)
	}
	if err != nil {
		return "", nil, err
	}

	sources := s.catalog.CollectSources()
	s.catalog.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, userInput, answer)
	}
	return answer, sources, nil
}

// generatePlain serves models without native tool calling: the search tool
// is dispatched directly and its output framed into the prompt.
func (s *System) generatePlain(ctx context.Context, userInput, history string) (string, error) {
	retrieved := s.catalog.Dispatch(ctx, "search_course_content", map[string]any{"query": userInput})

	var sb strings.Builder
	if history != "" {
		sb.WriteString("Previous conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Relevant course material:\n")
	sb.WriteString(retrieved)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(userInput)

	completion, err := s.model.Generate(ctx, sb.String())
	if err != nil {
		return "", err
	}
	return fmt.Sprint(completion), nil
}

// AddCourseFolder ingests every course document in dir. Courses already in
// the store are skipped unless replace is set.
func (s *System) AddCourseFolder(ctx context.Context, dir string, replace bool) (int, int, error) {
	return s.loader.LoadFolder(ctx, dir, replace)
}

// Analytics reports what the store currently holds.
func (s *System) Analytics(ctx context.Context) (int, []string, error) {
	courses, err := s.store.AllCoursesMetadata(ctx)
	if err != nil {
		return 0, nil, err
	}
	titles := make([]string, 0, len(courses))
	for _, course := range courses {
		titles = append(titles, course.Title)
	}
	return len(titles), titles, nil
}
