package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

// MongoStore implements VectorStore on MongoDB. Similarity is scored
// client-side over a filtered cursor, so it works against any deployment,
// not just Atlas vector-search clusters.
type MongoStore struct {
	client   *mongo.Client
	courses  *mongo.Collection
	chunks   *mongo.Collection
	embedder Embedder
}

func NewMongoStore(ctx context.Context, uri, database string, embedder Embedder) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if embedder == nil {
		embedder = DummyEmbedder{}
	}
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		courses:  db.Collection("courses"),
		chunks:   db.Collection("chunks"),
		embedder: embedder,
	}, nil
}

func (ms *MongoStore) AddCourse(ctx context.Context, course Course, chunks []Chunk) error {
	if ms == nil || ms.courses == nil {
		return nil
	}
	titleVec, err := ms.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	lessons := make([]bson.M, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessons = append(lessons, bson.M{
			"number": lesson.Number,
			"title":  lesson.Title,
			"link":   lesson.Link,
		})
	}
	_, err = ms.courses.UpdateOne(ctx,
		bson.M{"title": course.Title},
		bson.M{"$set": bson.M{
			"title":           course.Title,
			"link":            course.Link,
			"instructor":      course.Instructor,
			"lessons":         lessons,
			"title_embedding": float64Embedding(titleVec),
			"stored_at":       time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	if _, err := ms.chunks.DeleteMany(ctx, bson.M{"course_title": course.Title}); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}

	for _, chunk := range chunks {
		vec, err := ms.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
		}
		doc := bson.M{
			"course_title": chunk.CourseTitle,
			"chunk_index":  chunk.Index,
			"content":      chunk.Content,
			"embedding":    float64Embedding(vec),
		}
		if chunk.LessonNumber != nil {
			doc["lesson_number"] = *chunk.LessonNumber
		}
		if _, err := ms.chunks.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}
	return nil
}

func (ms *MongoStore) Search(ctx context.Context, query string, opts SearchOptions) (SearchResults, error) {
	if ms == nil || ms.chunks == nil {
		return SearchResults{}, nil
	}
	filter := bson.M{}
	if strings.TrimSpace(opts.CourseName) != "" {
		resolved, err := ms.ResolveCourseName(ctx, opts.CourseName)
		if err != nil {
			return SearchResults{}, err
		}
		if resolved == "" {
			return SearchResults{}, fmt.Errorf("No course found matching '%s'", opts.CourseName)
		}
		filter["course_title"] = resolved
	}
	if opts.LessonNumber != nil {
		filter["lesson_number"] = *opts.LessonNumber
	}

	queryVec, err := ms.embedder.Embed(ctx, query)
	if err != nil {
		return SearchResults{}, fmt.Errorf("embed query: %w", err)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	cursor, err := ms.chunks.Find(ctx, filter)
	if err != nil {
		return SearchResults{}, err
	}
	defer cursor.Close(ctx)

	type scored struct {
		doc   chunkDocument
		score float64
	}
	var candidates []scored
	for cursor.Next(ctx) {
		var doc chunkDocument
		if err := cursor.Decode(&doc); err != nil {
			return SearchResults{}, err
		}
		candidates = append(candidates, scored{
			doc:   doc,
			score: cosineSimilarity(queryVec, float32Embedding(doc.Embedding)),
		})
	}
	if err := cursor.Err(); err != nil {
		return SearchResults{}, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := SearchResults{}
	for _, c := range candidates {
		results.Documents = append(results.Documents, c.doc.Content)
		results.Metadata = append(results.Metadata, ChunkMetadata{
			CourseTitle:  c.doc.CourseTitle,
			LessonNumber: c.doc.LessonNumber,
			ChunkIndex:   c.doc.ChunkIndex,
		})
	}
	return results, nil
}

func (ms *MongoStore) AllCoursesMetadata(ctx context.Context) ([]Course, error) {
	if ms == nil || ms.courses == nil {
		return nil, nil
	}
	cursor, err := ms.courses.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"stored_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []Course
	for cursor.Next(ctx) {
		var doc courseDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		courses = append(courses, doc.toCourse())
	}
	return courses, cursor.Err()
}

func (ms *MongoStore) ResolveCourseName(ctx context.Context, partial string) (string, error) {
	if ms == nil || ms.courses == nil {
		return "", nil
	}
	needle := strings.ToLower(strings.TrimSpace(partial))
	if needle == "" {
		return "", nil
	}

	cursor, err := ms.courses.Find(ctx, bson.M{})
	if err != nil {
		return "", err
	}
	defer cursor.Close(ctx)

	var docs []courseDocument
	for cursor.Next(ctx) {
		var doc courseDocument
		if err := cursor.Decode(&doc); err != nil {
			return "", err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return "", err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Title < docs[j].Title })

	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Title), needle) {
			return doc.Title, nil
		}
	}

	partialVec, err := ms.embedder.Embed(ctx, partial)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}
	best := ""
	bestScore := resolveFloor
	for _, doc := range docs {
		score := cosineSimilarity(partialVec, float32Embedding(doc.TitleEmbedding))
		if score > bestScore {
			best = doc.Title
			bestScore = score
		}
	}
	return best, nil
}

func (ms *MongoStore) CourseCount(ctx context.Context) (int, error) {
	if ms == nil || ms.courses == nil {
		return 0, nil
	}
	count, err := ms.courses.CountDocuments(ctx, bson.M{})
	return int(count), err
}

// Close disconnects the Mongo client with a bounded timeout.
func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

type chunkDocument struct {
	CourseTitle  string    `bson:"course_title"`
	LessonNumber *int      `bson:"lesson_number,omitempty"`
	ChunkIndex   int       `bson:"chunk_index"`
	Content      string    `bson:"content"`
	Embedding    []float64 `bson:"embedding"`
}

type courseDocument struct {
	Title          string    `bson:"title"`
	Link           string    `bson:"link"`
	Instructor     string    `bson:"instructor"`
	TitleEmbedding []float64 `bson:"title_embedding"`
	Lessons        []struct {
		Number int    `bson:"number"`
		Title  string `bson:"title"`
		Link   string `bson:"link"`
	} `bson:"lessons"`
}

func (d courseDocument) toCourse() Course {
	course := Course{Title: d.Title, Link: d.Link, Instructor: d.Instructor}
	for _, lesson := range d.Lessons {
		course.Lessons = append(course.Lessons, Lesson{
			Number: lesson.Number,
			Title:  lesson.Title,
			Link:   lesson.Link,
		})
	}
	return course
}

func float64Embedding(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}

func float32Embedding(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
