package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// VectorStoreService persists embedded reference snippets (job descriptions,
// assessment banks, interview guides) and retrieves the nearest ones for a
// query embedding.
type VectorStoreService interface {
	InitCollection() error
	UpsertSnippet(ctx context.Context, docID, topic, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, topic string, limit int) ([]ContextSnippet, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type ContextSnippet struct {
	ID    string
	Score float32
	Text  string
	Topic string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (VectorStoreService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements VectorStoreService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertSnippet implements VectorStoreService.
func (q *qdrantService) UpsertSnippet(ctx context.Context, docID, topic, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id": docID,
			"topic":  topic,
			"text":   text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements VectorStoreService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, topic string, limit int) ([]ContextSnippet, error) {
	var filter *qdrant.Filter
	if topic != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("topic", topic),
			},
		}
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var snippets []ContextSnippet
	for _, point := range searchResult {
		payload := point.Payload

		snippet := ContextSnippet{Score: point.Score}

		if docID, ok := payload["doc_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.ID = val.StringValue
			}
		}
		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Text = val.StringValue
			}
		}
		if topicVal, ok := payload["topic"]; ok {
			if val, ok := topicVal.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Topic = val.StringValue
			}
		}

		snippets = append(snippets, snippet)
	}

	return snippets, nil
}

// DeleteDocument implements VectorStoreService.
func (q *qdrantService) DeleteDocument(ctx context.Context, docID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// ContextRetriever pairs the embedder with the vector store so prompt
// builders can pull reference material for a free-text query.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query string, topics []string) (string, error)
}

type contextRetriever struct {
	embedder Embedder
	store    VectorStoreService
	limit    int
}

func NewContextRetriever(embedder Embedder, store VectorStoreService) ContextRetriever {
	return &contextRetriever{embedder: embedder, store: store, limit: 3}
}

func (c *contextRetriever) RetrieveContext(ctx context.Context, query string, topics []string) (string, error) {
	embedding, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	var all []ContextSnippet
	for _, topic := range topics {
		snippets, err := c.store.SearchSimilar(ctx, embedding, topic, c.limit)
		if err != nil {
			log.Printf("⚠️ Failed to search for %s: %v\n", topic, err)
			continue
		}
		all = append(all, snippets...)
	}

	return FormatReferenceContext(all), nil
}
