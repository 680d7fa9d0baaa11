package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"geekqa/internal/contextutil"
)

// Payload fields read from and filtered on in the Qdrant collection.
const (
	payloadText     = "text"
	payloadSource   = "source"
	payloadLanguage = "language_code"
)

// PointQuerier is the subset of the Qdrant client used for retrieval.
type PointQuerier interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
}

// QueryEmbedder turns a question into a query vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewQdrantClient creates a Qdrant client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantClient(urlStr string) (*qdrant.Client, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return client, nil
}

// QdrantRetriever retrieves passages by vector similarity from a Qdrant collection.
type QdrantRetriever struct {
	client     PointQuerier
	embedder   QueryEmbedder
	collection string
	filter     Filter
}

// NewQdrantRetriever creates a retriever bound to one collection and filter.
func NewQdrantRetriever(client PointQuerier, embedder QueryEmbedder, collection string, filter Filter) (*QdrantRetriever, error) {
	if client == nil || embedder == nil {
		return nil, fmt.Errorf("qdrant client and embedder are required")
	}
	if collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval filter: %w", err)
	}
	return &QdrantRetriever{client: client, embedder: embedder, collection: collection, filter: filter}, nil
}

// Retrieve embeds the question and returns at most TopK nearest passages in score order.
func (r *QdrantRetriever) Retrieve(ctx context.Context, question string) ([]DocumentChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	vec, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return nil, unavailable("embed question", err)
	}

	limit := uint64(r.filter.TopK)
	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadLanguage, r.filter.LanguageCode),
			},
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "qdrant query failed", "collection", r.collection, "error", err)
		return nil, unavailable("qdrant query", err)
	}

	if len(points) > r.filter.TopK {
		points = points[:r.filter.TopK]
	}

	chunks := make([]DocumentChunk, 0, len(points))
	for _, p := range points {
		chunks = append(chunks, chunkFromPoint(p))
	}

	logger.DebugContext(ctx, "qdrant query completed", "collection", r.collection, "results", len(chunks))
	return chunks, nil
}

// PingContext checks that the collection exists.
func (r *QdrantRetriever) PingContext(ctx context.Context) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return unavailable("qdrant collection exists", err)
	}
	if !exists {
		return fmt.Errorf("qdrant collection %s does not exist: %w", r.collection, ErrRetrievalUnavailable)
	}
	return nil
}

func chunkFromPoint(p *qdrant.ScoredPoint) DocumentChunk {
	var chunk DocumentChunk
	if v, ok := p.GetPayload()[payloadText]; ok {
		chunk.Text = v.GetStringValue()
	}
	if v, ok := p.GetPayload()[payloadSource]; ok {
		chunk.SourceID = v.GetStringValue()
	}
	if chunk.SourceID == "" {
		chunk.SourceID = pointID(p.GetId())
	}
	return chunk
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}
