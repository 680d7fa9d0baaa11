package retrieval

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/aws/aws-sdk-go-v2/service/kendra/types"

	"geekqa/internal/contextutil"
)

// languageAttribute is the Kendra reserved attribute holding a document's language.
const languageAttribute = "_language_code"

// MaxKendraPageSize is the largest PageSize the Kendra Retrieve API accepts.
const MaxKendraPageSize = 100

// KendraAPI is the subset of the Kendra client used for retrieval.
type KendraAPI interface {
	Retrieve(ctx context.Context, params *kendra.RetrieveInput, optFns ...func(*kendra.Options)) (*kendra.RetrieveOutput, error)
	DescribeIndex(ctx context.Context, params *kendra.DescribeIndexInput, optFns ...func(*kendra.Options)) (*kendra.DescribeIndexOutput, error)
}

// KendraRetriever retrieves passages from an Amazon Kendra index.
type KendraRetriever struct {
	client  KendraAPI
	indexID string
	filter  Filter
}

// NewKendraRetriever creates a retriever bound to one index and filter.
func NewKendraRetriever(client KendraAPI, indexID string, filter Filter) (*KendraRetriever, error) {
	if client == nil {
		return nil, fmt.Errorf("kendra client is required")
	}
	if indexID == "" {
		return nil, fmt.Errorf("kendra index id is required")
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval filter: %w", err)
	}
	if filter.TopK > MaxKendraPageSize {
		return nil, fmt.Errorf("invalid retrieval filter: kendra returns at most %d results, got top k %d", MaxKendraPageSize, filter.TopK)
	}
	return &KendraRetriever{client: client, indexID: indexID, filter: filter}, nil
}

// Retrieve returns at most TopK passages matching the question, in index relevance order.
func (r *KendraRetriever) Retrieve(ctx context.Context, question string) ([]DocumentChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	out, err := r.client.Retrieve(ctx, &kendra.RetrieveInput{
		IndexId:   aws.String(r.indexID),
		QueryText: aws.String(question),
		PageSize:  aws.Int32(int32(r.filter.TopK)),
		AttributeFilter: &types.AttributeFilter{
			EqualsTo: &types.DocumentAttribute{
				Key: aws.String(languageAttribute),
				Value: &types.DocumentAttributeValue{
					StringValue: aws.String(r.filter.LanguageCode),
				},
			},
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "kendra retrieve failed", "index_id", r.indexID, "error", err)
		return nil, unavailable("kendra retrieve", err)
	}

	items := out.ResultItems
	if len(items) > r.filter.TopK {
		items = items[:r.filter.TopK]
	}

	chunks := make([]DocumentChunk, 0, len(items))
	for _, item := range items {
		source := aws.ToString(item.DocumentURI)
		if source == "" {
			source = aws.ToString(item.DocumentId)
		}
		chunks = append(chunks, DocumentChunk{
			Text:     aws.ToString(item.Content),
			SourceID: source,
		})
	}

	logger.DebugContext(ctx, "kendra retrieve completed", "index_id", r.indexID, "results", len(chunks))
	return chunks, nil
}

// PingContext reports an error unless the index exists and is ACTIVE.
func (r *KendraRetriever) PingContext(ctx context.Context) error {
	out, err := r.client.DescribeIndex(ctx, &kendra.DescribeIndexInput{Id: aws.String(r.indexID)})
	if err != nil {
		return unavailable("kendra describe index", err)
	}
	if out.Status != types.IndexStatusActive {
		return fmt.Errorf("kendra index %s is %s: %w", r.indexID, out.Status, ErrRetrievalUnavailable)
	}
	return nil
}
