package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/aws/aws-sdk-go-v2/service/kendra/types"
)

type fakeKendra struct {
	calls []*kendra.RetrieveInput
	out   *kendra.RetrieveOutput
	err   error

	describe    *kendra.DescribeIndexOutput
	describeErr error
}

func (f *fakeKendra) DescribeIndex(_ context.Context, _ *kendra.DescribeIndexInput, _ ...func(*kendra.Options)) (*kendra.DescribeIndexOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return f.describe, nil
}

func (f *fakeKendra) Retrieve(_ context.Context, params *kendra.RetrieveInput, _ ...func(*kendra.Options)) (*kendra.RetrieveOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func resultItem(content, uri, id string) types.RetrieveResultItem {
	item := types.RetrieveResultItem{Content: aws.String(content)}
	if uri != "" {
		item.DocumentURI = aws.String(uri)
	}
	if id != "" {
		item.DocumentId = aws.String(id)
	}
	return item
}

func TestNewKendraRetriever(t *testing.T) {
	tests := []struct {
		name    string
		client  KendraAPI
		indexID string
		filter  Filter
		wantErr bool
	}{
		{name: "valid", client: &fakeKendra{}, indexID: "idx", filter: Filter{LanguageCode: "ja", TopK: 20}},
		{name: "nil client", client: nil, indexID: "idx", filter: Filter{LanguageCode: "ja", TopK: 20}, wantErr: true},
		{name: "missing index", client: &fakeKendra{}, indexID: "", filter: Filter{LanguageCode: "ja", TopK: 20}, wantErr: true},
		{name: "zero top k", client: &fakeKendra{}, indexID: "idx", filter: Filter{LanguageCode: "ja", TopK: 0}, wantErr: true},
		{name: "missing language", client: &fakeKendra{}, indexID: "idx", filter: Filter{TopK: 20}, wantErr: true},
		{name: "max page size", client: &fakeKendra{}, indexID: "idx", filter: Filter{LanguageCode: "ja", TopK: MaxKendraPageSize}},
		{name: "top k above page size", client: &fakeKendra{}, indexID: "idx", filter: Filter{LanguageCode: "ja", TopK: MaxKendraPageSize + 1}, wantErr: true},
		{name: "top k overflowing int32", client: &fakeKendra{}, indexID: "idx", filter: Filter{LanguageCode: "ja", TopK: 1 << 31}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKendraRetriever(tt.client, tt.indexID, tt.filter)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewKendraRetriever() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKendraRetriever_Retrieve(t *testing.T) {
	t.Run("applies language filter and page size", func(t *testing.T) {
		fake := &fakeKendra{out: &kendra.RetrieveOutput{}}
		r, err := NewKendraRetriever(fake, "idx-1", Filter{LanguageCode: "ja", TopK: 20})
		if err != nil {
			t.Fatalf("NewKendraRetriever() error = %v", err)
		}

		chunks, err := r.Retrieve(context.Background(), "秋葉原とは？")
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if chunks == nil || len(chunks) != 0 {
			t.Errorf("Retrieve() = %#v, want empty non-nil slice", chunks)
		}
		if len(fake.calls) != 1 {
			t.Fatalf("Retrieve called %d times, want 1", len(fake.calls))
		}

		in := fake.calls[0]
		if aws.ToString(in.IndexId) != "idx-1" {
			t.Errorf("IndexId = %q, want idx-1", aws.ToString(in.IndexId))
		}
		if aws.ToString(in.QueryText) != "秋葉原とは？" {
			t.Errorf("QueryText = %q", aws.ToString(in.QueryText))
		}
		if aws.ToInt32(in.PageSize) != 20 {
			t.Errorf("PageSize = %d, want 20", aws.ToInt32(in.PageSize))
		}
		eq := in.AttributeFilter.EqualsTo
		if eq == nil || aws.ToString(eq.Key) != "_language_code" || aws.ToString(eq.Value.StringValue) != "ja" {
			t.Errorf("AttributeFilter.EqualsTo = %+v, want _language_code=ja", eq)
		}
	})

	t.Run("keeps service order and maps sources", func(t *testing.T) {
		fake := &fakeKendra{out: &kendra.RetrieveOutput{ResultItems: []types.RetrieveResultItem{
			resultItem("second best", "https://example.com/b", "doc-b"),
			resultItem("best", "", "doc-a"),
			resultItem("dup", "https://example.com/b", "doc-b"),
		}}}
		r, _ := NewKendraRetriever(fake, "idx", Filter{LanguageCode: "ja", TopK: 20})

		chunks, err := r.Retrieve(context.Background(), "q")
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		want := []DocumentChunk{
			{Text: "second best", SourceID: "https://example.com/b"},
			{Text: "best", SourceID: "doc-a"},
			{Text: "dup", SourceID: "https://example.com/b"},
		}
		if len(chunks) != len(want) {
			t.Fatalf("Retrieve() returned %d chunks, want %d", len(chunks), len(want))
		}
		for i := range want {
			if chunks[i] != want[i] {
				t.Errorf("chunk[%d] = %+v, want %+v", i, chunks[i], want[i])
			}
		}
	})

	t.Run("truncates to top k", func(t *testing.T) {
		fake := &fakeKendra{out: &kendra.RetrieveOutput{ResultItems: []types.RetrieveResultItem{
			resultItem("a", "", "1"), resultItem("b", "", "2"), resultItem("c", "", "3"),
		}}}
		r, _ := NewKendraRetriever(fake, "idx", Filter{LanguageCode: "ja", TopK: 2})

		chunks, err := r.Retrieve(context.Background(), "q")
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if len(chunks) != 2 || chunks[1].Text != "b" {
			t.Errorf("Retrieve() = %+v, want first two items", chunks)
		}
	})

	t.Run("blank question makes no call", func(t *testing.T) {
		fake := &fakeKendra{}
		r, _ := NewKendraRetriever(fake, "idx", Filter{LanguageCode: "ja", TopK: 20})

		_, err := r.Retrieve(context.Background(), "  \n\t")
		if !errors.Is(err, ErrInvalidQuestion) {
			t.Errorf("Retrieve() error = %v, want ErrInvalidQuestion", err)
		}
		if len(fake.calls) != 0 {
			t.Errorf("Retrieve called %d times, want 0", len(fake.calls))
		}
	})

	t.Run("service error is unavailable", func(t *testing.T) {
		cause := errors.New("AccessDeniedException")
		fake := &fakeKendra{err: cause}
		r, _ := NewKendraRetriever(fake, "idx", Filter{LanguageCode: "ja", TopK: 20})

		_, err := r.Retrieve(context.Background(), "q")
		if !errors.Is(err, ErrRetrievalUnavailable) {
			t.Errorf("Retrieve() error = %v, want ErrRetrievalUnavailable", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("Retrieve() error should wrap the service error")
		}
	})
}

func TestKendraRetriever_PingContext(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeKendra
		wantErr bool
	}{
		{name: "active", fake: &fakeKendra{describe: &kendra.DescribeIndexOutput{Status: types.IndexStatusActive}}},
		{name: "creating", fake: &fakeKendra{describe: &kendra.DescribeIndexOutput{Status: types.IndexStatusCreating}}, wantErr: true},
		{name: "describe fails", fake: &fakeKendra{describeErr: errors.New("AccessDeniedException")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewKendraRetriever(tt.fake, "idx", Filter{LanguageCode: "ja", TopK: 20})
			if err != nil {
				t.Fatalf("NewKendraRetriever() error = %v", err)
			}
			err = r.PingContext(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrRetrievalUnavailable) {
					t.Errorf("PingContext() error = %v, want ErrRetrievalUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Errorf("PingContext() unexpected error: %v", err)
			}
		})
	}
}
