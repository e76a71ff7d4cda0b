package research

import (
	"context"

	"github.com/avelez/sleuth/pkg/firecrawl"
)

// WebSource is the slice of the firecrawl client the workflow needs.
// *firecrawl.Client satisfies it; tests substitute fakes.
type WebSource interface {
	Search(ctx context.Context, query string, limit int) ([]firecrawl.SearchResult, error)
	Scrape(ctx context.Context, url string) (firecrawl.Document, error)
}

// Service wraps a WebSource with research-specific behaviour: company
// searches carry a " company pricing" suffix, and upstream failures degrade
// to empty results so one flaky page never kills a run.
type Service struct {
	src WebSource
}

// NewService creates a Service over the given source.
func NewService(src WebSource) *Service {
	return &Service{src: src}
}

// SearchCompanies searches for companies related to query. Errors return an
// empty result set.
func (s *Service) SearchCompanies(ctx context.Context, query string, limit int) []firecrawl.SearchResult {
	results, err := s.src.Search(ctx, query+" company pricing", limit)
	if err != nil {
		return nil
	}
	return results
}

// ScrapePage scrapes one page as markdown. Errors return an empty document.
func (s *Service) ScrapePage(ctx context.Context, url string) firecrawl.Document {
	doc, err := s.src.Scrape(ctx, url)
	if err != nil {
		return firecrawl.Document{}
	}
	return doc
}
