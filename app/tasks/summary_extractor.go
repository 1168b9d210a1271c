package tasks

import (
	"fmt"
	"strings"

	"github.com/go-shiori/go-readability"
)

const maxSummaryLength = 500

// SummaryExtractor distills an article page into a short plain-text summary.
type SummaryExtractor struct{}

func NewSummaryExtractor() *SummaryExtractor {
	return &SummaryExtractor{}
}

func (e *SummaryExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	summary := strings.TrimSpace(article.Excerpt)
	if summary == "" {
		summary = strings.TrimSpace(article.TextContent)
	}
	if summary == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	summary = strings.Join(strings.Fields(summary), " ")
	if len(summary) > maxSummaryLength {
		cut := summary[:maxSummaryLength]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		summary = cut + "…"
	}

	return summary, nil
}
