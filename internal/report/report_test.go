package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"xrayrag/internal/domain"
)

func TestNarrative(t *testing.T) {
	t.Run("known disease uses its template", func(t *testing.T) {
		got := Narrative("Pneumonia", nil)
		assert.Contains(t, got, "IMPRESSION: Findings consistent with pneumonia.")
		assert.Contains(t, got, "FINDINGS:")
		assert.Contains(t, got, "ASSESSMENT:")
	})

	t.Run("unknown label falls back to the catch-all template", func(t *testing.T) {
		got := Narrative("Something Unrecognized", nil)
		assert.Contains(t, got, "Radiographic abnormality identified")
	})

	t.Run("high-scoring agreeing cases add a correlation note", func(t *testing.T) {
		cases := []domain.SearchResult{
			{Report: "Acute bilateral pneumonia in both lower lobes", Score: 0.9},
		}
		got := Narrative("Pneumonia", cases)
		assert.Contains(t, got, "CLINICAL CORRELATION")
		assert.Contains(t, got, "bilateral involvement")
		assert.Contains(t, got, "acute presentation")
	})

	t.Run("low-scoring cases are ignored", func(t *testing.T) {
		cases := []domain.SearchResult{
			{Report: "Acute bilateral pneumonia", Score: 0.3},
		}
		got := Narrative("Pneumonia", cases)
		assert.NotContains(t, got, "CLINICAL CORRELATION")
	})

	t.Run("cases with a different label are ignored", func(t *testing.T) {
		cases := []domain.SearchResult{
			{Report: "Acute bilateral pleural effusion", Score: 0.9},
		}
		got := Narrative("Pneumonia", cases)
		assert.NotContains(t, got, "CLINICAL CORRELATION")
	})

	t.Run("only the top two cases contribute", func(t *testing.T) {
		cases := []domain.SearchResult{
			{Report: "Pneumonia noted", Score: 0.9},
			{Report: "Pneumonia noted", Score: 0.9},
			{Report: "Chronic pneumonia changes", Score: 0.9},
		}
		got := Narrative("Pneumonia", cases)
		assert.NotContains(t, got, "chronic changes")
	})

	t.Run("markers are not repeated", func(t *testing.T) {
		cases := []domain.SearchResult{
			{Report: "Bilateral pneumonia", Score: 0.9},
			{Report: "Bilateral pneumonia again", Score: 0.9},
		}
		got := Narrative("Pneumonia", cases)
		assert.Equal(t, 1, strings.Count(got, "bilateral involvement"))
	})
}
