package main

import (
	"context"
	"fmt"

	"xrayrag/internal/imaging"
	"xrayrag/internal/report"
	"xrayrag/internal/retrieval"
)

func runSearch(ctx context.Context, engine *retrieval.Engine, query string, k int) {
	results, err := engine.Search(ctx, query, k)
	if err != nil {
		fmt.Println("search failed:", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for i, r := range results {
		fmt.Printf("%d. id=%s  score=%.3f  %s\n", i+1, r.ID, r.Score, r.Disease)
		fmt.Printf("   %s\n", preview(r.Report, 200))
	}
}

func runAnalyze(ctx context.Context, engine *retrieval.Engine, imagePath string, k int) {
	features, err := imaging.Analyze(imagePath)
	if err != nil {
		fmt.Println("image analysis failed:", err)
		return
	}
	query := features.Query()
	fmt.Println("query:", query)

	results, err := engine.Search(ctx, query, k)
	if err != nil {
		fmt.Println("search failed:", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("no matches; unable to generate a report")
		return
	}

	best := results[0]
	fmt.Printf("primary finding: %s (confidence %.2f)\n\n", best.Disease, best.Score)
	fmt.Println(report.Narrative(best.Disease, results[1:]))

	if len(results) > 1 {
		fmt.Println("\nsimilar cases:")
		for _, r := range results[1:] {
			fmt.Printf("  id=%s  score=%.3f  %s\n", r.ID, r.Score, r.Disease)
		}
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
