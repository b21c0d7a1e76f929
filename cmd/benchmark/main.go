package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kbrag/config"
	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/retriever"
	"kbrag/internal/adapter/store"
	"kbrag/internal/domain"
)

// evalCase is one labelled query of a -set file, written in YAML as
// {query: 忘记密码怎么办, relevant: [FAQ.txt]}.
type evalCase struct {
	Query    string   `yaml:"query"`
	Relevant []string `yaml:"relevant"`
}

func main() {
	dir := flag.String("dir", ".", "Knowledge base directory")
	query := flag.String("q", "", "Query to test")
	setPath := flag.String("set", "", "YAML file of labelled queries")
	topK := flag.Int("k", 0, "Number of results (default from config)")
	runs := flag.Int("runs", 20, "Searches per query for timing")
	flag.Parse()

	if *query == "" && *setPath == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./kb -q \"query\"")
		fmt.Println("       go run ./cmd/benchmark -dir ./kb -set queries.yaml")
		fmt.Println("\nReports:")
		fmt.Println("  1. Search latency over the whole knowledge base")
		fmt.Println("  2. Precision, recall and MRR against labelled sources")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *topK <= 0 {
		*topK = cfg.Knowledge.TopK
	}

	st, err := store.NewBoltStore(config.StorePath(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening document store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	corpus, err := st.CompletedCorpus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading documents: %v\n", err)
		os.Exit(1)
	}

	chk, err := chunker.NewParagraphChunker(cfg.Knowledge.ChunkSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	r, err := retriever.NewKnowledgeRetriever(chk, retriever.NewLexicalScorer(retriever.DefaultWeights()), cfg.Knowledge.PassageChars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cases := []evalCase{{Query: *query}}
	if *setPath != "" {
		cases, err = loadSet(*setPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading query set: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("LEXICAL RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Documents: %d\n", len(corpus))
	fmt.Printf("Chunk size: %d, passage length: %d, top-k: %d\n\n", cfg.Knowledge.ChunkSize, cfg.Knowledge.PassageChars, *topK)

	var totalP, totalR, totalRR float64
	labelled := 0
	for _, c := range cases {
		results, elapsed, err := timeSearch(r, c.Query, corpus, *topK, *runs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Query: \"%s\" (%s per search)\n", c.Query, elapsed)
		fmt.Println(strings.Repeat("-", 70))
		for i, res := range results {
			preview := strings.ReplaceAll(res.Content, "\n", " ")
			if runes := []rune(preview); len(runes) > 80 {
				preview = string(runes[:80]) + "..."
			}
			fmt.Printf("%d. [%.1f] %s\n   %s\n", i+1, res.Score, res.Source, preview)
		}
		if len(results) == 0 {
			fmt.Println("(no results)")
		}

		if len(c.Relevant) > 0 {
			sources := retriever.Sources(results)
			p := retriever.PrecisionAtK(sources, c.Relevant)
			rec := retriever.RecallAtK(sources, c.Relevant)
			rr := retriever.ReciprocalRank(sources, c.Relevant)
			fmt.Printf("   precision %.2f  recall %.2f  RR %.2f\n", p, rec, rr)
			totalP += p
			totalR += rec
			totalRR += rr
			labelled++
		}
		fmt.Println()
	}

	if labelled > 0 {
		n := float64(labelled)
		fmt.Println(strings.Repeat("=", 70))
		fmt.Printf("QUALITY METRICS (%d labelled queries):\n", labelled)
		fmt.Printf("  Mean precision: %.3f\n", totalP/n)
		fmt.Printf("  Mean recall:    %.3f\n", totalR/n)
		fmt.Printf("  MRR:            %.3f\n", totalRR/n)
	}
}

func loadSet(path string) ([]evalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []evalCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func timeSearch(r *retriever.KnowledgeRetriever, query string, corpus []domain.Document, k, runs int) ([]domain.ScoredPassage, time.Duration, error) {
	if runs < 1 {
		runs = 1
	}
	var results []domain.ScoredPassage
	start := time.Now()
	for i := 0; i < runs; i++ {
		var err error
		results, err = r.Search(query, corpus, k)
		if err != nil {
			return nil, 0, err
		}
	}
	return results, time.Since(start) / time.Duration(runs), nil
}
