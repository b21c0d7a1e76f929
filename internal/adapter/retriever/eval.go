package retriever

import (
	"math"

	"kbrag/internal/domain"
)

// Sources lists the distinct document names of passages in rank order.
func Sources(passages []domain.ScoredPassage) []string {
	seen := make(map[string]bool, len(passages))
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		if seen[p.Source] {
			continue
		}
		seen[p.Source] = true
		out = append(out, p.Source)
	}
	return out
}

// PrecisionAtK is the share of retrieved sources that are relevant.
func PrecisionAtK(retrieved, relevant []string) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	return float64(hits(retrieved, relevant)) / float64(len(retrieved))
}

// RecallAtK is the share of relevant sources that were retrieved.
func RecallAtK(retrieved, relevant []string) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(hits(retrieved, relevant)) / float64(len(relevant))
}

func hits(retrieved, relevant []string) int {
	relevantSet := make(map[string]bool, len(relevant))
	for _, r := range relevant {
		relevantSet[r] = true
	}
	n := 0
	for _, r := range retrieved {
		if relevantSet[r] {
			n++
		}
	}
	return n
}

// ReciprocalRank is 1/rank of the first relevant source, or 0.
func ReciprocalRank(retrieved, relevant []string) float64 {
	relevantSet := make(map[string]bool, len(relevant))
	for _, r := range relevant {
		relevantSet[r] = true
	}
	for i, r := range retrieved {
		if relevantSet[r] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// NDCG compares the discounted gain of scores with that of the ideal order.
func NDCG(scores, ideal []float64) float64 {
	idcg := dcg(ideal)
	if idcg == 0 {
		return 0
	}
	return dcg(scores) / idcg
}

func dcg(scores []float64) float64 {
	total := 0.0
	for i, score := range scores {
		total += score / math.Log2(float64(i+2))
	}
	return total
}
