package matching

import "math"

// Score returns the TF-IDF cosine similarity of two token sequences. The IDF is
// computed over the corpus formed by exactly these two documents, with smoothing:
// idf(t) = ln((1+n)/(1+df(t))) + 1, n = 2. An empty side scores 0.
func Score(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	tfA := termCounts(a)
	tfB := termCounts(b)

	const n = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if tfA[term] > 0 {
			df++
		}
		if tfB[term] > 0 {
			df++
		}
		return math.Log((1+n)/(1+df)) + 1
	}

	var dot, normA, normB float64
	for term, count := range tfA {
		w := float64(count) * idf(term)
		normA += w * w
		if other, ok := tfB[term]; ok {
			dot += w * float64(other) * idf(term)
		}
	}
	for term, count := range tfB {
		w := float64(count) * idf(term)
		normB += w * w
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case score > 1:
		return 1
	case score < 0:
		return 0
	}
	return score
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		counts[t]++
	}
	return counts
}
