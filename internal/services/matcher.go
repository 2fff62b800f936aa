package services

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Embedder produces a dense vector representation of a text, used for the
// semantic component of the match score.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type MatchResult struct {
	TFIDFScore     float64
	BowScore       float64
	EmbeddingScore float64
	MatchScore     float64
	MatchedSkills  []string
	MissingSkills  []string
}

type MatcherService interface {
	Match(ctx context.Context, resumeClean, jdClean string, candidateSkills, jdSkills []string) (*MatchResult, error)
}

type matcherService struct {
	embedder Embedder
}

func NewMatcherService(embedder Embedder) MatcherService {
	return &matcherService{embedder: embedder}
}

// Match combines three pairwise document similarities with the skill overlap
// into one score in [0, 100]:
//
//	match_score = round(100 * (0.5*embedding + 0.3*tfidf + 0.2*overlap), 2)
//
// The weighting favors semantic similarity over lexical overlap, with skill
// overlap as the tie-breaking signal.
func (m *matcherService) Match(ctx context.Context, resumeClean, jdClean string, candidateSkills, jdSkills []string) (*MatchResult, error) {
	tfidf, bow := lexicalSimilarities(resumeClean, jdClean)

	emb, err := m.embeddingSimilarity(ctx, resumeClean, jdClean)
	if err != nil {
		return nil, fmt.Errorf("embedding similarity: %w", err)
	}

	matched, missing := SplitSkills(candidateSkills, jdSkills)
	overlap := float64(len(matched)) / math.Max(float64(len(jdSkills)), 1)

	score := 100 * (0.5*emb + 0.3*tfidf + 0.2*overlap)
	score = math.Round(score*100) / 100
	score = math.Min(math.Max(score, 0), 100)

	return &MatchResult{
		TFIDFScore:     tfidf,
		BowScore:       bow,
		EmbeddingScore: emb,
		MatchScore:     score,
		MatchedSkills:  matched,
		MissingSkills:  missing,
	}, nil
}

// SplitSkills partitions the JD skill set into the part the candidate covers
// and the part they are missing. The two slices are disjoint and together
// cover every JD skill.
func SplitSkills(candidateSkills, jdSkills []string) (matched, missing []string) {
	matched = []string{}
	missing = []string{}

	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[strings.ToLower(s)] = true
	}

	for _, s := range jdSkills {
		if have[strings.ToLower(s)] {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matched, missing
}

func (m *matcherService) embeddingSimilarity(ctx context.Context, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, nil
	}

	va, err := m.embedder.GenerateEmbedding(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := m.embedder.GenerateEmbedding(ctx, b)
	if err != nil {
		return 0, err
	}

	return cosine32(va, vb), nil
}

// lexicalSimilarities computes the tf-idf and raw-count cosine similarities
// between the two documents over their shared vocabulary. Idf uses smoothed
// document frequencies so a term present in both documents still carries
// weight.
func lexicalSimilarities(a, b string) (tfidf, bow float64) {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, 0
	}

	vocab := map[string]int{}
	for _, t := range ta {
		if _, ok := vocab[t]; !ok {
			vocab[t] = len(vocab)
		}
	}
	for _, t := range tb {
		if _, ok := vocab[t]; !ok {
			vocab[t] = len(vocab)
		}
	}

	ca := termCounts(ta, vocab)
	cb := termCounts(tb, vocab)
	bow = cosine64(ca, cb)

	// idf(t) = ln((1+n)/(1+df)) + 1 with n = 2 documents
	idf := make([]float64, len(vocab))
	for i := range idf {
		df := 0.0
		if ca[i] > 0 {
			df++
		}
		if cb[i] > 0 {
			df++
		}
		idf[i] = math.Log(3/(1+df)) + 1
	}

	wa := make([]float64, len(vocab))
	wb := make([]float64, len(vocab))
	for i := range idf {
		wa[i] = ca[i] * idf[i]
		wb[i] = cb[i] * idf[i]
	}
	tfidf = cosine64(wa, wb)

	return tfidf, bow
}

func termCounts(tokens []string, vocab map[string]int) []float64 {
	counts := make([]float64, len(vocab))
	for _, t := range tokens {
		counts[vocab[t]]++
	}
	return counts
}

func cosine64(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cosine32(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
