package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

func TestNormalizeResourceURL(t *testing.T) {
	cases := []struct {
		name string
		link string
		want string
	}{
		{"forces https", "http://example.com/post", "https://example.com/post"},
		{"schemeless", "example.com/post", "https://example.com/post"},
		{"short video link", "https://youtu.be/abc123", "https://www.youtube.com/watch?v=abc123"},
		{"shorts path", "https://www.youtube.com/shorts/xyz789", "https://www.youtube.com/watch?v=xyz789"},
		{"trailing punctuation", "https://example.com/post.", "https://example.com/post"},
		{"host lowercased", "https://EXAMPLE.com/Post", "https://example.com/Post"},
		{"empty", "", ""},
		{"garbage", "ht tp://???", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeResourceURL(tc.link))
		})
	}
}

func TestClassifyResourceURL(t *testing.T) {
	assert.Equal(t, models.ResourceTypeVideo, ClassifyResourceURL("https://www.youtube.com/watch?v=abc"))
	assert.Equal(t, models.ResourceTypeVideo, ClassifyResourceURL("https://vimeo.com/12345"))
	assert.Equal(t, models.ResourceTypeCourse, ClassifyResourceURL("https://www.coursera.org/learn/go"))
	assert.Equal(t, models.ResourceTypeCourse, ClassifyResourceURL("https://udemy.com/course/docker"))
	assert.Equal(t, models.ResourceTypeArticle, ClassifyResourceURL("https://go.dev/blog/error-handling"))
	assert.Equal(t, models.ResourceTypeArticle, ClassifyResourceURL("https://notyoutube.company.com/x"))
}

func TestCollectCandidatesDeduplicatesAndTitles(t *testing.T) {
	hits := []SearchHit{
		{Title: "Kubernetes Crash Course", URL: "https://youtu.be/abc123"},
		{Title: "K8s on Coursera", URL: "https://www.coursera.org/learn/k8s"},
	}
	snippets := "Watch https://www.youtube.com/watch?v=abc123 or read https://kubernetes.io/docs/home/."

	candidates := collectCandidates(snippets, hits)

	require.Len(t, candidates, 3)
	assert.Equal(t, "Kubernetes Crash Course", candidates[0].Title)
	assert.Equal(t, models.ResourceTypeVideo, candidates[0].Type)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", candidates[0].URL)
	assert.Equal(t, models.ResourceTypeCourse, candidates[1].Type)
	// Bare snippet links fall back to their host as a title.
	assert.Equal(t, "kubernetes.io", candidates[2].Title)
	assert.Equal(t, models.ResourceTypeArticle, candidates[2].Type)
}

func TestRankResourcesNoLinks(t *testing.T) {
	ranker := NewResourceRanker(&fakeGenerator{response: "[]"}, 1)

	got := ranker.RankResources(context.Background(), "kubernetes", "no links here", nil)

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankResourcesFallbackOnGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	ranker := NewResourceRanker(gen, 1)

	snippets := "https://youtu.be/a https://youtu.be/b https://youtu.be/c " +
		"https://youtu.be/d https://youtu.be/e https://youtu.be/f"
	got := ranker.RankResources(context.Background(), "docker", snippets, nil)

	require.Len(t, got, 5)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", got[0].URL)
	assert.Equal(t, "https://www.youtube.com/watch?v=e", got[4].URL)
}

func TestRankResourcesLLMSelection(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"title": "Deep Dive", "type": "article", "url": "https://youtu.be/abc123"},
		{"title": "Official Docs", "type": "article", "url": "https://kubernetes.io/docs/home/"}
	]`}
	ranker := NewResourceRanker(gen, 1)

	snippets := "https://youtu.be/abc123 and https://kubernetes.io/docs/home/"
	got := ranker.RankResources(context.Background(), "kubernetes", snippets, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "Deep Dive", got[0].Title)
	// Domain classification wins over the type the model claimed.
	assert.Equal(t, models.ResourceTypeVideo, got[0].Type)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", got[0].URL)
	assert.Equal(t, models.ResourceTypeArticle, got[1].Type)
}

func TestRankResourcesRejectsInventedLinks(t *testing.T) {
	gen := &fakeGenerator{response: `[{"title": "Fake", "type": "article", "url": "https://invented.example.com/x"}]`}
	ranker := NewResourceRanker(gen, 1)

	got := ranker.RankResources(context.Background(), "go", "https://go.dev/tour", nil)

	// Every picked link was invented, so selection degrades to the fallback.
	require.Len(t, got, 1)
	assert.Equal(t, "https://go.dev/tour", got[0].URL)
}
