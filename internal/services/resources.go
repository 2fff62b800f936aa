package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

const maxResourcesPerSkill = 5

var linkRe = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)

var videoDomains = []string{"youtube.com", "youtu.be", "vimeo.com"}

var courseDomains = []string{
	"coursera.org", "udemy.com", "edx.org", "udacity.com",
	"pluralsight.com", "freecodecamp.org", "codecademy.com", "khanacademy.org",
}

// ResourceRanker turns raw search output for a missing skill into at most
// five classified learning resources.
type ResourceRanker interface {
	RankResources(ctx context.Context, skill, snippets string, hits []SearchHit) []models.Resource
}

type resourceRanker struct {
	generator  TextGenerator
	maxRetries int
}

func NewResourceRanker(generator TextGenerator, maxRetries int) ResourceRanker {
	return &resourceRanker{generator: generator, maxRetries: maxRetries}
}

// RankResources never fails: when the generation call or its JSON recovery
// breaks down it falls back to the first five deduplicated candidates, and
// when the search output contains no links at all the skill simply maps to an
// empty list.
func (r *resourceRanker) RankResources(ctx context.Context, skill, snippets string, hits []SearchHit) []models.Resource {
	candidates := collectCandidates(snippets, hits)
	if len(candidates) == 0 {
		return []models.Resource{}
	}

	ranked, err := r.selectWithLLM(ctx, skill, candidates)
	if err != nil {
		log.Printf("⚠️ Resource selection for %q degraded to deterministic fallback: %v\n", skill, err)
		if len(candidates) > maxResourcesPerSkill {
			candidates = candidates[:maxResourcesPerSkill]
		}
		return candidates
	}

	return ranked
}

// collectCandidates extracts, normalizes, classifies and deduplicates every
// link found in the search output, preserving first-seen order.
func collectCandidates(snippets string, hits []SearchHit) []models.Resource {
	titles := map[string]string{}
	links := []string{}
	for _, hit := range hits {
		links = append(links, hit.URL)
		titles[NormalizeResourceURL(hit.URL)] = hit.Title
	}
	links = append(links, linkRe.FindAllString(snippets, -1)...)

	seen := map[string]bool{}
	candidates := []models.Resource{}
	for _, link := range links {
		normalized := NormalizeResourceURL(link)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		title := titles[normalized]
		if title == "" {
			if u, err := url.Parse(normalized); err == nil {
				title = u.Host
			} else {
				title = normalized
			}
		}

		candidates = append(candidates, models.Resource{
			Title: title,
			Type:  ClassifyResourceURL(normalized),
			URL:   normalized,
		})
	}

	return candidates
}

func (r *resourceRanker) selectWithLLM(ctx context.Context, skill string, candidates []models.Resource) ([]models.Resource, error) {
	var list strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&list, "- [%s] %s\n", c.Type, c.URL)
	}

	prompt := fmt.Sprintf(`You are curating learning resources for the skill: %s.
From the candidate links below, choose the best %d for job readiness and give
each a short descriptive title. Only use URLs from the list.
Output MUST be a JSON array of objects with keys: title, type, url.

Candidate links:
%s`, skill, maxResourcesPerSkill, list.String())

	response, err := r.generator.GenerateTextWithRetry(ctx, prompt, 0.3, r.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	var picked []models.Resource
	if err := RecoverJSONInto(response, &picked); err != nil {
		return nil, err
	}

	byURL := make(map[string]models.Resource, len(candidates))
	for _, c := range candidates {
		byURL[c.URL] = c
	}

	seen := map[string]bool{}
	ranked := []models.Resource{}
	for _, res := range picked {
		normalized := NormalizeResourceURL(res.URL)
		candidate, ok := byURL[normalized]
		if !ok || seen[normalized] {
			continue
		}
		seen[normalized] = true

		title := strings.TrimSpace(res.Title)
		if title == "" {
			title = candidate.Title
		}

		// Classification by domain is authoritative over whatever type the
		// model claims.
		ranked = append(ranked, models.Resource{Title: title, Type: candidate.Type, URL: normalized})
		if len(ranked) == maxResourcesPerSkill {
			break
		}
	}

	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: selection kept none of the candidate links", models.ErrSchema)
	}

	return ranked, nil
}

// NormalizeResourceURL forces the https scheme and canonicalizes short-link
// video URLs to the full watch form. Unparseable links map to "".
func NormalizeResourceURL(link string) string {
	link = strings.TrimRight(strings.TrimSpace(link), ".,;")
	if link == "" {
		return ""
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = "https"
	host := strings.ToLower(u.Host)

	if host == "youtu.be" {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/watch?v=" + id
		}
	}
	if strings.HasSuffix(host, "youtube.com") && strings.HasPrefix(u.Path, "/shorts/") {
		if id := strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/"); id != "" {
			return "https://www.youtube.com/watch?v=" + id
		}
	}

	u.Host = host
	return u.String()
}

// ClassifyResourceURL buckets a normalized URL into video, course or article.
func ClassifyResourceURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return models.ResourceTypeArticle
	}
	host := strings.ToLower(u.Host)

	for _, domain := range videoDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return models.ResourceTypeVideo
		}
	}
	for _, domain := range courseDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return models.ResourceTypeCourse
		}
	}
	return models.ResourceTypeArticle
}
