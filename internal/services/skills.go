package services

import (
	"regexp"
	"strings"
)

// CommonSkills is the curated lexicon matched against resume and JD text.
// Multi-word labels are permitted; matching is case-insensitive.
var CommonSkills = []string{
	// Programming languages
	"python", "java", "c", "c++", "c#", "javascript", "typescript", "go", "rust", "ruby", "php", "swift", "kotlin", "scala", "perl", "r", "matlab", "dart",

	// Web development
	"html", "css", "bootstrap", "sass", "less",
	"react", "angular", "vue", "next.js", "nuxt", "ember.js", "jquery",
	"node", "express", "django", "flask", "fastapi", "spring", "laravel", "react native",

	// Databases
	"sql", "mysql", "postgresql", "sqlite", "mongodb", "cassandra", "redis", "oracle", "firebase", "dynamodb",

	// Data science & analytics
	"numpy", "pandas", "scikit-learn", "matplotlib", "seaborn", "plotly", "tensorflow", "pytorch", "keras", "opencv", "nltk", "spacy",
	"statsmodels", "mlflow", "xgboost", "lightgbm", "catboost", "shap", "lime",

	// ML/AI libraries
	"transformers", "huggingface", "machine learning",

	// Mobile development
	"android", "ios", "flutter", "xamarin",

	// Cloud & DevOps
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible", "ci/cd", "jenkins", "gitlab ci", "circleci", "travis ci",
	"helm", "prometheus", "grafana", "elk stack", "splunk", "mlops",

	// Networking & security
	"tcp/ip", "udp", "dns", "firewall", "vpn", "wireshark", "penetration testing", "cybersecurity", "network security", "oauth", "jwt", "ssl", "tls",

	// Scripting & automation
	"bash", "shell scripting", "powershell", "automation", "robot framework", "selenium", "puppeteer",

	// API & integration
	"rest api", "graphql", "soap", "postman", "grpc", "webhooks",

	// Operating systems
	"linux", "windows", "macos", "unix",

	// General tools
	"git", "github", "gitlab", "jira", "confluence", "trello", "slack", "notion", "excel", "power bi", "tableau",
}

// shortValidSkills are labels too short for boundary matching: a substring
// check would turn "car" into "c" and "gopher" into "go". They only match as
// whole tokens.
var shortValidSkills = map[string]bool{"c": true, "r": true, "go": true}

var (
	tokenRe      = regexp.MustCompile(`\b\w+\b`)
	// Longest alternatives first; leftmost-first matching would otherwise
	// truncate "years" to "year".
	experienceRe = regexp.MustCompile(`(\d+\+?\s*(?:years|year|yrs|yr|experience))`)
	skillRes     = buildSkillPatterns(CommonSkills)
)

func buildSkillPatterns(skills []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(skills))
	for _, skill := range skills {
		if shortValidSkills[skill] {
			continue
		}
		// Labels like "c++" and ".net" end in non-word runes, so plain \b
		// anchors miss them. Anchor on the absence of adjacent word runes
		// instead.
		patterns[skill] = regexp.MustCompile(`(?:^|\W)` + regexp.QuoteMeta(skill) + `(?:\W|$)`)
	}
	return patterns
}

// ExtractSkills matches the lexicon against text and returns the deduplicated
// labels found, in lexicon order. It never fails; unusable input degrades to
// an empty set.
func ExtractSkills(text string, lexicon []string) []string {
	matched := []string{}
	if text == "" {
		return matched
	}

	lower := strings.ToLower(text)
	tokens := map[string]bool{}
	for _, tok := range tokenRe.FindAllString(lower, -1) {
		tokens[tok] = true
	}

	seen := map[string]bool{}
	for _, skill := range lexicon {
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}

		if shortValidSkills[key] {
			if tokens[key] {
				matched = append(matched, skill)
				seen[key] = true
			}
			continue
		}

		re, ok := skillRes[key]
		if !ok {
			re = regexp.MustCompile(`(?:^|\W)` + regexp.QuoteMeta(key) + `(?:\W|$)`)
		}
		if re.MatchString(lower) {
			matched = append(matched, skill)
			seen[key] = true
		}
	}

	return matched
}

// ExtractExperience returns the first experience requirement found in the
// text, e.g. "3+ years". Text without any requirement maps to "fresher".
func ExtractExperience(text string) string {
	if m := experienceRe.FindString(strings.ToLower(text)); m != "" {
		return m
	}
	return "fresher"
}
