package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

// Context blocks are truncated before being embedded in prompts so a verbose
// search backend cannot blow up the request.
const (
	maxSearchContextLen  = 1000
	maxSnippetContextLen = 800
	maxDocumentExcerpt   = 500
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAssessmentPrompt creates the MCQ generation prompt.
func (pb *PromptBuilder) BuildAssessmentPrompt(topics, jdExperience, searchContext, referenceContext string) string {
	return fmt.Sprintf(`You are tasked with generating a technical MCQ assessment.
- Generate exactly 25 high-quality MCQs.
- Mix: concept checks, applied coding, debugging, optimization.
- Each MCQ must include: question, 4 options, correct answer, and a brief explanation.
- Context: Role requires %s with %s experience.
- Your output MUST be a valid JSON object of the form {"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "answer": "...", "explanation": "..."}]} and nothing else.

Web Results:
%s

Reference Material:
%s`, topics, jdExperience, Truncate(searchContext, maxSearchContextLen), Truncate(referenceContext, maxSnippetContextLen))
}

// BuildInterviewPrompt creates the interview question generation prompt.
func (pb *PromptBuilder) BuildInterviewPrompt(topics, jdExperience, searchContext, referenceContext, resumeExcerpt, jdExcerpt string) string {
	return fmt.Sprintf(`You are tasked with generating interview questions.
- Generate exactly 15 questions.
- Mix: 7 technical, 4 behavioral, 4 critical-thinking.
- Questions should be tailored to both the candidate's resume and the job description.
- Focus on practical, scenario-based, and thought-provoking questions.
- Context: Role requires %s with %s experience.
- Output MUST be a valid JSON object of the form {"questions": [{"type": "technical|behavioral|critical-thinking", "question": "..."}]} and nothing else.

Web Results:
%s

Reference Material:
%s

Candidate Resume Snippet: %s
Job Description Snippet: %s`, topics, jdExperience, Truncate(searchContext, maxSearchContextLen),
		Truncate(referenceContext, maxSnippetContextLen),
		Truncate(resumeExcerpt, maxDocumentExcerpt), Truncate(jdExcerpt, maxDocumentExcerpt))
}

// BuildEvaluationPrompt creates the interview-answer review prompt.
func (pb *PromptBuilder) BuildEvaluationPrompt(questions []models.InterviewQuestion, answers []string) string {
	var qa strings.Builder
	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		fmt.Fprintf(&qa, "Q%d: %s\nA%d: %s\n", i, q.Question, i, answer)
	}

	return fmt.Sprintf(`You are a senior technical interviewer. Evaluate the candidate's interview answers below.

%s
Return a JSON object with two keys:
- "score": an integer between 0 and 100 for overall performance.
- "feedback_items": a JSON array of objects {"question_index": <int>, "review_feedback": "<constructive feedback for that answer>"}, one per question, using the question numbers above as question_index.`, qa.String())
}

// FormatReferenceContext renders retrieved reference snippets for prompt use.
func FormatReferenceContext(snippets []ContextSnippet) string {
	if len(snippets) == 0 {
		return "No relevant reference material found."
	}

	var parts []string
	for i, snippet := range snippets {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, snippet.Score, strings.TrimSpace(snippet.Text)))
	}

	return strings.Join(parts, "\n\n")
}

// Truncate caps s at n bytes, backing up to a rune boundary so the cut never
// leaves invalid UTF-8 behind.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
