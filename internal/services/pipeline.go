package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

// Stage names, in full-chain order. Evaluation runs separately once the
// candidate has answered.
const (
	StageResumeUpload = "resume_upload"
	StageJDUpload     = "jd_upload"
	StageMatch        = "match"
	StageSkillGap     = "skill_gap"
	StageAssessment   = "assessment"
	StageInterview    = "interview"
	StageEvaluation   = "evaluation"
)

const maxAssessmentTopics = 20

// Pipeline drives the staged screening flow. Every stage is a total function
// over *CandidateState: it reads upstream fields, writes only its own output
// fields, and converts any internal failure into safe defaults plus a
// StageOutcome instead of an error to the caller.
type Pipeline struct {
	resumeParser    ResumeParserService
	matcher         MatcherService
	generator       TextGenerator
	resourceSearch  *QueryTool
	mcqSearch       *QueryTool
	interviewSearch *QueryTool
	retriever       ContextRetriever
	ranker          ResourceRanker
	prompts         *PromptBuilder
	maxRetries      int
}

func NewPipeline(
	resumeParser ResumeParserService,
	matcher MatcherService,
	generator TextGenerator,
	search SearchService,
	retriever ContextRetriever,
	ranker ResourceRanker,
	maxRetries int,
) *Pipeline {
	return &Pipeline{
		resumeParser:    resumeParser,
		matcher:         matcher,
		generator:       generator,
		resourceSearch:  NewQueryTool(search, "Best resources to learn %s programming (docs, tutorials, courses)"),
		mcqSearch:       NewQueryTool(search, "technical MCQs for %s with answers and explanations"),
		interviewSearch: NewQueryTool(search, "interview questions for %s with behavioral and critical thinking mix"),
		retriever:       retriever,
		ranker:          ranker,
		prompts:         NewPromptBuilder(),
		maxRetries:      maxRetries,
	}
}

// Run applies the full chain in order, threading one state through all
// stages. It always returns every stage's outcome; a degraded stage never
// stops the chain.
func (p *Pipeline) Run(ctx context.Context, state *models.CandidateState) []models.StageOutcome {
	return []models.StageOutcome{
		p.ResumeUpload(ctx, state),
		p.JDUpload(ctx, state),
		p.Match(ctx, state),
		p.SkillGap(ctx, state),
		p.Assessment(ctx, state),
		p.Interview(ctx, state),
	}
}

// runStage is the failure boundary shared by all stages: fn either fills the
// stage's output fields and returns nil, or returns an error after which
// defaults() restores safe values for those same fields. Panics are treated
// as errors. Fields written by earlier stages are never touched here.
func runStage(name string, fn func() error, defaults func()) (outcome models.StageOutcome) {
	outcome = models.StageOutcome{Stage: name}

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("%w: panic: %v", models.ErrExtraction, r)
			defaults()
			log.Printf("❌ Stage %s panicked: %v\n", name, r)
		}
	}()

	if err := fn(); err != nil {
		outcome.Err = err
		defaults()
		log.Printf("⚠️ Stage %s degraded: %v\n", name, err)
	}
	return outcome
}

// ResumeUpload extracts, normalizes and tokenizes the resume text and pulls
// the candidate's skills from it.
func (p *Pipeline) ResumeUpload(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageResumeUpload, func() error {
		if state.ResumeText == "" && state.ResumeFile != "" {
			text, err := p.resumeParser.ExtractText(state.ResumeFile)
			if err != nil {
				return fmt.Errorf("%w: %v", models.ErrExtraction, err)
			}
			state.ResumeText = text
		}

		state.ResumeClean = NormalizeText(state.ResumeText)
		state.ResumeSentences, state.ResumeWords = TokenizeText(state.ResumeClean)
		state.CandidateSkills = ExtractSkills(state.ResumeText, CommonSkills)

		log.Printf("📄 Resume loaded - %d words, %d sentences, %d skills\n",
			len(state.ResumeWords), len(state.ResumeSentences), len(state.CandidateSkills))
		return nil
	}, func() {
		state.CandidateSkills = []string{}
	})
}

// JDUpload normalizes the job description, extracts its skill set and the
// experience requirement.
func (p *Pipeline) JDUpload(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageJDUpload, func() error {
		state.JDClean = NormalizeText(state.JDText)
		state.JDSentences, state.JDWords = TokenizeText(state.JDClean)
		state.JDSkills = ExtractSkills(state.JDText, CommonSkills)
		state.JDExperience = ExtractExperience(state.JDClean)

		log.Printf("📋 JD processed - %d words, experience: %s, %d skills\n",
			len(state.JDWords), state.JDExperience, len(state.JDSkills))
		return nil
	}, func() {
		state.JDSkills = []string{}
		state.JDExperience = "fresher"
	})
}

// Match scores the resume against the JD and partitions the JD skills into
// matched and missing.
func (p *Pipeline) Match(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageMatch, func() error {
		result, err := p.matcher.Match(ctx, state.ResumeClean, state.JDClean, state.CandidateSkills, state.JDSkills)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrScoring, err)
		}

		state.TFIDFScore = result.TFIDFScore
		state.BowScore = result.BowScore
		state.EmbeddingScore = result.EmbeddingScore
		state.MatchScore = result.MatchScore
		state.MatchedSkills = result.MatchedSkills
		state.MissingSkills = result.MissingSkills

		log.Printf("🤝 Match score %.2f (matched %d, missing %d)\n",
			state.MatchScore, len(state.MatchedSkills), len(state.MissingSkills))
		return nil
	}, func() {
		state.TFIDFScore = 0
		state.BowScore = 0
		state.EmbeddingScore = 0
		state.MatchScore = 0
		state.MatchedSkills = []string{}
		state.MissingSkills = []string{}
	})
}

// SkillGap maps every missing skill to up to five learning resources.
func (p *Pipeline) SkillGap(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageSkillGap, func() error {
		resources := map[string][]models.Resource{}

		if len(state.MissingSkills) == 0 {
			state.SkillResources = resources
			log.Println("✅ No missing skills. Candidate matches all JD skills.")
			return nil
		}

		for _, skill := range state.MissingSkills {
			snippets, hits, err := p.resourceSearch.Run(ctx, skill)
			if err != nil {
				log.Printf("⚠️ Resource search for %q failed: %v\n", skill, err)
				resources[skill] = []models.Resource{}
				continue
			}
			resources[skill] = p.ranker.RankResources(ctx, skill, snippets, hits)
		}

		state.SkillResources = resources
		log.Printf("📚 Skill gap analysis generated for %d skills\n", len(resources))
		return nil
	}, func() {
		state.SkillResources = map[string][]models.Resource{}
	})
}

type assessmentPayload struct {
	Questions []models.MCQQuestion `json:"questions"`
}

// Assessment generates the technical MCQ set for the JD skills.
func (p *Pipeline) Assessment(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageAssessment, func() error {
		if len(state.JDSkills) == 0 {
			state.MCQs = []models.MCQQuestion{}
			log.Println("❌ No JD skills to base assessment on.")
			return nil
		}

		subject := joinTopics(state.JDSkills)
		searchContext := p.gatherSearchContext(ctx, p.mcqSearch, subject)
		referenceContext := p.gatherReferenceContext(ctx, subject, []string{"assessment_bank", "job_description"})

		prompt := p.prompts.BuildAssessmentPrompt(subject, state.JDExperience, searchContext, referenceContext)
		response, err := p.generator.GenerateTextWithRetry(ctx, prompt, 0.3, p.maxRetries)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}

		var payload assessmentPayload
		if err := RecoverJSONInto(response, &payload); err != nil {
			return err
		}

		state.MCQs = NormalizeMCQs(payload.Questions)
		if len(state.MCQs) == 0 {
			return fmt.Errorf("%w: no usable MCQs in response", models.ErrSchema)
		}

		log.Printf("📝 Generated %d MCQs\n", len(state.MCQs))
		return nil
	}, func() {
		state.MCQs = []models.MCQQuestion{}
	})
}

type interviewPayload struct {
	Questions []models.InterviewQuestion `json:"questions"`
}

// Interview generates the mixed technical/behavioral/critical-thinking
// question set.
func (p *Pipeline) Interview(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageInterview, func() error {
		if len(state.JDSkills) == 0 {
			state.InterviewQuestions = []models.InterviewQuestion{}
			log.Println("❌ No JD skills to base interview questions on.")
			return nil
		}

		subject := joinTopics(state.JDSkills)
		searchContext := p.gatherSearchContext(ctx, p.interviewSearch, subject)
		referenceContext := p.gatherReferenceContext(ctx, subject, []string{"interview_guide", "job_description"})

		prompt := p.prompts.BuildInterviewPrompt(subject, state.JDExperience, searchContext, referenceContext, state.ResumeText, state.JDText)
		response, err := p.generator.GenerateTextWithRetry(ctx, prompt, 0.5, p.maxRetries)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}

		var payload interviewPayload
		if err := RecoverJSONInto(response, &payload); err != nil {
			return err
		}

		state.InterviewQuestions = NormalizeInterviewQuestions(payload.Questions)
		if len(state.InterviewQuestions) == 0 {
			return fmt.Errorf("%w: no usable interview questions in response", models.ErrSchema)
		}

		log.Printf("🎤 Generated %d interview questions\n", len(state.InterviewQuestions))
		return nil
	}, func() {
		state.InterviewQuestions = []models.InterviewQuestion{}
	})
}

type evaluationPayload struct {
	Score         float64               `json:"score"`
	FeedbackItems []models.FeedbackItem `json:"feedback_items"`
}

// Evaluation reviews the candidate's interview answers, producing an overall
// score and per-question feedback.
func (p *Pipeline) Evaluation(ctx context.Context, state *models.CandidateState) models.StageOutcome {
	return runStage(StageEvaluation, func() error {
		if len(state.InterviewQuestions) == 0 || len(state.CandidateAnswers) == 0 {
			state.InterviewScore = 0
			state.Feedback = "Missing data for evaluation."
			state.FeedbackItems = []models.FeedbackItem{}
			log.Println("❌ Cannot evaluate. Missing interview questions or candidate answers.")
			return nil
		}

		prompt := p.prompts.BuildEvaluationPrompt(state.InterviewQuestions, state.CandidateAnswers)
		response, err := p.generator.GenerateTextWithRetry(ctx, prompt, 0.3, p.maxRetries)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}

		var payload evaluationPayload
		if err := RecoverJSONInto(response, &payload); err != nil {
			return err
		}

		state.InterviewScore = math.Min(math.Max(payload.Score, 0), 100)
		state.FeedbackItems = filterFeedbackItems(payload.FeedbackItems, len(state.InterviewQuestions))
		state.Feedback = summarizeFeedback(state.FeedbackItems)

		log.Printf("🧮 Interview evaluated: score %.1f, %d feedback items\n",
			state.InterviewScore, len(state.FeedbackItems))
		return nil
	}, func() {
		state.InterviewScore = 0
		state.Feedback = ""
		state.FeedbackItems = []models.FeedbackItem{}
	})
}

func (p *Pipeline) gatherSearchContext(ctx context.Context, tool *QueryTool, subject string) string {
	snippets, _, err := tool.Run(ctx, subject)
	if err != nil {
		log.Printf("⚠️ Search context unavailable: %v\n", err)
		return ""
	}
	return snippets
}

func (p *Pipeline) gatherReferenceContext(ctx context.Context, query string, topics []string) string {
	if p.retriever == nil {
		return ""
	}
	refContext, err := p.retriever.RetrieveContext(ctx, query, topics)
	if err != nil {
		log.Printf("⚠️ Reference context unavailable: %v\n", err)
		return ""
	}
	return refContext
}

func joinTopics(skills []string) string {
	if len(skills) > maxAssessmentTopics {
		skills = skills[:maxAssessmentTopics]
	}
	topics := strings.Join(skills, ", ")
	if topics == "" {
		topics = "general programming"
	}
	return topics
}

// NormalizeMCQs keeps only MCQs with a question and exactly four options, and
// rewrites each answer into the single letter A-D referencing its option.
// Questions whose answer cannot be resolved to an option are dropped.
func NormalizeMCQs(raw []models.MCQQuestion) []models.MCQQuestion {
	normalized := []models.MCQQuestion{}
	for _, q := range raw {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) != 4 {
			continue
		}
		letter, ok := resolveAnswerLetter(q.Answer, q.Options)
		if !ok {
			continue
		}
		q.Answer = letter
		normalized = append(normalized, q)
	}
	return normalized
}

// resolveAnswerLetter maps a raw answer ("C", "c) Madrid", or the full option
// text in any casing) to its option letter.
func resolveAnswerLetter(answer string, options []string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}

	// Bare letter or "C)" / "C." / "C:" prefix
	first := strings.ToUpper(answer[:1])
	if first >= "A" && first <= "D" {
		rest := strings.TrimSpace(answer[1:])
		if rest == "" || strings.HasPrefix(rest, ")") || strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ":") {
			if int(first[0]-'A') < len(options) {
				return first, true
			}
		}
	}

	for i, option := range options {
		if equalAnswerText(answer, option) {
			return string(rune('A' + i)), true
		}
	}

	return "", false
}

func equalAnswerText(answer, option string) bool {
	return strings.EqualFold(stripAnswerPrefix(answer), stripAnswerPrefix(option))
}

// stripAnswerPrefix removes a leading "A)"-style option marker.
func stripAnswerPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first := s[0]
		if (first >= 'A' && first <= 'D') || (first >= 'a' && first <= 'd') {
			rest := s[1:]
			for _, sep := range []string{")", ".", ":"} {
				if strings.HasPrefix(rest, sep) {
					return strings.TrimSpace(rest[1:])
				}
			}
		}
	}
	return s
}

// NormalizeInterviewQuestions canonicalizes question types into the three
// known categories, defaulting unknown labels to technical.
func NormalizeInterviewQuestions(raw []models.InterviewQuestion) []models.InterviewQuestion {
	normalized := []models.InterviewQuestion{}
	for _, q := range raw {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}

		qType := strings.ToLower(strings.TrimSpace(q.Type))
		qType = strings.ReplaceAll(qType, " ", "-")
		switch qType {
		case models.QuestionTypeTechnical, models.QuestionTypeBehavioral, models.QuestionTypeCriticalThinking:
		default:
			qType = models.QuestionTypeTechnical
		}

		normalized = append(normalized, models.InterviewQuestion{Type: qType, Question: strings.TrimSpace(q.Question)})
	}
	return normalized
}

func filterFeedbackItems(items []models.FeedbackItem, questionCount int) []models.FeedbackItem {
	filtered := []models.FeedbackItem{}
	for _, item := range items {
		if item.QuestionIndex < 0 || item.QuestionIndex >= questionCount {
			continue
		}
		if strings.TrimSpace(item.ReviewFeedback) == "" {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func summarizeFeedback(items []models.FeedbackItem) string {
	if len(items) == 0 {
		return "No feedback provided."
	}

	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "Q%d: %s\n", item.QuestionIndex, item.ReviewFeedback)
	}
	return strings.TrimSpace(sb.String())
}
