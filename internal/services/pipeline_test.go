package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

// --- test doubles shared across the package tests ---

type fakeGenerator struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeGenerator) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeSearch struct {
	snippets string
	hits     []SearchHit
	err      error
}

func (f *fakeSearch) Search(ctx context.Context, query string) (string, []SearchHit, error) {
	return f.snippets, f.hits, f.err
}

type fakeRetriever struct {
	context    string
	err        error
	lastTopics []string
}

func (f *fakeRetriever) RetrieveContext(ctx context.Context, query string, topics []string) (string, error) {
	f.lastTopics = topics
	return f.context, f.err
}

func newTestPipeline(gen TextGenerator, embedder Embedder, search SearchService) *Pipeline {
	return NewPipeline(
		NewResumeParserService(),
		NewMatcherService(embedder),
		gen,
		search,
		nil,
		NewResourceRanker(gen, 1),
		1,
	)
}

// --- stage tests ---

func TestResumeUploadExtractsSkills(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{}, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.ResumeText = "Senior engineer with Python, SQL and Docker. Also knows Go."

	outcome := p.ResumeUpload(context.Background(), state)

	require.False(t, outcome.Degraded())
	assert.Equal(t, []string{"python", "go", "sql", "docker"}, state.CandidateSkills)
	assert.NotEmpty(t, state.ResumeClean)
	assert.NotEmpty(t, state.ResumeWords)
}

func TestJDUploadExperienceExtraction(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{}, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.JDText = "We need a Python developer with 5+ years experience and SQL."

	outcome := p.JDUpload(context.Background(), state)
	require.False(t, outcome.Degraded())
	assert.Equal(t, "5+ years", state.JDExperience)

	state2 := models.NewCandidateState()
	state2.JDText = "Looking for a motivated Kubernetes enthusiast."
	p.JDUpload(context.Background(), state2)
	assert.Equal(t, "fresher", state2.JDExperience)
}

func TestMatchStagePartitionsSkills(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{}, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.ResumeClean = "python sql services"
	state.JDClean = "python sql kubernetes services"
	state.CandidateSkills = []string{"python", "sql"}
	state.JDSkills = []string{"python", "sql", "kubernetes"}

	outcome := p.Match(context.Background(), state)
	require.False(t, outcome.Degraded())

	assert.Equal(t, []string{"python", "sql"}, state.MatchedSkills)
	assert.Equal(t, []string{"kubernetes"}, state.MissingSkills)
	assert.GreaterOrEqual(t, state.MatchScore, 0.0)
	assert.LessOrEqual(t, state.MatchScore, 100.0)

	// matched ∪ missing covers the JD skill set, disjointly
	union := append(append([]string{}, state.MatchedSkills...), state.MissingSkills...)
	assert.ElementsMatch(t, state.JDSkills, union)
}

func TestMatchStageDegradesWithoutCorruptingUpstream(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding backend down")}
	p := newTestPipeline(&fakeGenerator{}, embedder, &fakeSearch{})

	state := models.NewCandidateState()
	state.ResumeClean = "python developer"
	state.JDClean = "python developer needed"
	state.CandidateSkills = []string{"python"}
	state.JDSkills = []string{"python"}

	outcome := p.Match(context.Background(), state)

	require.True(t, outcome.Degraded())
	assert.ErrorIs(t, outcome.Err, models.ErrScoring)
	assert.Zero(t, state.MatchScore)
	assert.NotNil(t, state.MatchedSkills)
	assert.NotNil(t, state.MissingSkills)
	assert.Empty(t, state.MatchedSkills)

	// upstream fields survive the failure
	assert.Equal(t, []string{"python"}, state.CandidateSkills)
	assert.Equal(t, "python developer", state.ResumeClean)
}

func TestMatchStageIdempotent(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{}, &fakeEmbedder{vector: []float32{1, 1}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.ResumeClean = "python sql"
	state.JDClean = "python sql go"
	state.CandidateSkills = []string{"python", "sql"}
	state.JDSkills = []string{"python", "sql", "go"}

	p.Match(context.Background(), state)
	first := *state
	p.Match(context.Background(), state)

	assert.Equal(t, first.MatchScore, state.MatchScore)
	assert.Equal(t, first.MatchedSkills, state.MatchedSkills)
	assert.Equal(t, first.MissingSkills, state.MissingSkills)
}

func TestSkillGapFallsBackDeterministically(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	search := &fakeSearch{snippets: "Learn at https://youtu.be/abc123 and https://www.coursera.org/learn/k8s plus https://kubernetes.io/docs"}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, search)

	state := models.NewCandidateState()
	state.MissingSkills = []string{"kubernetes"}

	outcome := p.SkillGap(context.Background(), state)
	require.False(t, outcome.Degraded())

	resources := state.SkillResources["kubernetes"]
	require.Len(t, resources, 3)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", resources[0].URL)
	assert.Equal(t, models.ResourceTypeVideo, resources[0].Type)
	assert.Equal(t, models.ResourceTypeCourse, resources[1].Type)
	assert.Equal(t, models.ResourceTypeArticle, resources[2].Type)
}

func TestSkillGapEmptySearchYieldsEmptyList(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{}, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{snippets: "nothing useful here"})

	state := models.NewCandidateState()
	state.MissingSkills = []string{"terraform"}

	outcome := p.SkillGap(context.Background(), state)
	require.False(t, outcome.Degraded())
	require.Contains(t, state.SkillResources, "terraform")
	assert.Empty(t, state.SkillResources["terraform"])
}

func TestAssessmentNormalizesAnswers(t *testing.T) {
	gen := &fakeGenerator{response: "Here you go: ```json\n" +
		`{"questions":[{"question":"Capital of Spain?","options":["Paris","Rome","Madrid","Lisbon"],"answer":"C) Madrid","explanation":"Geography."}]}` +
		"\n```"}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{snippets: "context"})

	state := models.NewCandidateState()
	state.JDSkills = []string{"python"}
	state.JDExperience = "3+ years"

	outcome := p.Assessment(context.Background(), state)
	require.False(t, outcome.Degraded())
	require.Len(t, state.MCQs, 1)
	assert.Equal(t, "C", state.MCQs[0].Answer)
}

func TestAssessmentWithoutJDSkillsIsEmptyNotDegraded(t *testing.T) {
	gen := &fakeGenerator{}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	outcome := p.Assessment(context.Background(), state)

	require.False(t, outcome.Degraded())
	assert.Empty(t, state.MCQs)
	assert.Zero(t, gen.calls)
}

func TestInterviewNormalizesQuestionTypes(t *testing.T) {
	gen := &fakeGenerator{response: `{"questions":[
		{"type":"Critical Thinking","question":"How would you debug a flaky test?"},
		{"type":"weird","question":"Explain goroutines."},
		{"type":"behavioral","question":"Tell me about a conflict."}]}`}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.JDSkills = []string{"go"}

	outcome := p.Interview(context.Background(), state)
	require.False(t, outcome.Degraded())
	require.Len(t, state.InterviewQuestions, 3)
	assert.Equal(t, models.QuestionTypeCriticalThinking, state.InterviewQuestions[0].Type)
	assert.Equal(t, models.QuestionTypeTechnical, state.InterviewQuestions[1].Type)
	assert.Equal(t, models.QuestionTypeBehavioral, state.InterviewQuestions[2].Type)
}

func TestInterviewPromptUsesReferenceContext(t *testing.T) {
	gen := &fakeGenerator{response: `{"questions":[{"type":"technical","question":"Explain indexes."}]}`}
	retriever := &fakeRetriever{context: "structured interviewing guide excerpt"}
	p := NewPipeline(
		NewResumeParserService(),
		NewMatcherService(&fakeEmbedder{vector: []float32{1, 0}}),
		gen,
		&fakeSearch{},
		retriever,
		NewResourceRanker(gen, 1),
		1,
	)

	state := models.NewCandidateState()
	state.JDSkills = []string{"sql"}

	outcome := p.Interview(context.Background(), state)
	require.False(t, outcome.Degraded())

	assert.Equal(t, []string{"interview_guide", "job_description"}, retriever.lastTopics)
	assert.Contains(t, gen.lastPrompt, "structured interviewing guide excerpt")
}

func TestEvaluationProducesAlignedFeedback(t *testing.T) {
	gen := &fakeGenerator{response: `{"score":87,"feedback_items":[
		{"question_index":0,"review_feedback":"Solid answer."},
		{"question_index":7,"review_feedback":"Out of range."},
		{"question_index":1,"review_feedback":"Needs depth."}]}`}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.InterviewQuestions = []models.InterviewQuestion{
		{Type: models.QuestionTypeTechnical, Question: "Q1"},
		{Type: models.QuestionTypeBehavioral, Question: "Q2"},
	}
	state.CandidateAnswers = []string{"A1", "A2"}

	outcome := p.Evaluation(context.Background(), state)
	require.False(t, outcome.Degraded())
	assert.Equal(t, 87.0, state.InterviewScore)
	require.Len(t, state.FeedbackItems, 2)
	assert.Equal(t, 0, state.FeedbackItems[0].QuestionIndex)
	assert.Equal(t, 1, state.FeedbackItems[1].QuestionIndex)
}

func TestEvaluationWithoutAnswersDefaults(t *testing.T) {
	gen := &fakeGenerator{}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	outcome := p.Evaluation(context.Background(), state)

	require.False(t, outcome.Degraded())
	assert.Zero(t, state.InterviewScore)
	assert.Equal(t, "Missing data for evaluation.", state.Feedback)
	assert.Zero(t, gen.calls)
}

func TestFullRunDegradedStagesDoNotStopChain(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model down")}
	p := newTestPipeline(gen, &fakeEmbedder{vector: []float32{1, 0}}, &fakeSearch{})

	state := models.NewCandidateState()
	state.ResumeText = "Python and SQL developer with 4 years experience"
	state.JDText = "Python, SQL and Kubernetes role, 3+ years"

	outcomes := p.Run(context.Background(), state)
	require.Len(t, outcomes, 6)

	stages := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		stages = append(stages, o.Stage)
	}
	assert.Equal(t, []string{
		StageResumeUpload, StageJDUpload, StageMatch,
		StageSkillGap, StageAssessment, StageInterview,
	}, stages)

	// match results survive the later generation failures
	assert.Equal(t, []string{"python", "sql"}, state.MatchedSkills)
	assert.Equal(t, []string{"kubernetes"}, state.MissingSkills)
	assert.NotNil(t, state.MCQs)
	assert.Empty(t, state.MCQs)
	assert.NotNil(t, state.InterviewQuestions)
	assert.Empty(t, state.InterviewQuestions)
}

func TestNormalizeMCQsDropsUnresolvableAnswers(t *testing.T) {
	raw := []models.MCQQuestion{
		{Question: "Q1", Options: []string{"a1", "a2", "a3", "a4"}, Answer: "b"},
		{Question: "Q2", Options: []string{"x", "y", "z", "w"}, Answer: "definitely not an option"},
		{Question: "Q3", Options: []string{"foo", "bar", "baz", "qux"}, Answer: "BAR"},
		{Question: "Q4", Options: []string{"only", "three", "options"}, Answer: "A"},
	}

	normalized := NormalizeMCQs(raw)
	require.Len(t, normalized, 2)
	assert.Equal(t, "B", normalized[0].Answer)
	assert.Equal(t, "B", normalized[1].Answer)
}
