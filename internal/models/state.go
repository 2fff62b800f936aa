package models

// Resource type labels for skill-gap learning links.
const (
	ResourceTypeVideo   = "video"
	ResourceTypeCourse  = "course"
	ResourceTypeArticle = "article"
)

// Interview question categories.
const (
	QuestionTypeTechnical        = "technical"
	QuestionTypeBehavioral       = "behavioral"
	QuestionTypeCriticalThinking = "critical-thinking"
)

type MCQQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

type InterviewQuestion struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

type Resource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

// FeedbackItem is the per-question review produced by interview evaluation.
type FeedbackItem struct {
	QuestionIndex  int    `json:"question_index"`
	ReviewFeedback string `json:"review_feedback"`
}

// CandidateState is the single record threaded through every pipeline stage.
// Each stage reads whatever upstream fields it needs and writes only its own
// output fields; no stage clears fields set by an earlier stage.
type CandidateState struct {
	// Resume
	ResumeFile      string   `json:"resume_file,omitempty"`
	ResumeText      string   `json:"resume_text,omitempty"`
	ResumeClean     string   `json:"resume_clean,omitempty"`
	ResumeSentences []string `json:"resume_sentences,omitempty"`
	ResumeWords     []string `json:"resume_words,omitempty"`
	CandidateSkills []string `json:"candidate_skills"`

	// Job description
	JDText       string   `json:"jd_text,omitempty"`
	JDClean      string   `json:"jd_clean,omitempty"`
	JDSentences  []string `json:"jd_sentences,omitempty"`
	JDWords      []string `json:"jd_words,omitempty"`
	JDSkills     []string `json:"jd_skills"`
	JDExperience string   `json:"jd_experience,omitempty"`

	// Matching
	TFIDFScore     float64  `json:"tfidf_score"`
	BowScore       float64  `json:"bow_score"`
	EmbeddingScore float64  `json:"embedding_score"`
	MatchScore     float64  `json:"match_score"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`

	// Skill gap
	SkillResources map[string][]Resource `json:"skill_resources"`

	// Assessment
	MCQs []MCQQuestion `json:"mcqs"`

	// Interview
	InterviewQuestions []InterviewQuestion `json:"interview_questions"`
	CandidateAnswers   []string            `json:"candidate_answers"`
	InterviewScore     float64             `json:"interview_score"`
	Feedback           string              `json:"feedback,omitempty"`
	FeedbackItems      []FeedbackItem      `json:"feedback_items"`
}

// Clone returns a deep copy of the state. Handlers respond from a clone taken
// under the session lock, so serializing a response never reads a record that
// another request is mutating.
func (s *CandidateState) Clone() *CandidateState {
	clone := *s

	clone.ResumeSentences = append([]string(nil), s.ResumeSentences...)
	clone.ResumeWords = append([]string(nil), s.ResumeWords...)
	clone.CandidateSkills = append([]string{}, s.CandidateSkills...)
	clone.JDSentences = append([]string(nil), s.JDSentences...)
	clone.JDWords = append([]string(nil), s.JDWords...)
	clone.JDSkills = append([]string{}, s.JDSkills...)
	clone.MatchedSkills = append([]string{}, s.MatchedSkills...)
	clone.MissingSkills = append([]string{}, s.MissingSkills...)
	clone.CandidateAnswers = append([]string{}, s.CandidateAnswers...)
	clone.MCQs = append([]MCQQuestion{}, s.MCQs...)
	for i := range clone.MCQs {
		clone.MCQs[i].Options = append([]string(nil), s.MCQs[i].Options...)
	}
	clone.InterviewQuestions = append([]InterviewQuestion{}, s.InterviewQuestions...)
	clone.FeedbackItems = append([]FeedbackItem{}, s.FeedbackItems...)

	clone.SkillResources = make(map[string][]Resource, len(s.SkillResources))
	for skill, resources := range s.SkillResources {
		clone.SkillResources[skill] = append([]Resource{}, resources...)
	}

	return &clone
}

// NewCandidateState returns a state with every collection field non-nil so a
// degraded stage still serializes to empty lists, never null.
func NewCandidateState() *CandidateState {
	return &CandidateState{
		CandidateSkills:    []string{},
		JDSkills:           []string{},
		MatchedSkills:      []string{},
		MissingSkills:      []string{},
		SkillResources:     map[string][]Resource{},
		MCQs:               []MCQQuestion{},
		InterviewQuestions: []InterviewQuestion{},
		CandidateAnswers:   []string{},
		FeedbackItems:      []FeedbackItem{},
	}
}
