package models

type StagePayload struct {
	SessionID        string   `json:"session_id" validate:"required"`
	JDText           string   `json:"jd_text,omitempty"`
	JobID            uint     `json:"job_id,omitempty"`
	CandidateAnswers []string `json:"candidate_answers,omitempty"`
}

type CreateJobRequest struct {
	Title   string `json:"title"`
	Company string `json:"company" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

type JobResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}
