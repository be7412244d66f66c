package model

import "time"

type Course struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code,omitempty"`
	CoordinatorID  string    `json:"coordinator_id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Registration string    `json:"registration"`
	CourseID     string    `json:"course_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type TCCType string

const (
	TCCBachelor  TCCType = "BACHELOR"
	TCCMaster    TCCType = "MASTER"
	TCCDoctorate TCCType = "DOCTORATE"
)

type TCC struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Type                TCCType   `json:"type"`
	AuthorID            string    `json:"author_id"`
	SupervisorID        string    `json:"supervisor_id"`
	CourseID            string    `json:"course_id"`
	FileID              string    `json:"file_id"`
	DefenseRecordFileID *string   `json:"defense_record_file_id,omitempty"`
	Keywords            []string  `json:"keywords,omitempty"`
	Year                int       `json:"year,omitempty"`
	Author              *Student  `json:"author,omitempty"`
	Supervisor          *User     `json:"supervisor,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// TCCSearchResult : ранжирование целиком на стороне API
type TCCSearchResult struct {
	TCC            TCC      `json:"tcc"`
	RelevanceScore float64  `json:"relevance_score"`
	MatchedFields  []string `json:"matched_fields"`
}

// RelevancePercent : score приходит в диапазоне 0..1
func (r TCCSearchResult) RelevancePercent() int {
	score := r.RelevanceScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return int(score*100 + 0.5)
}
