package model

import "time"

// Evaluation lifecycle states.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Admin account roles.
const (
	RoleAdmin   = "admin"
	RoleCreator = "creator"
)

// Evaluation is one candidate's questionnaire session, addressed publicly by Token.
type Evaluation struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Token           string     `json:"token" gorm:"size:36;not null;uniqueIndex"`
	Profile         string     `json:"profile" gorm:"size:32;not null;default:'security'"`
	CandidateName   string     `json:"candidate_name" gorm:"not null"`
	CandidateID     *string    `json:"candidate_id"` // cédula de identidad
	CandidateEmail  *string    `json:"candidate_email"`
	CandidatePhone  *string    `json:"candidate_phone"`
	Position        *string    `json:"position"`
	Company         *string    `json:"company"`
	Status          string     `json:"status" gorm:"size:16;not null;default:'pending';index"`
	CurrentQuestion int        `json:"current_question" gorm:"not null;default:0"`
	CreatedBy       *uint      `json:"created_by,omitempty"`
	Responses       []Response `json:"-" gorm:"foreignKey:EvaluationID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// Response is the chosen option for one question of one evaluation. There is
// at most one per (evaluation, question); answering again overwrites it.
type Response struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EvaluationID uint      `json:"evaluation_id" gorm:"not null;uniqueIndex:idx_response_eval_question"`
	QuestionID   int       `json:"question_id" gorm:"not null;uniqueIndex:idx_response_eval_question"`
	AnswerValue  int       `json:"answer_value" gorm:"not null"`
	AnsweredAt   time.Time `json:"answered_at"`
}

// AdminUser is a back-office account.
type AdminUser struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role" gorm:"size:16;not null;default:'creator'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// All lists every persisted model, for migrations.
func All() []interface{} {
	return []interface{}{&Evaluation{}, &Response{}, &AdminUser{}}
}
