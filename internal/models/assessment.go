package models

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentRecord is the audit row written for every completed request.
// Scores and Recommendations are stored as JSON text.
type AssessmentRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UPC             string    `gorm:"type:text;index;not null" json:"upc"`
	Rubric          string    `gorm:"type:text;not null" json:"rubric"`
	Scores          string    `gorm:"type:text" json:"scores"`
	Recommendations string    `gorm:"type:text" json:"recommendations"`
	Source          string    `gorm:"type:text" json:"source"`
	RawReply        string    `gorm:"type:text" json:"-"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AssessmentRecord) TableName() string {
	return "assessments"
}
