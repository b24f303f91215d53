package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusReviewed  ApplicationStatus = "reviewed"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

type Application struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Satu pelamar hanya boleh melamar satu kali per loker.
	JobID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_app_job_seeker,priority:1" json:"job_id"`
	JobSeekerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_app_job_seeker,priority:2;index" json:"job_seeker_id"`

	CoverNote string            `gorm:"type:text" json:"cover_note"`
	Status    ApplicationStatus `gorm:"type:varchar(20);default:'submitted'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job       *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	JobSeeker *JobSeeker `gorm:"foreignKey:JobSeekerID" json:"job_seeker,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
