package models

import (
	"math/rand"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountJobSeeker AccountType = "job_seeker"
	AccountRecruiter AccountType = "recruiter"
)

// AccountRef identifies the owner of a coin balance. Handlers build it once from
// the JWT claims and thread it through the wallet services, so nothing below the
// handler layer has to guess the role again.
type AccountRef struct {
	ID   uuid.UUID
	Type AccountType
}

func (r AccountRef) Valid() bool {
	return r.ID != uuid.Nil && (r.Type == AccountJobSeeker || r.Type == AccountRecruiter)
}

// GenerateReferralCode generates a random alphanumeric code
func GenerateReferralCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
