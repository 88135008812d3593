package models

import "time"

type Candidate struct {
	ID          string `json:"id" gorm:"primaryKey"`
	ElectionID  string `json:"-" gorm:"index"`
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
}

// Election is immutable after creation: no update or delete operation exists.
type Election struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     time.Time   `json:"endTime"`
	Active      bool        `json:"active"`
	Candidates  []Candidate `json:"candidates" gorm:"foreignKey:ElectionID"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// IsOpen reports whether votes are accepted at the given instant.
func (e *Election) IsOpen(now time.Time) bool {
	return e.Active && !now.Before(e.StartTime) && now.Before(e.EndTime)
}

func (e *Election) HasCandidate(candidateID string) bool {
	for _, c := range e.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}
