package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// MentorStats are denormalized counters maintained by session transitions.
// They only ever increase; there is no decrement path.
type MentorStats struct {
	SessionsAccepted  int `json:"sessionsAccepted"`
	SessionsCompleted int `json:"sessionsCompleted"`
	StudentsHelped    int `json:"studentsHelped"`
}

// Mentor represents a mentor profile with aggregate statistics
type Mentor struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Headline      string      `json:"headline"`
	About         string      `json:"about"`
	Expertise     []string    `json:"expertise"`
	Stats         MentorStats `json:"stats"`
	TotalSessions int         `json:"totalSessions"`
	AverageRating float64     `json:"averageRating"`
	RatingCount   int         `json:"ratingCount"`
	IsVisible     bool        `json:"isVisible"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// StatDeltas describes the counter increments a transition carries.
// Zero value means no stat side effect.
type StatDeltas struct {
	SessionsAccepted  int
	SessionsCompleted int
	StudentsHelped    int
	TotalSessions     int
}

// IsZero reports whether the transition carries no stat side effect
func (d StatDeltas) IsZero() bool {
	return d == StatDeltas{}
}

// StatDeltasFor returns the mentor counter increments for entering a status.
// Accepting increments sessionsAccepted; completing increments totalSessions,
// studentsHelped and sessionsCompleted. Other statuses carry no deltas.
func StatDeltasFor(status SessionStatus) StatDeltas {
	switch status {
	case StatusAccepted:
		return StatDeltas{SessionsAccepted: 1}
	case StatusCompleted:
		return StatDeltas{SessionsCompleted: 1, StudentsHelped: 1, TotalSessions: 1}
	default:
		return StatDeltas{}
	}
}

// ScanMentor scans a single PostgreSQL row into a Mentor struct
// Expected columns: id, name, email, headline, about, expertise,
// sessions_accepted, sessions_completed, students_helped, total_sessions,
// average_rating, rating_count, is_visible, created_at, updated_at
func ScanMentor(row pgx.Row) (*Mentor, error) {
	var m Mentor

	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Headline,
		&m.About,
		&m.Expertise,
		&m.Stats.SessionsAccepted,
		&m.Stats.SessionsCompleted,
		&m.Stats.StudentsHelped,
		&m.TotalSessions,
		&m.AverageRating,
		&m.RatingCount,
		&m.IsVisible,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
