package events

import (
	"time"

	"github.com/eztechnick/exam-portal/internal/models"
)

type EventType string

const (
	EventExamSubmitted EventType = "exam.submitted"
)

// ExamSubmittedEvent is emitted once per successfully persisted submission.
// Consumers (notification fan-out, analytics) are external; publishing is
// fire-and-forget and never blocks or fails a submission.
type ExamSubmittedEvent struct {
	ID          string              `json:"id"`
	Type        EventType           `json:"type"`
	ResultID    string              `json:"result_id"`
	Subject     string              `json:"subject"`
	StudentName string              `json:"student_name"`
	Score       float64             `json:"score"`
	TotalPoints float64             `json:"total_points"`
	Status      models.ResultStatus `json:"status"`
	Source      string              `json:"source"`
	Timestamp   time.Time           `json:"timestamp"`
}

// NewExamSubmittedEvent builds the event for a persisted result.
func NewExamSubmittedEvent(id string, result models.ExamResult) *ExamSubmittedEvent {
	return &ExamSubmittedEvent{
		ID:          id,
		Type:        EventExamSubmitted,
		ResultID:    result.ID,
		Subject:     result.Subject,
		StudentName: result.StudentName,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		Status:      result.Status,
		Source:      "exam-portal",
		Timestamp:   time.Now().UTC(),
	}
}
