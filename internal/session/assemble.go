package session

import (
	"strconv"
	"time"

	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/scoring"
)

// assembleResult builds the record persisted for one submission. The
// timestamp is the submission moment, not the load moment, and the status
// derives from the static question set alone: any Essay question makes the
// score provisional, whether or not it was answered.
func assembleResult(studentName, subject string, questions []models.Question, answers models.AnswerMap, score scoring.Score, now time.Time) models.ExamResult {
	status := models.ResultGraded
	for _, q := range questions {
		if q.Type == models.Essay {
			status = models.ResultPending
			break
		}
	}

	return models.ExamResult{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		StudentName: studentName,
		Subject:     subject,
		Score:       score.Earned,
		TotalPoints: score.Total,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Answers:     answers,
		Status:      status,
	}
}
