package models

type ResultStatus string

const (
	// ResultGraded means every question was auto-gradable.
	ResultGraded ResultStatus = "graded"
	// ResultPending means the set contains at least one essay question and the
	// score stays provisional until manual review.
	ResultPending ResultStatus = "pending"
)

// AnswerMap holds a student's raw answers keyed by question id. The value
// shape depends on the question type: a string for single-answer types, a
// list of strings for enumeration, and a left-to-right mapping for matching.
// The codec normalizes these at scoring time; nothing is validated on entry.
type AnswerMap map[string]any

// ExamResult is the record persisted once per submission. The backend may
// later amend Status after manual essay grading; the client never does.
type ExamResult struct {
	ID          string       `json:"id"`
	StudentName string       `json:"studentName"`
	Subject     string       `json:"subject"`
	Score       float64      `json:"score"`
	TotalPoints float64      `json:"totalPoints"`
	Timestamp   string       `json:"timestamp"`
	Answers     AnswerMap    `json:"answers"`
	Status      ResultStatus `json:"status"`
}
