package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eztechnick/exam-portal/internal/services"
)

// ExamHandler serves the student-facing exam flow.
type ExamHandler struct {
	exams services.ExamService
}

func NewExamHandler(exams services.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// ListSubjects returns the subject directory for the picker screen.
func (h *ExamHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.exams.Subjects(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "subjects loaded", Data: subjects})
}

// StartSession begins one exam attempt: a display name plus a subject whose
// question list loads non-empty.
func (h *ExamHandler) StartSession(c *gin.Context) {
	var req services.StartExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	view, err := h.exams.Start(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "exam started", Data: view})
}

func (h *ExamHandler) GetSession(c *gin.Context) {
	view, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "session", Data: view})
}

// SetAnswer records the raw answer for one question. The value shape is the
// question type's own: string, list, or left-right mapping.
func (h *ExamHandler) SetAnswer(c *gin.Context) {
	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	if err := h.exams.SetAnswer(c.Request.Context(), c.Param("id"), c.Param("question_id"), req.Value); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "answer recorded"})
}

// Submit drives the two-step submission: the first call arms a confirmation
// window, a second call inside the window commits. The response's session
// status tells the caller which step just happened.
func (h *ExamHandler) Submit(c *gin.Context) {
	view, err := h.exams.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		// A failed persistence call reverts the session to in-progress with
		// answers intact; hand the caller both the reason and the state.
		if view != nil {
			c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error(), Details: view})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "submit", Data: view})
}

// DiscardSession tears the attempt down; in-progress answers are gone.
func (h *ExamHandler) DiscardSession(c *gin.Context) {
	if err := h.exams.Discard(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "session discarded"})
}
