package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/services"
)

// AdminHandler serves the authoring and review endpoints behind the admin gate.
type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

type subjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// Login exchanges the shared admin secret for a bearer token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	resp, err := h.admin.Login(c.Request.Context(), req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "login successful", Data: resp})
}

// SaveQuestion creates or updates a question; an empty id means create.
func (h *AdminHandler) SaveQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	if err := h.admin.SaveQuestion(c.Request.Context(), &question); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "question saved", Data: question})
}

func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	if err := h.admin.DeleteQuestion(c.Request.Context(), c.Param("id"), c.Query("subject")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "question deleted"})
}

// ListQuestions returns the full question sheet for one subject, answer keys
// included, for the authoring screen.
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	questions, err := h.admin.Questions(c.Request.Context(), c.Query("subject"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "questions loaded", Data: questions})
}

func (h *AdminHandler) AddSubject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	if err := h.admin.AddSubject(c.Request.Context(), req.Name); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "subject added"})
}

func (h *AdminHandler) DeleteSubject(c *gin.Context) {
	if err := h.admin.DeleteSubject(c.Request.Context(), c.Param("name")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "subject deleted"})
}

// ListResults returns stored results, optionally filtered by subject.
func (h *AdminHandler) ListResults(c *gin.Context) {
	results, err := h.admin.Results(c.Request.Context(), c.Query("subject"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "results loaded", Data: results})
}

// ExportResults streams the result sheet as a CSV or Excel download.
func (h *AdminHandler) ExportResults(c *gin.Context) {
	export, err := h.admin.ExportResults(c.Request.Context(), c.Query("subject"), c.Query("format"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
