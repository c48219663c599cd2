package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt starts a new attempt
// @Summary Start attempt
// @Description Starts an attempt of a published quiz for a student
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.StartAttemptRequest true "Quiz and student"
// @Success 201 {object} services.AttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	h.LogRequest(c, "Starting attempt")

	var req services.StartAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, services.NewAttemptResponse(attempt))
}

// SubmitAnswer records or replaces the answer to one question
// @Summary Submit answer
// @Description Grades the answer when possible and stores it against the attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param answer body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} models.Answer
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attempts/{id}/answers [post]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Submitting answer", "attempt_id", attemptID)

	var req services.SubmitAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	answer, err := h.attemptService.SubmitAnswer(c.Request.Context(), attemptID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// CompleteAttempt closes the attempt and records its total score
// @Summary Complete attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attempts/{id}/complete [post]
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Completing attempt", "attempt_id", attemptID)

	attempt, err := h.attemptService.Complete(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.NewAttemptResponse(attempt))
}

// GetAttempt returns the attempt together with its recorded answers
// @Summary Get attempt with answers
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} AttemptDetailResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attemptService.GetWithAnswers(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AttemptDetailResponse{
		Attempt: services.NewAttemptResponse(result.Attempt),
		Answers: result.Answers,
	})
}

// ListStudentAttempts lists a student's attempts one page at a time; use
// offset and the returned total to fetch the rest.
// @Summary List attempts for student
// @Tags attempts
// @Produce json
// @Param id path uint true "Student ID"
// @Param state query string false "in_progress or completed"
// @Param quiz_id query uint false "Quiz ID"
// @Param limit query int false "Page size" default(20) maximum(100)
// @Param offset query int false "Offset"
// @Success 200 {object} ListResponse
// @Router /students/{id}/attempts [get]
func (h *AttemptHandler) ListStudentAttempts(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filters, ok := h.parseAttemptFilters(c)
	if !ok {
		return
	}

	attempts, total, err := h.attemptService.ListForStudent(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Items:  toAttemptResponses(attempts),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// ListQuizAttempts lists every attempt of one quiz.
func (h *AttemptHandler) ListQuizAttempts(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filters, ok := h.parseAttemptFilters(c)
	if !ok {
		return
	}

	attempts, total, err := h.attemptService.ListForQuiz(c.Request.Context(), quizID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Items:  toAttemptResponses(attempts),
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// AttemptDetailResponse is the body of GET /attempts/:id.
type AttemptDetailResponse struct {
	Attempt *services.AttemptResponse `json:"attempt"`
	Answers []*models.Answer          `json:"answers"`
}

func (h *AttemptHandler) parseAttemptFilters(c *gin.Context) (repositories.AttemptFilters, bool) {
	limit, offset := parsePagination(c)
	filters := repositories.AttemptFilters{
		QuizID:    parseUintQuery(c, "quiz_id"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if state := c.Query("state"); state != "" {
		s := models.AttemptState(state)
		if s != models.AttemptInProgress && s != models.AttemptCompleted {
			h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Invalid state", "must be in_progress or completed")
			return filters, false
		}
		filters.State = &s
	}
	return filters, true
}

func toAttemptResponses(attempts []*models.QuizAttempt) []*services.AttemptResponse {
	out := make([]*services.AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, services.NewAttemptResponse(a))
	}
	return out
}
