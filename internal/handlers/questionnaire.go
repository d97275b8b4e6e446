package handlers

import (
	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/forms"
	"patient-portal-server/internal/portal"
	"patient-portal-server/internal/utils"
)

// QuestionnaireHandler serves the health assessment and the daily check-in.
type QuestionnaireHandler struct {
	Portal *portal.Service
}

// NewQuestionnaireHandler creates a new QuestionnaireHandler.
func NewQuestionnaireHandler(portalService *portal.Service) *QuestionnaireHandler {
	return &QuestionnaireHandler{Portal: portalService}
}

// GetAssessment returns the assessment question catalog.
func (h *QuestionnaireHandler) GetAssessment(c *gin.Context) {
	utils.Success(c, "Health assessment", forms.AssessmentQuestions)
}

// SubmitAssessment stores a health assessment.
func (h *QuestionnaireHandler) SubmitAssessment(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	var req forms.AssessmentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid request payload: "+err.Error(), nil))
		return
	}
	form, err := forms.AssessmentFormFromRequest(req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	response, err := h.Portal.SubmitAssessment(c.Request.Context(), owner, form)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, portal.MsgResponseSubmitted, response)
}

// GetCheckinQuestions returns the daily check-in catalog.
func (h *QuestionnaireHandler) GetCheckinQuestions(c *gin.Context) {
	utils.Success(c, "Daily check-in", forms.CheckinQuestions)
}

// SubmitCheckin stores the answer to one check-in question.
func (h *QuestionnaireHandler) SubmitCheckin(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	var req forms.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid request payload: "+err.Error(), nil))
		return
	}
	answer, err := forms.CheckinAnswerFromRequest(c.Param("questionId"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	response, err := h.Portal.SubmitCheckin(c.Request.Context(), owner, answer)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, portal.MsgResponseSubmitted, response)
}
