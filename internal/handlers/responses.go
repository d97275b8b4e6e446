package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/portal"
	"patient-portal-server/internal/store"
	"patient-portal-server/internal/utils"
)

// ResponseHandler lists, reads and deletes questionnaire responses.
type ResponseHandler struct {
	Responses *store.ResponseStore
	Portal    *portal.Service
}

// NewResponseHandler creates a new ResponseHandler.
func NewResponseHandler(responses *store.ResponseStore, portalService *portal.Service) *ResponseHandler {
	return &ResponseHandler{Responses: responses, Portal: portalService}
}

// ListResponsesRequest represents the query params of a response list.
type ListResponsesRequest struct {
	FormType  string `form:"formType"`
	PatientID string `form:"patientId"`
	Since     string `form:"since"`
	Sort      string `form:"sort"`
	Order     string `form:"order"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// listOptions parses the list query shared by the list and stream endpoints.
func listOptions(c *gin.Context) (store.ListOptions, error) {
	var req ListResponsesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if fields := utils.FormatValidationError(err); fields != nil {
			return store.ListOptions{}, apperr.Validation("Invalid query", fields)
		}
		return store.ListOptions{}, apperr.Validation("Invalid query: "+err.Error(), nil)
	}

	direction, err := store.ParseDirection(req.Order, "")
	if err != nil {
		return store.ListOptions{}, err
	}
	opts := store.ListOptions{
		Filter: store.Filter{FormType: req.FormType, PatientID: req.PatientID},
		Sort:   store.Sort{Field: req.Sort, Direction: direction},
		Limit:  req.Limit,
	}
	if req.Since != "" {
		since, err := time.Parse(time.RFC3339, req.Since)
		if err != nil {
			return store.ListOptions{}, apperr.Field("since", "must be an RFC3339 timestamp")
		}
		opts.Filter.SubmittedAfter = since
	}
	return opts, nil
}

// ListResponses returns the owner's responses, newest first by default.
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	opts, err := listOptions(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	responses, err := h.Responses.List(c.Request.Context(), owner, opts)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Responses fetched successfully", responses)
}

// GetResponse returns one response.
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	response, err := h.Responses.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Response fetched successfully", response)
}

// DeleteResponse removes one response. Open streams drop it on their next
// delivery.
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	if err := h.Portal.DeleteResponse(c.Request.Context(), owner, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, portal.MsgResponseDeleted, gin.H{"id": c.Param("id")})
}
