package handlers

import (
	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/middleware"
	"patient-portal-server/internal/portal"
	"patient-portal-server/internal/utils"
)

// PortalHandler exposes the root view state machine.
type PortalHandler struct {
	Portal *portal.Service
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService *portal.Service) *PortalHandler {
	return &PortalHandler{Portal: portalService}
}

// currentOwner returns the signed-in user id, answering 401 when absent.
func currentOwner(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return "", false
	}
	return userID, true
}

// GetView returns the current view, loading the profile on first access.
func (h *PortalHandler) GetView(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}

	if view, ok := h.Portal.View(owner); ok {
		utils.Success(c, "Portal view", view)
		return
	}
	view, err := h.Portal.Load(c.Request.Context(), owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Portal view", view)
}

// Retry reloads the profile after a failed load.
func (h *PortalHandler) Retry(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	view, err := h.Portal.Retry(c.Request.Context(), owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Portal view", view)
}

// NavigateRequest is a user navigation action.
type NavigateRequest struct {
	Event string `json:"event" binding:"required"`
}

// Navigate applies edit, cancel or open-questionnaire.
func (h *PortalHandler) Navigate(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	var req NavigateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ev, err := portal.ParseNavigation(req.Event)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	view, err := h.Portal.Navigate(c.Request.Context(), owner, ev)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Portal view", view)
}
