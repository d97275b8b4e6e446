package handlers

import (
	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/forms"
	"patient-portal-server/internal/portal"
	"patient-portal-server/internal/utils"
)

// ProfileHandler reads and saves the patient profile.
type ProfileHandler struct {
	Portal *portal.Service
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(portalService *portal.Service) *ProfileHandler {
	return &ProfileHandler{Portal: portalService}
}

// GetProfile returns the saved profile, 404 when none exists yet.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	patient, err := h.Portal.Profile(c.Request.Context(), owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile fetched successfully", patient)
}

// GetForm returns the profile form prefilled from the saved profile.
func (h *ProfileHandler) GetForm(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	form, err := h.Portal.ProfileForm(c.Request.Context(), owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile form", form)
}

// SaveProfile creates or updates the profile from the full field set.
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	var form forms.ProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid request payload: "+err.Error(), nil))
		return
	}

	view, err := h.Portal.SaveProfile(c.Request.Context(), owner, &form)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, portal.MsgProfileSaved, view)
}
