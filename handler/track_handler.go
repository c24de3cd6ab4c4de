package handler

import (
	"log"

	"main/dto"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

type TrackHandler struct {
	tracking *usecase.TrackingService
}

func NewTrackHandler(tracking *usecase.TrackingService) *TrackHandler {
	return &TrackHandler{tracking: tracking}
}

// TrackClick ingests one click event. Validation failures reject the whole
// payload; nothing is partially written.
func (h *TrackHandler) TrackClick(c *gin.Context) {
	var req dto.TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("validation", "invalid_click_payload")
		utils.BadRequest(c, "Invalid click payload: "+err.Error())
		return
	}

	click, err := h.tracking.RecordClick(&req, c.Request.Header, c.ClientIP())
	if err != nil {
		log.Printf("Error recording click for device %s: %v", req.DeviceID, err)
		utils.InternalError(c, "Failed to record click")
		return
	}

	utils.Created(c, dto.TrackClickResponse{
		ClickID:   click.ID,
		DeviceID:  click.DeviceID,
		Timestamp: click.Timestamp,
	})
}

// TrackSession ingests one session-boundary event. Each call counts as a
// session; the client fires it once per session resolution.
func (h *TrackHandler) TrackSession(c *gin.Context) {
	var req dto.TrackSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("validation", "invalid_session_payload")
		utils.BadRequest(c, "Invalid session payload: "+err.Error())
		return
	}

	device, created, err := h.tracking.RecordSession(&req, c.Request.Header, c.ClientIP())
	if err != nil {
		log.Printf("Error recording session for device %s: %v", req.DeviceID, err)
		utils.InternalError(c, "Failed to record session")
		return
	}

	resp := dto.TrackSessionResponse{
		DeviceID:     device.DeviceID,
		SessionCount: device.SessionCount,
		Created:      created,
	}
	if created {
		utils.Created(c, resp)
		return
	}
	utils.Success(c, resp)
}
