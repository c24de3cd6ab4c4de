package handler

import (
	"log"
	"strconv"
	"strings"
	"time"

	"main/repository"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activity *usecase.ActivityService
}

func NewActivityHandler(activity *usecase.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

func parseClickFilter(c *gin.Context) (repository.ClickFilter, bool) {
	filter := repository.ClickFilter{
		DeviceID: c.Query("device_id"),
		Button:   c.Query("button"),
		Page:     c.Query("page_name"),
	}

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.BadRequest(c, "from must be an RFC3339 timestamp")
			return filter, false
		}
		filter.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.BadRequest(c, "to must be an RFC3339 timestamp")
			return filter, false
		}
		filter.To = t
	}
	return filter, true
}

// ListActivity serves the paginated guest-activity table.
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	filter, ok := parseClickFilter(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.activity.ListClicks(usecase.ActivityQuery{
		Page:     page,
		PageSize: pageSize,
		Filter:   filter,
	})
	if err != nil {
		log.Printf("Error listing activity: %v", err)
		utils.InternalError(c, "Failed to list activity")
		return
	}

	utils.Success(c, result)
}

// ExportActivity streams the filtered click log as a CSV download.
func (h *ActivityHandler) ExportActivity(c *gin.Context) {
	filter, ok := parseClickFilter(c)
	if !ok {
		return
	}

	filename := "guest-activity-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.activity.ExportCSV(c.Request.Context(), c.Writer, filter); err != nil {
		// Headers may already be out; just log, the download comes up short.
		log.Printf("Error exporting activity CSV: %v", err)
	}
}

func (h *ActivityHandler) GetActivityDetail(c *gin.Context) {
	clickID := c.Param("id")

	detail, err := h.activity.GetClickDetail(clickID)
	if err != nil {
		if err == usecase.ErrClickNotFound {
			utils.NotFound(c, "Click not found")
			return
		}
		log.Printf("Error fetching click detail %s: %v", clickID, err)
		utils.InternalError(c, "Failed to fetch click detail")
		return
	}

	utils.Success(c, detail)
}

func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	clickID := c.Param("id")

	if err := h.activity.DeleteClick(clickID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFound(c, "Click not found")
			return
		}
		log.Printf("Error deleting click %s: %v", clickID, err)
		utils.InternalError(c, "Failed to delete click")
		return
	}

	utils.Success(c, gin.H{"deleted": clickID})
}

// DeleteAllActivity is the bulk "Delete All" escape hatch. With
// ?devices=true the device records go too.
func (h *ActivityHandler) DeleteAllActivity(c *gin.Context) {
	includeDevices := c.Query("devices") == "true"

	clicks, devices, err := h.activity.DeleteAll(includeDevices)
	if err != nil {
		log.Printf("Error bulk-deleting activity: %v", err)
		utils.InternalError(c, "Failed to delete activity")
		return
	}

	utils.Success(c, gin.H{
		"clicks_deleted":  clicks,
		"devices_deleted": devices,
	})
}
