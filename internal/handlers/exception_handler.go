package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/middleware"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

// ExceptionHandler manages the date-specific overrides: holidays,
// special hours, one-off closures.
type ExceptionHandler struct {
	db    *gorm.DB
	cache usecase.SlotCache
}

func NewExceptionHandler(db *gorm.DB, cache usecase.SlotCache) *ExceptionHandler {
	return &ExceptionHandler{db: db, cache: cache}
}

type ExceptionRequest struct {
	Date      string `json:"date" binding:"required"`
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

func (h *ExceptionHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var exceptions []models.AvailabilityException
	if err := h.db.
		Where("business_id = ?", businessID).
		Order("date ASC").
		Find(&exceptions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_exceptions", "Failed to list exceptions.")
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

// Upsert creates or replaces the exception for one date. One row per
// (business, date); posting the same date again overwrites it.
func (h *ExceptionHandler) Upsert(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if !timeutil.IsValidDateFormat(req.Date) {
		httperr.BadRequest(c, "invalid_date", "Invalid date format. Expected YYYY-MM-DD")
		return
	}

	// Open days need their own hours; closed days must not carry any.
	if req.Available {
		if !timeutil.IsValidTimeFormat(req.StartTime) || !timeutil.IsValidTimeFormat(req.EndTime) {
			httperr.BadRequest(c, "invalid_time_format", "Invalid time format. Expected HH:MM")
			return
		}
	} else {
		req.StartTime = ""
		req.EndTime = ""
	}

	exc := models.AvailabilityException{
		BusinessID: businessID,
		Date:       req.Date,
		Available:  req.Available,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"available", "start_time", "end_time", "reason", "updated_at"}),
	}).Create(&exc).Error
	if err != nil {
		httperr.Internal(c, "failed_to_save_exception", "Failed to save exception.")
		return
	}

	if h.cache != nil {
		h.cache.InvalidateDate(c.Request.Context(), businessID, req.Date)
	}

	c.JSON(http.StatusOK, exc)
}

func (h *ExceptionHandler) Delete(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	date := c.Param("date")
	if !timeutil.IsValidDateFormat(date) {
		httperr.BadRequest(c, "invalid_date", "Invalid date format. Expected YYYY-MM-DD")
		return
	}

	result := h.db.
		Where("business_id = ? AND date = ?", businessID, date).
		Delete(&models.AvailabilityException{})
	if result.Error != nil {
		httperr.Internal(c, "failed_to_delete_exception", "Failed to delete exception.")
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "exception_not_found", "No exception for that date.")
		return
	}

	if h.cache != nil {
		h.cache.InvalidateDate(c.Request.Context(), businessID, date)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
