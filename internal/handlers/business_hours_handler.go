package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/appointment-scheduler/internal/middleware"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

type BusinessHoursHandler struct {
	db    *gorm.DB
	cache usecase.SlotCache
}

func NewBusinessHoursHandler(db *gorm.DB, cache usecase.SlotCache) *BusinessHoursHandler {
	return &BusinessHoursHandler{db: db, cache: cache}
}

type WeeklyRuleConfig struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BusinessHoursUpdateRequest struct {
	Days []WeeklyRuleConfig `json:"days" binding:"required"`
}

func (h *BusinessHoursHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var rules []models.WeeklyAvailabilityRule
	if err := h.db.
		Where("business_id = ?", businessID).
		Order("weekday ASC").
		Find(&rules).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_business_hours"})
		return
	}

	c.JSON(http.StatusOK, rules)
}

// Update replaces the whole weekly schedule in one shot, the same way
// the settings screen submits it.
func (h *BusinessHoursHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req BusinessHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	for _, d := range req.Days {
		if !d.Available {
			continue
		}
		if !timeutil.IsValidTimeFormat(d.StartTime) || !timeutil.IsValidTimeFormat(d.EndTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_time_format"})
			return
		}
	}

	if err := h.db.Where("business_id = ?", businessID).Delete(&models.WeeklyAvailabilityRule{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_clear_existing_hours"})
		return
	}

	var toCreate []models.WeeklyAvailabilityRule
	for _, d := range req.Days {
		rule := models.WeeklyAvailabilityRule{
			BusinessID: businessID,
			Weekday:    d.Weekday,
			Available:  d.Available,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
		}
		toCreate = append(toCreate, rule)
	}

	if len(toCreate) > 0 {
		if err := h.db.Create(&toCreate).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_business_hours"})
			return
		}
	}

	// Rule changes affect every cached date for the business.
	if h.cache != nil {
		h.cache.InvalidateBusiness(c.Request.Context(), businessID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
