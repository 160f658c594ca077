package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/middleware"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timezone"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

type BusinessHandler struct {
	db    *gorm.DB
	cache usecase.SlotCache
}

func NewBusinessHandler(db *gorm.DB, cache usecase.SlotCache) *BusinessHandler {
	return &BusinessHandler{db: db, cache: cache}
}

type BusinessUpdateRequest struct {
	Name              string `json:"name" binding:"required"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	Timezone          string `json:"timezone" binding:"required"`
	MinAdvanceMinutes *int   `json:"min_advance_minutes"`
}

func (h *BusinessHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var business models.Business
	if err := h.db.First(&business, businessID).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req BusinessUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if !timezone.IsValid(req.Timezone) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone identifier.")
		return
	}

	var business models.Business
	if err := h.db.First(&business, businessID).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	timezoneChanged := business.Timezone != req.Timezone

	business.Name = req.Name
	business.Phone = req.Phone
	business.Address = req.Address
	business.Timezone = req.Timezone
	if req.MinAdvanceMinutes != nil {
		business.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&business).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Failed to update business.")
		return
	}

	// A timezone change shifts every cached day window.
	if timezoneChanged && h.cache != nil {
		h.cache.InvalidateBusiness(c.Request.Context(), businessID)
	}

	c.JSON(http.StatusOK, business)
}
