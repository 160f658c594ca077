package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/appointment-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	infraRepo "github.com/BruksfildServices01/appointment-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type PublicHandler struct {
	db    *gorm.DB
	cache usecase.SlotCache
	audit *audit.Dispatcher
}

func NewPublicHandler(db *gorm.DB, cache usecase.SlotCache) *PublicHandler {
	return &PublicHandler{
		db:    db,
		cache: cache,
		audit: audit.NewDispatcher(audit.New(db)),
	}
}

func (h *PublicHandler) business(c *gin.Context) (*models.Business, bool) {
	slug := c.Param("slug")

	var business models.Business
	if err := h.db.
		Where("slug = ? AND active = true", slug).
		First(&business).Error; err != nil {

		httperr.NotFound(c, "business_not_found", "Business not found.")
		return nil, false
	}

	return &business, true
}

// ======================================================
// SERVICES
// ======================================================

func (h *PublicHandler) ListServices(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))

	q := h.db.Where("business_id = ? AND active = true", business.ID)
	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Failed to list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business": gin.H{
			"name":     business.Name,
			"slug":     business.Slug,
			"timezone": business.Timezone,
		},
		"services": services,
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *PublicHandler) Availability(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", domain.MsgInvalidServiceID)
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	repo := infraRepo.NewBookingGormRepository(h.db)
	engine := usecase.NewComputeAvailability(repo, h.cache)

	result, err := engine.Execute(c.Request.Context(), domain.AvailabilityInput{
		BusinessID: business.ID,
		ServiceID:  uint(serviceID),
		StartDate:  c.Query("start_date"),
		Days:       days,
	})
	if err != nil {
		switch {
		case httperr.IsBusiness(err, "invalid_date"):
			httperr.BadRequest(c, "invalid_date", domain.MsgInvalidDate)
		case httperr.IsBusiness(err, "service_not_found"):
			httperr.NotFound(c, "service_not_found", domain.MsgServiceNotFound)
		default:
			httperr.Internal(c, "failed_to_compute_availability", "Failed to compute availability.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":  business.Slug,
		"days":  result,
		"count": len(result),
	})
}

// ======================================================
// CREATE BOOKING
// ======================================================

type PublicCreateBookingRequest struct {
	ServiceID     uint   `json:"service_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	Date          string `json:"date" binding:"required"` // YYYY-MM-DD
	Time          string `json:"time" binding:"required"` // HH:MM
	Notes         string `json:"notes"`
}

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	var req PublicCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.CustomerEmail != "" && !validators.IsEmailDomainValid(req.CustomerEmail) {
		httperr.BadRequest(c, "invalid_email", "Email domain does not resolve.")
		return
	}

	repo := infraRepo.NewBookingGormRepository(h.db)
	validate := usecase.NewValidateBooking(repo)
	create := usecase.NewCreateBooking(repo, validate, h.cache, h.audit)

	ap, result, err := create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		BusinessID:    business.ID,
		ServiceID:     req.ServiceID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
	})

	if err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			httperr.Conflict(c, "time_conflict", domain.MsgSlotConflict)
			return
		}
		httperr.Internal(c, "failed_to_create_appointment", "Failed to create appointment.")
		return
	}

	if ap == nil {
		c.JSON(http.StatusConflict, result)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"confirmation_number": ap.ConfirmationNumber,
		"date":                ap.Date,
		"start_time":          ap.StartTime,
		"end_time":            ap.EndTime,
		"status":              ap.Status,
	})
}
