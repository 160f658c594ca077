package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/appointment-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/dto"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/appointment-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/appointment-scheduler/internal/middleware"
	"github.com/BruksfildServices01/appointment-scheduler/internal/models"
	"github.com/BruksfildServices01/appointment-scheduler/internal/timeutil"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db *gorm.DB

	create   *usecase.CreateBooking
	validate *usecase.ValidateBooking
	cancel   *usecase.CancelBooking
	confirm  *usecase.ConfirmBooking
	complete *usecase.CompleteBooking
}

func NewBookingHandler(db *gorm.DB, cache usecase.SlotCache) *BookingHandler {
	repo := infraRepo.NewBookingGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))
	validate := usecase.NewValidateBooking(repo)

	return &BookingHandler{
		db:       db,
		create:   usecase.NewCreateBooking(repo, validate, cache, dispatcher),
		validate: validate,
		cancel:   usecase.NewCancelBooking(repo, cache, dispatcher),
		confirm:  usecase.NewConfirmBooking(repo, dispatcher),
		complete: usecase.NewCompleteBooking(repo, cache, dispatcher),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ServiceID     uint   `json:"service_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	Notes         string `json:"notes"`
}

type ValidateBookingRequest struct {
	ServiceID            uint   `json:"service_id" binding:"required"`
	Date                 string `json:"date" binding:"required"`
	Time                 string `json:"time" binding:"required"`
	ExcludeAppointmentID uint   `json:"exclude_appointment_id"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, result, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		BusinessID:    businessID,
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
			// Lost the race after validation passed.
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

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// VALIDATE (dry run, no insert)
// ======================================================

func (h *BookingHandler) Validate(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req ValidateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	result, err := h.validate.Execute(c.Request.Context(), domain.ValidateBookingInput{
		BusinessID:           businessID,
		ServiceID:            req.ServiceID,
		AppointmentDate:      req.Date,
		StartTime:            req.Time,
		ExcludeAppointmentID: req.ExcludeAppointmentID,
	})
	if err != nil {
		httperr.Internal(c, "failed_to_validate", "Failed to validate booking.")
		return
	}

	httpresp.OK(c, result)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	date := c.Query("date")
	if !timeutil.IsValidDateFormat(date) {
		httperr.BadRequest(c, "invalid_date", domain.MsgInvalidDate)
		return
	}

	var aps []models.Appointment
	if err := h.db.
		Preload("Service").
		Where("business_id = ? AND date = ?", businessID, date).
		Order("start_time ASC").
		Find(&aps).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Failed to list appointments.")
		return
	}

	out := make([]dto.BookingListDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, dto.BookingListDTO{
			ID:                 ap.ID,
			Date:               ap.Date,
			StartTime:          ap.StartTime,
			EndTime:            ap.EndTime,
			Status:             ap.Status,
			CustomerName:       ap.CustomerName,
			ServiceName:        ap.Service.Name,
			ConfirmationNumber: ap.ConfirmationNumber,
		})
	}

	httpresp.List(c, out)
}

// ======================================================
// STATE CHANGES
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel.Execute)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.confirm.Execute)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute)
}

func (h *BookingHandler) transition(
	c *gin.Context,
	run func(ctx context.Context, businessID, userID, appointmentID uint) (*models.Appointment, error),
) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	appointmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment id.")
		return
	}

	ap, err := run(c.Request.Context(), businessID, userID, uint(appointmentID))
	if err != nil {
		switch {
		case httperr.IsBusiness(err, "appointment_not_found"):
			httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		case httperr.IsBusiness(err, "invalid_state"):
			httperr.BadRequest(c, "invalid_state", "Appointment cannot change to that state.")
		default:
			httperr.Internal(c, "failed_to_update_appointment", "Failed to update appointment.")
		}
		return
	}

	httpresp.OK(c, ap)
}
