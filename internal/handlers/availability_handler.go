package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/appointment-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httperr"
	"github.com/BruksfildServices01/appointment-scheduler/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/appointment-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/appointment-scheduler/internal/middleware"
	usecase "github.com/BruksfildServices01/appointment-scheduler/internal/usecase/booking"
)

type AvailabilityHandler struct {
	engine *usecase.ComputeAvailability
}

func NewAvailabilityHandler(db *gorm.DB, cache usecase.SlotCache) *AvailabilityHandler {
	repo := infraRepo.NewBookingGormRepository(db)
	return &AvailabilityHandler{
		engine: usecase.NewComputeAvailability(repo, cache),
	}
}

// Get computes the slot calendar for the authenticated business.
// Query params: service_id, start_date, days (default 7).
func (h *AvailabilityHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", domain.MsgInvalidServiceID)
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	result, err := h.engine.Execute(c.Request.Context(), domain.AvailabilityInput{
		BusinessID: businessID,
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

	httpresp.List(c, result)
}
