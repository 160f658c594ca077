package booking

// TimeSlot is a candidate bookable interval. Computed, never persisted.
type TimeSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// AvailabilitySlot is one day of computed slots.
type AvailabilitySlot struct {
	Date      string     `json:"date"`
	DayOfWeek int        `json:"day_of_week"`
	Slots     []TimeSlot `json:"slots"`
}

type NextAvailableSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type Suggestions struct {
	NextAvailableSlot *NextAvailableSlot `json:"next_available_slot,omitempty"`
}

// ConflictCheckResult is the outcome of validating one proposed booking.
// Conflicts accumulate in check order so the caller sees every reason a
// slot fails, not just the first.
type ConflictCheckResult struct {
	IsAvailable bool         `json:"is_available"`
	Conflicts   []string     `json:"conflicts"`
	Suggestions *Suggestions `json:"suggestions,omitempty"`
}

type AvailabilityInput struct {
	BusinessID uint
	ServiceID  uint
	StartDate  string
	Days       int
}

type ValidateBookingInput struct {
	BusinessID      uint
	ServiceID       uint
	AppointmentDate string
	StartTime       string

	// ExcludeAppointmentID ignores one existing appointment during the
	// overlap check, so a reschedule does not conflict with itself.
	ExcludeAppointmentID uint
}

// User-facing conflict messages. Stable strings: clients match on them.
const (
	MsgInvalidBusinessID = "Invalid business ID"
	MsgInvalidServiceID  = "Invalid service ID"
	MsgInvalidDate       = "Invalid date format. Expected YYYY-MM-DD"
	MsgInvalidTime       = "Invalid time format. Expected HH:MM"
	MsgServiceNotFound   = "Service not found or inactive"
	MsgPastDate          = "Cannot book appointments in the past"
	MsgBusinessClosed    = "Business is closed on this date"
	MsgOutsideHours      = "Requested time is outside business hours"
	MsgSlotConflict      = "Time slot conflicts with an existing appointment"
)
