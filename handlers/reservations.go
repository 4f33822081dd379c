package handlers

import (
	"errors"
	"net/http"

	reservationRepo "roombooking/database/repository/reservation"
	"roombooking/models"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	Reservations reservationRepo.ReservationRepository
}

// ListReservationsHandler handles GET /api/reservations/.
func (h *ReservationHandler) ListReservationsHandler(c *gin.Context) {
	list := h.Reservations.ListByUser(currentUserID(c))
	if list == nil {
		list = []models.Reservation{}
	}
	c.JSON(http.StatusOK, list)
}

// CreateReservationHandler handles POST /api/reservations/.
func (h *ReservationHandler) CreateReservationHandler(c *gin.Context) {
	logger := getLogger(c)
	var in models.ReservationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	res, err := h.Reservations.Create(currentUserID(c), in)
	if err != nil {
		reservationError(c, err, "edit")
		return
	}
	logger.Info("Reservation created", zap.Int("id", res.ID), zap.Int("roomTypeID", res.RoomTypeID), zap.String("date", res.Date), zap.Int("slot", res.Slot))
	c.JSON(http.StatusCreated, res)
}

// UpdateReservationHandler handles POST /api/reservations/:id/update/.
func (h *ReservationHandler) UpdateReservationHandler(c *gin.Context) {
	logger := getLogger(c)
	id, ok := parseID(c.Param("id"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Reservation not found.")
		return
	}
	var in models.ReservationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	res, err := h.Reservations.Update(currentUserID(c), id, in)
	if err != nil {
		reservationError(c, err, "edit")
		return
	}
	logger.Info("Reservation updated", zap.Int("id", res.ID), zap.String("date", res.Date), zap.Int("slot", res.Slot))
	c.JSON(http.StatusOK, res)
}

// CancelReservationHandler handles POST /api/reservations/:id/cancel/ and replies with no body.
func (h *ReservationHandler) CancelReservationHandler(c *gin.Context) {
	logger := getLogger(c)
	id, ok := parseID(c.Param("id"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Reservation not found.")
		return
	}
	if err := h.Reservations.Cancel(currentUserID(c), id); err != nil {
		reservationError(c, err, "cancel")
		return
	}
	logger.Info("Reservation cancelled", zap.Int("id", id))
	c.Status(http.StatusNoContent)
}

// reservationError maps repository errors onto status codes. verb is "edit" or "cancel".
func reservationError(c *gin.Context, err error, verb string) {
	switch {
	case errors.Is(err, reservationRepo.ErrSlotTaken):
		utils.JSONError(c, http.StatusConflict, "That time slot is already reserved.")
	case errors.Is(err, reservationRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Reservation not found.")
	case errors.Is(err, reservationRepo.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "You do not have permission to "+verb+" this reservation.")
	case errors.Is(err, reservationRepo.ErrPastReservation):
		if verb == "cancel" {
			utils.JSONError(c, http.StatusBadRequest, "Past reservations cannot be cancelled.")
		} else {
			utils.JSONError(c, http.StatusBadRequest, "Past reservations cannot be edited.")
		}
	case errors.Is(err, reservationRepo.ErrPast):
		utils.JSONError(c, http.StatusBadRequest, "You cannot reserve a past time slot.")
	case errors.Is(err, reservationRepo.ErrInvalidSlot):
		utils.JSONError(c, http.StatusBadRequest, "Invalid time slot.")
	case errors.Is(err, reservationRepo.ErrUnknownRoom):
		utils.JSONError(c, http.StatusBadRequest, "Unknown room type.")
	case errors.Is(err, reservationRepo.ErrInvalidDate):
		utils.JSONError(c, http.StatusBadRequest, "Invalid date. Expected YYYY-MM-DD.")
	default:
		getLogger(c).Error("Reservation store failure", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
