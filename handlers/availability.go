package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	reservationRepo "roombooking/database/repository/reservation"
	"roombooking/models"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	Reservations reservationRepo.ReservationRepository
}

// roomSummary is the per-room shape of a summary=1 response.
type roomSummary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ReservedCount int    `json:"reserved_count"`
}

// GetAvailabilityHandler handles
// GET /api/availability/?date=YYYY-MM-DD[&room_type_id=N][&summary=1][&exclude_reservation_id=N].
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	dateStr := strings.TrimSpace(c.Query("date"))
	if dateStr == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required query param: date")
		return
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date. Expected YYYY-MM-DD.")
		return
	}

	rooms := h.Reservations.RoomTypes()
	if raw := strings.TrimSpace(c.Query("room_type_id")); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			utils.JSONError(c, http.StatusBadRequest, "Invalid room_type_id. Expected an integer.")
			return
		}
		var scoped []models.RoomType
		for _, rt := range rooms {
			if rt.ID == id {
				scoped = append(scoped, rt)
			}
		}
		rooms = scoped
	}

	excludeID := 0
	if raw := strings.TrimSpace(c.Query("exclude_reservation_id")); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			utils.JSONError(c, http.StatusBadRequest, "Invalid exclude_reservation_id. Expected an integer.")
			return
		}
		// Only the owner's own reservation can be hidden.
		if res, err := h.Reservations.GetByID(id); err == nil && res.UserID == currentUserID(c) {
			excludeID = id
		}
	}

	ids := make([]int, 0, len(rooms))
	for _, rt := range rooms {
		ids = append(ids, rt.ID)
	}
	date := day.Format("2006-01-02")
	reserved := h.Reservations.ReservedSlots(date, ids, excludeID)
	slots := h.Reservations.TimeSlots()

	if c.Query("summary") == "1" {
		out := make([]roomSummary, 0, len(rooms))
		for _, rt := range rooms {
			out = append(out, roomSummary{ID: rt.ID, Name: rt.Name, ReservedCount: len(reserved[rt.ID])})
		}
		c.JSON(http.StatusOK, gin.H{
			"date":        date,
			"time_slots":  slots,
			"room_types":  out,
			"total_slots": len(slots),
		})
		return
	}

	out := make([]models.RoomAvailability, 0, len(rooms))
	for _, rt := range rooms {
		out = append(out, models.RoomAvailability{ID: rt.ID, Name: rt.Name, ReservedSlots: reserved[rt.ID]})
	}
	c.JSON(http.StatusOK, models.AvailabilityPayload{Date: date, TimeSlots: slots, RoomTypes: out})
}

// parseID accepts only plain decimal digits.
func parseID(raw string) (int, bool) {
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	return id, err == nil
}
