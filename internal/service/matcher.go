package service

import (
	"golfalerts/internal/db"
	"golfalerts/internal/entities"
)

// MatchSlots returns the slots inside the alert's inclusive window with at
// least MinSpots open. Order is preserved.
func MatchSlots(alert db.Alert, slots []entities.TeeTimeSlot) []entities.TeeTimeSlot {
	minSpots := alert.MinSpots
	if minSpots < 1 {
		minSpots = 1
	}
	matches := []entities.TeeTimeSlot{}
	for _, s := range slots {
		if s.TimeMinutes < alert.TimeStart || s.TimeMinutes > alert.TimeEnd {
			continue
		}
		if s.SpotsAvailable < minSpots {
			continue
		}
		matches = append(matches, s)
	}
	return matches
}
