package api

import "golfalerts/internal/catalog"

// Courses
type CourseResponse struct {
	Provider   string `json:"provider"`
	Key        string `json:"key"`
	Name       string `json:"name"`
	ClubID     int    `json:"club_id"`
	CourseID   int    `json:"course_id"`
	Holes      int    `json:"holes,omitempty"`
	BookingURL string `json:"booking_url,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
}

func toCourseResponse(c catalog.Course) CourseResponse {
	return CourseResponse{
		Provider:   string(c.Provider),
		Key:        c.Key,
		Name:       c.Name,
		ClubID:     c.ClubID,
		CourseID:   c.CourseID,
		Holes:      c.Holes,
		BookingURL: c.BookingURL,
		City:       c.City,
		State:      c.State,
	}
}

// Admin
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
