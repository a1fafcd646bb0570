package entities

type CreateAlertRequest struct {
	Phone      string `json:"phone"`
	Provider   string `json:"provider"`
	ClubID     int    `json:"club_id"`
	CourseName string `json:"course_name"`
	Date       string `json:"date"`
	TimeStart  int    `json:"time_start"`
	TimeEnd    int    `json:"time_end"`
	MinSpots   int    `json:"min_spots"`
}

type AlertResponse struct {
	ID          int    `json:"id"`
	Phone       string `json:"phone"`
	Provider    string `json:"provider"`
	ClubID      int    `json:"club_id"`
	CourseName  string `json:"course_name"`
	Date        string `json:"date"`
	TimeStart   int    `json:"time_start"`
	TimeEnd     int    `json:"time_end"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	MinSpots    int    `json:"min_spots"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	NotifiedAt  string `json:"notified_at,omitempty"`
}
