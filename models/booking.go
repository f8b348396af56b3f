package models

// Booking is one viewing in the flat-file calendar.
type Booking struct {
	ID           int    `json:"id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	PropertyID   string `json:"property_id"`
	StartTime    string `json:"start_time"`
	Notes        string `json:"notes"`
	Agent        string `json:"agent"`
	CreatedAt    string `json:"created_at"`
}

type BookingRequest struct {
	CustomerName string
	Phone        string
	PropertyID   string
	StartTime    string
	Notes        string
	Agent        string
}
