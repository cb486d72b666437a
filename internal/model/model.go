package model

// Doctor availability statuses shown by the booking UI.
const (
	AvailableToday = "Available Today"
	FullyBooked    = "Fully Booked"
	OnLeave        = "On Leave"
)

type Doctor struct {
	ID             ID       `json:"id"`
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	Availability   string   `json:"availability"`
	ProfileImage   string   `json:"profileImage"`
	Details        string   `json:"details"`
	Slots          []string `json:"slots"`
}

type Appointment struct {
	ID        ID     `json:"id"`
	Doctor    string `json:"doctor"`
	Patient   string `json:"patient"`
	Email     string `json:"email"`
	Datetime  string `json:"datetime"`
	CreatedAt string `json:"createdAt"`
}
