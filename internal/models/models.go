package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID            int64
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	PassHash      string
	IsAdmin       bool
	EmailVerified bool
}

func (u User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type Animal struct {
	ID        int64
	OwnerID   int64
	Name      string
	Type      string
	Breed     string
	Gender    string
	BirthDate *time.Time
}

type Appointment struct {
	ID        int64
	UserID    int64
	AnimalID  int64
	ServiceID *int64
	At        time.Time
	Complaint string
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	AnimalType  string
	Brand       string
	Stock       int
	ImageURL    string
}

type Review struct {
	ID       int64
	UserID   int64
	Author   string
	Message  string
	PostedAt time.Time
}

type Service struct {
	ID               int64
	Title            string
	ShortDescription string
	Details          string
}

// Message is the mail job published for the mail worker.
type Message struct {
	Email string `json:"to"`
	Link  string `json:"link"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalAnimals        int64 `json:"total_animals"`
	TotalAppointments   int64 `json:"total_appointments"`
	TotalProducts       int64 `json:"total_products"`
	TodayAppointments   int64 `json:"today_appointments"`
	PendingAppointments int64 `json:"pending_appointments"`
	LowStockProducts    int64 `json:"low_stock_products"`
}
