package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusPublished   VehicleStatus = "published"
	VehicleStatusDraft       VehicleStatus = "draft"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusArchived    VehicleStatus = "archived"
)

// Vehicle is a rentable resource. DailyRateCents is the per-day price in the
// smallest currency unit.
type Vehicle struct {
	ID             string
	Make           string
	Model          string
	Category       string
	DailyRateCents int64
	Location       string
	AvgRating      *float64
	IsAvailable    bool
	Status         VehicleStatus
	CreatedAt      time.Time
}

// Bookable reports whether the vehicle is eligible for new reservations and
// for alternative-vehicle suggestions.
func (v Vehicle) Bookable() bool {
	return v.IsAvailable && v.Status == VehicleStatusPublished
}
