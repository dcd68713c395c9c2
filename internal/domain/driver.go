package domain

// DriverStatus represents the duty status of a driver.
type DriverStatus string

const (
	DriverStatusOnDuty  DriverStatus = "ON_DUTY"
	DriverStatusOffDuty DriverStatus = "OFF_DUTY"
)

// Driver represents a driver in the system.
type Driver struct {
	ID     string
	Name   string
	Phone  string
	Status DriverStatus
}
