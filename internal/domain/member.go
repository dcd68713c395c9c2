package domain

import "time"

// Member represents a registered passenger who can request rides.
type Member struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}
