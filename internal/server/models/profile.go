package models

import "time"

type UserProfile struct {
	ID        Principal
	Username  string
	Email     string
	CreatedAt time.Time
}
