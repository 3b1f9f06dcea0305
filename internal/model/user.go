package model

import "time"

type User struct {
	UserID    int64
	Email     string
	CreatedAt time.Time
}
