package model

import "time"

type Session struct {
	UserID    int64
	Email     string
	CreatedAt time.Time
}
