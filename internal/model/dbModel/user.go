package dbModel

import "time"

type User struct {
	UserID       int64     `db:"user_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"dt_create"`
}
