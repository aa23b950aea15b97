package domain

import "context"

type User struct {
	ID       int64
	FullName string
	Email    string
}

type UserRepository interface {
	GetById(ctx context.Context, id int64) (*User, error)
}
