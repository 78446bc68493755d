package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
