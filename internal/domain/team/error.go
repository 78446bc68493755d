package team

import "errors"

var (
	ErrNotFound  = errors.New("team not found")
	ErrNotMember = errors.New("user is not a member of the team")
)
