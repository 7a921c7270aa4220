package domain

import "errors"

var (
	ErrEmptyName    = errors.New("user name cannot be empty")
	ErrUserNotFound = errors.New("user not found")
	ErrRoomNotFound = errors.New("room not found")
)
