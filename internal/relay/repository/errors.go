package repository

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomUserNotFound = errors.New("room user not found")
	ErrStateNotFound    = errors.New("state not found")
)
