// Package service holds the relay's room logic: lifecycle, privilege
// enforcement, and authoritative playback state updates.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/relay/repository"
	"github.com/cineroom/cineroom/pkg/randstr"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomUserNotFound = errors.New("room user not found")
	ErrRoomFull         = errors.New("room is full")
	ErrWrongPassword    = errors.New("wrong password")
)

const roomHashLength = 12

type iRoomRepo interface {
	SetRoom(context.Context, *repository.SetRoomParams) error
	GetRoom(context.Context, string) (repository.Room, error)
	AddUserToRoom(ctx context.Context, roomHash, roomUserID string) error
	GetRoomUserIDs(context.Context, string) ([]string, error)
	CountRoomUsers(context.Context, string) (int, error)
	SetRoomUser(context.Context, *repository.SetRoomUserParams) error
	GetRoomUser(context.Context, *repository.GetRoomUserParams) (repository.RoomUser, error)
	SetState(context.Context, *repository.SetStateParams) error
	GetState(context.Context, string) (repository.State, error)
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveByRoomUserID(string) error
	GetConn(string) (*websocket.Conn, error)
	GetRoomUserID(*websocket.Conn) (string, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	MembersLimit int
	Secret       string
}

type service struct {
	roomRepo     iRoomRepo
	connRepo     iConnRepo
	generator    iGenerator
	membersLimit int
	secret       string
	now          func() time.Time
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config) *service {
	s := service{
		roomRepo:     roomRepo,
		connRepo:     connRepo,
		membersLimit: cfg.MembersLimit,
		secret:       cfg.Secret,
		now:          time.Now,
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}
