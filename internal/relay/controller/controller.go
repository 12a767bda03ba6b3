package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/relay/service"
	"github.com/cineroom/cineroom/pkg/validator"
	"github.com/cineroom/cineroom/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *service.CreateRoomParams) (service.CreateRoomResponse, error)
	JoinRoom(context.Context, *service.JoinRoomParams) (service.JoinRoomResponse, error)
	GetRoomUser(context.Context, *service.GetRoomUserParams) (service.RoomUser, error)
	ConnectUser(context.Context, *service.ConnectUserParams) error
	DisconnectUser(context.Context, *service.DisconnectUserParams) error
	GetState(ctx context.Context, roomHash string) (service.State, error)
	UpdatePlayState(context.Context, *service.UpdatePlayStateParams) (service.UpdateStateResponse, error)
	Seek(context.Context, *service.SeekParams) (service.UpdateStateResponse, error)
	ParseSessionToken(token string) (*service.SessionClaims, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter
	// library maps movie ids to stream manifest urls
	library map[int]string
}

func NewController(roomService iRoomService, logger *slog.Logger, library map[int]string) *controller {
	c := controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
		library:     library,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
