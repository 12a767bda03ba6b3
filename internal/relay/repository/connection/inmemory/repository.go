package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/relay/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, roomUserID string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "roomUserID", roomUserID)
	if r.connList[conn] != "" || r.idList[roomUserID] != nil {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = roomUserID
	r.idList[roomUserID] = conn

	return nil
}

func (r *repo) RemoveByRoomUserID(roomUserID string) error {
	funcName := "connection.inmemory.RemoveByRoomUserID"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "roomUserID", roomUserID)
	// the controller owns the socket; the repo only forgets it
	conn, ok := r.idList[roomUserID]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, roomUserID)

	return nil
}

func (r *repo) GetConn(roomUserID string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[roomUserID]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetRoomUserID(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomUserID, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return roomUserID, nil
}
