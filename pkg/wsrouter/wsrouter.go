package wsrouter

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

type frame struct {
	ActionType string `json:"action_type"`
}

// HandlerFunc receives the raw frame so handlers can unmarshal their own
// action shape; returning an error ends the connection.
type HandlerFunc func(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *WSRouter) Handle(actionType string, handler HandlerFunc) {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	r.routes[actionType] = handler
}

// ServeConn reads frames from conn until a read or handler error.
// Frames with an unregistered action_type are ignored, not fatal.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}

		handler, exists := r.routes[f.ActionType]
		if !exists {
			continue
		}

		if err := handler(withActionType(ctx, f.ActionType), conn, raw); err != nil {
			return err
		}
	}
}
