package controller

import (
	"context"
	"fmt"
	"time"
)

type contextKey int

const (
	roomHashCtxKey contextKey = iota
	roomUserIdCtxKey
)

func (c controller) getRoomHashFromCtx(ctx context.Context) string {
	roomHash, ok := ctx.Value(roomHashCtxKey).(string)
	if !ok {
		return ""
	}

	return roomHash
}

func (c controller) getRoomUserIdFromCtx(ctx context.Context) string {
	roomUserId, ok := ctx.Value(roomUserIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomUserId
}

func (c controller) generateTimeBasedId() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
