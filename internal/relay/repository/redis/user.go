package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/cineroom/internal/relay/repository"
)

func (r repo) SetRoomUser(ctx context.Context, params *repository.SetRoomUserParams) error {
	pipe := r.rc.TxPipeline()

	roomUser := repository.RoomUser{
		Role:      params.Role,
		PlayPause: params.PlayPause,
		RoomHash:  params.RoomHash,
	}
	roomUserKey := r.getRoomUserKey(params.RoomHash, params.RoomUserID)
	if err := r.hSetStruct(ctx, pipe, roomUserKey, roomUser); err != nil {
		return fmt.Errorf("failed to set room user: %w", err)
	}
	pipe.Expire(ctx, roomUserKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room user: %w", err)
	}

	return nil
}

func (r repo) GetRoomUser(ctx context.Context, params *repository.GetRoomUserParams) (repository.RoomUser, error) {
	roomUserKey := r.getRoomUserKey(params.RoomHash, params.RoomUserID)

	cmd := r.rc.Exists(ctx, roomUserKey)
	if err := cmd.Err(); err != nil {
		return repository.RoomUser{}, fmt.Errorf("failed to check if room user exists: %w", err)
	}
	if cmd.Val() == 0 {
		return repository.RoomUser{}, repository.ErrRoomUserNotFound
	}

	var roomUser repository.RoomUser
	if err := r.rc.HGetAll(ctx, roomUserKey).Scan(&roomUser); err != nil {
		return repository.RoomUser{}, fmt.Errorf("failed to get room user: %w", err)
	}

	r.rc.Expire(ctx, roomUserKey, r.expireDuration)

	return roomUser, nil
}
