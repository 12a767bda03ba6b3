package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/cineroom/internal/relay/repository"
)

func (r repo) SetRoom(ctx context.Context, params *repository.SetRoomParams) error {
	pipe := r.rc.TxPipeline()

	room := repository.Room{
		MovieID:      params.MovieID,
		PasswordHash: params.PasswordHash,
		IsPrivate:    params.IsPrivate,
		GuestControl: params.GuestControl,
		MaxUsers:     params.MaxUsers,
		CreatedAt:    params.CreatedAt,
	}
	roomKey := r.getRoomKey(params.RoomHash)
	if err := r.hSetStruct(ctx, pipe, roomKey, room); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}
	pipe.Expire(ctx, roomKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomHash string) (repository.Room, error) {
	roomKey := r.getRoomKey(roomHash)

	cmd := r.rc.Exists(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return repository.Room{}, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if cmd.Val() == 0 {
		return repository.Room{}, repository.ErrRoomNotFound
	}

	var room repository.Room
	if err := r.rc.HGetAll(ctx, roomKey).Scan(&room); err != nil {
		return repository.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return room, nil
}

func (r repo) AddUserToRoom(ctx context.Context, roomHash, roomUserID string) error {
	usersKey := r.getRoomUsersKey(roomHash)
	if err := r.rc.SAdd(ctx, usersKey, roomUserID).Err(); err != nil {
		return fmt.Errorf("failed to add user to room: %w", err)
	}

	r.rc.Expire(ctx, usersKey, r.expireDuration)

	return nil
}

func (r repo) GetRoomUserIDs(ctx context.Context, roomHash string) ([]string, error) {
	usersKey := r.getRoomUsersKey(roomHash)
	ids, err := r.rc.SMembers(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room user ids: %w", err)
	}

	r.rc.Expire(ctx, usersKey, r.expireDuration)

	return ids, nil
}

func (r repo) CountRoomUsers(ctx context.Context, roomHash string) (int, error) {
	usersKey := r.getRoomUsersKey(roomHash)
	count, err := r.rc.SCard(ctx, usersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count room users: %w", err)
	}

	return int(count), nil
}
