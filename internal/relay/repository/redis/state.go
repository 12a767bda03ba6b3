package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/cineroom/internal/relay/repository"
)

func (r repo) SetState(ctx context.Context, params *repository.SetStateParams) error {
	pipe := r.rc.TxPipeline()

	state := repository.State{
		Timestamp:   params.Timestamp,
		LastUpdated: params.LastUpdated,
		PlayState:   params.PlayState,
	}
	stateKey := r.getStateKey(params.RoomHash)
	if err := r.hSetStruct(ctx, pipe, stateKey, state); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	pipe.Expire(ctx, stateKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}

	return nil
}

func (r repo) GetState(ctx context.Context, roomHash string) (repository.State, error) {
	stateKey := r.getStateKey(roomHash)

	cmd := r.rc.Exists(ctx, stateKey)
	if err := cmd.Err(); err != nil {
		return repository.State{}, fmt.Errorf("failed to check if state exists: %w", err)
	}
	if cmd.Val() == 0 {
		return repository.State{}, repository.ErrStateNotFound
	}

	var state repository.State
	if err := r.rc.HGetAll(ctx, stateKey).Scan(&state); err != nil {
		return repository.State{}, fmt.Errorf("failed to get state: %w", err)
	}

	r.rc.Expire(ctx, stateKey, r.expireDuration)

	return state, nil
}
