package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getRoomKey(roomHash string) string {
	return "room:" + roomHash
}

func (r repo) getRoomUsersKey(roomHash string) string {
	return "room:" + roomHash + ":users"
}

func (r repo) getRoomUserKey(roomHash, roomUserID string) string {
	return "room:" + roomHash + ":user:" + roomUserID
}

func (r repo) getStateKey(roomHash string) string {
	return "room:" + roomHash + ":state"
}
