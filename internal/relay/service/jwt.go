package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type SessionClaims struct {
	RoomHash   string
	RoomUserID string
}

func (s service) generateSessionToken(roomHash, roomUserID string) (string, error) {
	claims := jwt.MapClaims{
		"room_hash":    roomHash,
		"room_user_id": roomUserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

func (s service) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid session token")
	}

	roomHash, _ := claims["room_hash"].(string)
	roomUserID, _ := claims["room_user_id"].(string)
	if roomHash == "" || roomUserID == "" {
		return nil, errors.New("invalid session token")
	}

	return &SessionClaims{
		RoomHash:   roomHash,
		RoomUserID: roomUserID,
	}, nil
}
