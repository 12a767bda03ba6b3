package service

import "time"

type Room struct {
	RoomHash     string `json:"room_hash"`
	MovieID      int    `json:"movie_id"`
	IsPrivate    bool   `json:"is_private"`
	GuestControl bool   `json:"guest_control"`
	MaxUsers     int    `json:"max_users"`
}

type Privileges struct {
	PlayPause bool `json:"play_pause"`
}

type RoomUser struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Privileges Privileges `json:"privileges"`
}

type State struct {
	Timestamp   float64
	LastUpdated time.Time
	PlayState   bool
}
