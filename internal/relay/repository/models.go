package repository

type Room struct {
	MovieID      int    `redis:"movie_id"`
	PasswordHash string `redis:"password_hash"`
	IsPrivate    bool   `redis:"is_private"`
	GuestControl bool   `redis:"guest_control"`
	MaxUsers     int    `redis:"max_users"`
	CreatedAt    int64  `redis:"created_at"`
}

type RoomUser struct {
	Role      string `redis:"role"`
	PlayPause bool   `redis:"play_pause"`
	RoomHash  string `redis:"room_hash"`
}

// State is the authoritative playback state. Timestamp is the position in
// seconds at LastUpdated (unix nanoseconds, relay clock); a playing room's
// current position is Timestamp plus the time elapsed since.
type State struct {
	Timestamp   float64 `redis:"timestamp"`
	LastUpdated int64   `redis:"last_updated"`
	PlayState   bool    `redis:"play_state"`
}
