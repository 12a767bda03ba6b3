package repository

type SetRoomParams struct {
	RoomHash     string
	MovieID      int
	PasswordHash string
	IsPrivate    bool
	GuestControl bool
	MaxUsers     int
	CreatedAt    int64
}

type SetRoomUserParams struct {
	RoomUserID string
	RoomHash   string
	Role       string
	PlayPause  bool
}

type GetRoomUserParams struct {
	RoomHash   string
	RoomUserID string
}

type SetStateParams struct {
	RoomHash    string
	Timestamp   float64
	LastUpdated int64
	PlayState   bool
}
