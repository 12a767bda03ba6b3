package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cineroom/cineroom/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	relayURL = configVar[string]{
		envKey:       "CINEROOM_RELAY_URL",
		flagKey:      "relay-url",
		defaultValue: "http://localhost:8080",
	}
	roomCode = configVar[string]{
		envKey:       "CINEROOM_ROOM_CODE",
		flagKey:      "room-code",
		defaultValue: "",
	}
	movieID = configVar[int]{
		envKey:       "CINEROOM_MOVIE_ID",
		flagKey:      "movie-id",
		defaultValue: 0,
	}
	password = configVar[string]{
		envKey:       "CINEROOM_PASSWORD",
		flagKey:      "password",
		defaultValue: "",
	}
	isPrivate = configVar[bool]{
		envKey:       "CINEROOM_PRIVATE",
		flagKey:      "private",
		defaultValue: false,
	}
	guestControl = configVar[bool]{
		envKey:       "CINEROOM_GUEST_CONTROL",
		flagKey:      "guest-control",
		defaultValue: false,
	}
	maxUsers = configVar[int]{
		envKey:       "CINEROOM_MAX_USERS",
		flagKey:      "max-users",
		defaultValue: 0,
	}
	mpvBinary = configVar[string]{
		envKey:       "CINEROOM_MPV_BINARY",
		flagKey:      "mpv-binary",
		defaultValue: "mpv",
	}
	mpvSocket = configVar[string]{
		envKey:       "CINEROOM_MPV_SOCKET",
		flagKey:      "mpv-socket",
		defaultValue: "",
	}
	logLevel = configVar[string]{
		envKey:       "CINEROOM_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
)

func loadClientConfig() *app.ClientConfig {
	pflag.String(relayURL.flagKey, relayURL.defaultValue, "Relay base url")
	pflag.String(roomCode.flagKey, roomCode.defaultValue, "Room code to join; empty creates a room")
	pflag.Int(movieID.flagKey, movieID.defaultValue, "Movie id for a new room")
	pflag.String(password.flagKey, password.defaultValue, "Room password")
	pflag.Bool(isPrivate.flagKey, isPrivate.defaultValue, "Create the room as private")
	pflag.Bool(guestControl.flagKey, guestControl.defaultValue, "Allow guests to control playback")
	pflag.Int(maxUsers.flagKey, maxUsers.defaultValue, "Room member limit; 0 uses the relay default")
	pflag.String(mpvBinary.flagKey, mpvBinary.defaultValue, "Path to the mpv binary")
	pflag.String(mpvSocket.flagKey, mpvSocket.defaultValue, "Path to the mpv ipc socket")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(relayURL.flagKey, relayURL.envKey)
	viper.BindEnv(roomCode.flagKey, roomCode.envKey)
	viper.BindEnv(movieID.flagKey, movieID.envKey)
	viper.BindEnv(password.flagKey, password.envKey)
	viper.BindEnv(isPrivate.flagKey, isPrivate.envKey)
	viper.BindEnv(guestControl.flagKey, guestControl.envKey)
	viper.BindEnv(maxUsers.flagKey, maxUsers.envKey)
	viper.BindEnv(mpvBinary.flagKey, mpvBinary.envKey)
	viper.BindEnv(mpvSocket.flagKey, mpvSocket.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)

	viper.SetDefault(relayURL.flagKey, relayURL.defaultValue)
	viper.SetDefault(roomCode.flagKey, roomCode.defaultValue)
	viper.SetDefault(movieID.flagKey, movieID.defaultValue)
	viper.SetDefault(password.flagKey, password.defaultValue)
	viper.SetDefault(isPrivate.flagKey, isPrivate.defaultValue)
	viper.SetDefault(guestControl.flagKey, guestControl.defaultValue)
	viper.SetDefault(maxUsers.flagKey, maxUsers.defaultValue)
	viper.SetDefault(mpvBinary.flagKey, mpvBinary.defaultValue)
	viper.SetDefault(mpvSocket.flagKey, mpvSocket.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)

	return &app.ClientConfig{
		RelayURL:     viper.GetString(relayURL.flagKey),
		RoomCode:     viper.GetString(roomCode.flagKey),
		MovieID:      viper.GetInt(movieID.flagKey),
		Password:     viper.GetString(password.flagKey),
		IsPrivate:    viper.GetBool(isPrivate.flagKey),
		GuestControl: viper.GetBool(guestControl.flagKey),
		MaxUsers:     viper.GetInt(maxUsers.flagKey),
		MPVBinary:    viper.GetString(mpvBinary.flagKey),
		MPVSocket:    viper.GetString(mpvSocket.flagKey),
		LogLevel:     viper.GetString(logLevel.flagKey),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clientConfig := loadClientConfig()
	if err := clientConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := app.RunClient(ctx, clientConfig); err != nil {
		log.Fatal(err)
	}
}
