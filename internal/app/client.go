package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cineroom/cineroom/internal/api"
	"github.com/cineroom/cineroom/internal/playback"
	"github.com/cineroom/cineroom/internal/player"
	"github.com/cineroom/cineroom/internal/protocol"
	"github.com/cineroom/cineroom/internal/session"
	"github.com/cineroom/cineroom/pkg/ctxlogger"
	"github.com/cineroom/cineroom/pkg/hlsprobe"
)

type ClientConfig struct {
	RelayURL string `json:"relay_url"`
	// RoomCode joins an existing room; empty creates a new one for MovieID.
	RoomCode     string `json:"room_code"`
	MovieID      int    `json:"movie_id"`
	Password     string `json:"-"`
	IsPrivate    bool   `json:"is_private"`
	GuestControl bool   `json:"guest_control"`
	MaxUsers     int    `json:"max_users"`
	MPVBinary    string `json:"mpv_binary"`
	MPVSocket    string `json:"mpv_socket"`
	LogLevel     string `json:"log_level"`
}

func (cfg *ClientConfig) Validate() error {
	if cfg.RelayURL == "" {
		return fmt.Errorf("relay url must be set")
	}
	if cfg.RoomCode == "" && cfg.MovieID == 0 {
		return fmt.Errorf("either room code or movie id must be set")
	}
	return nil
}

func RunClient(ctx context.Context, cfg *ClientConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	room, sessionToken, err := enterRoom(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("room code: %s\n", room.RoomHash)

	authed := api.New(cfg.RelayURL, sessionToken)

	// privileges are fetched once and held for the whole session
	gate := playback.NewGate()
	roomUser, err := authed.GetRoomUser(ctx, room.RoomHash)
	if err != nil {
		return err
	}
	gate.Load(roomUser.Privileges)

	streamPath, err := authed.GetStreamPath(ctx, room.MovieID)
	if err != nil {
		if errors.Is(err, api.ErrStreamUnavailable) {
			return fmt.Errorf("video not available for movie %d", room.MovieID)
		}
		return err
	}

	if err := hlsprobe.Probe(ctx, streamPath); err != nil {
		if errors.Is(err, hlsprobe.ErrManifestNotFound) {
			return fmt.Errorf("stream manifest missing: %w", err)
		}
		logger.Warn("stream manifest probe failed, playing anyway", "error", err)
	}

	socketPath := cfg.MPVSocket
	if socketPath == "" {
		socketPath = fmt.Sprintf("%s/cineroom-mpv-%d.sock", os.TempDir(), os.Getpid())
	}

	cmd, err := player.Launch(ctx, cfg.MPVBinary, socketPath)
	if err != nil {
		return fmt.Errorf("failed to launch mpv: %w", err)
	}
	defer player.Stop(cmd)

	mpv, err := player.Open(socketPath, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to mpv: %w", err)
	}
	defer mpv.Close()

	if err := mpv.LoadFile(streamPath); err != nil {
		return fmt.Errorf("failed to load stream: %w", err)
	}

	var sync *playback.Synchronizer
	sess := session.New(&session.Config{
		BaseURL: wsBaseURL(cfg.RelayURL),
		Token:   sessionToken,
	}, func(update protocol.RoomUpdate) {
		sync.ApplyRoomState(update)
	}, logger)

	sync = playback.NewSynchronizer(mpv, sess, gate, logger, nil)
	defer func() {
		sync.Close()
		sess.Close()
	}()

	if err := sess.Connect(ctx, room.RoomHash); err != nil {
		return fmt.Errorf("failed to connect to room: %w", err)
	}

	return commandLoop(ctx, sync)
}

func enterRoom(ctx context.Context, cfg *ClientConfig) (api.Room, string, error) {
	client := api.New(cfg.RelayURL, "")

	if cfg.RoomCode != "" {
		resp, err := client.JoinRoom(ctx, cfg.RoomCode, &api.JoinRoomParams{Password: cfg.Password})
		if err != nil {
			return api.Room{}, "", err
		}
		return resp.Room, resp.SessionToken, nil
	}

	resp, err := client.CreateRoom(ctx, &api.CreateRoomParams{
		MovieID:      cfg.MovieID,
		IsPrivate:    cfg.IsPrivate,
		Password:     cfg.Password,
		GuestControl: cfg.GuestControl,
		MaxUsers:     cfg.MaxUsers,
	})
	if err != nil {
		return api.Room{}, "", err
	}
	return resp.Room, resp.SessionToken, nil
}

func wsBaseURL(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	}
	return httpURL
}

func commandLoop(ctx context.Context, sync *playback.Synchronizer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Println("commands: p | seek <seconds> | vol <0-100> | mute | unmute | status | q")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "p":
				sync.TogglePlay()
			case "seek":
				if len(fields) < 2 {
					fmt.Println("usage: seek <seconds>")
					continue
				}
				seconds, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					fmt.Println("usage: seek <seconds>")
					continue
				}
				sync.SeekTo(seconds)
			case "vol":
				if len(fields) < 2 {
					fmt.Println("usage: vol <0-100>")
					continue
				}
				volume, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					fmt.Println("usage: vol <0-100>")
					continue
				}
				sync.SetVolume(volume / 100)
			case "mute":
				sync.SetMuted(true)
			case "unmute":
				sync.SetMuted(false)
			case "status":
				state := sync.Snapshot()
				fmt.Printf("playing=%t progress=%.3f volume=%.2f muted=%t\n",
					state.IsPlaying, state.Progress, state.Volume, state.Muted)
			case "q":
				return nil
			default:
				fmt.Println("unknown command:", fields[0])
			}
		}
	}
}
