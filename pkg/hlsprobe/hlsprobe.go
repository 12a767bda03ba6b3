// Package hlsprobe sanity-checks a stream manifest URL before a player is
// pointed at it.
package hlsprobe

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrManifestNotFound = fmt.Errorf("manifest not found")
	ErrNotHLS           = fmt.Errorf("manifest is not an hls playlist")
)

// Probe fetches manifestURL and verifies it looks like an HLS playlist.
// Decoding is the player's job; this only catches dead or wrong links early.
func Probe(ctx context.Context, manifestURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrManifestNotFound
		default:
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTM3U") {
			return nil
		}
		break
	}

	return ErrNotHLS
}
