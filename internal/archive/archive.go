// Package archive writes and reads compressed snapshots of a guild's game.
//
// A snapshot is a zstd stream holding one JSON header line followed by the
// JSON game document, so `zstdcat | head -1` identifies a file cheaply.
package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/klauspost/compress/zstd"
)

// Version is the snapshot format written by Write
const Version = 1

// ErrUnsupportedVersion is returned for snapshots from a newer format
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Header describes a snapshot
type Header struct {
	Version   int       `json:"version"`
	GuildID   string    `json:"guild_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is a header plus the game it describes
type Snapshot struct {
	Header Header
	State  *models.GameState
}

// Write compresses a snapshot of state to w
func Write(w io.Writer, state *models.GameState, createdAt time.Time) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	bw := bufio.NewWriter(enc)
	header := Header{Version: Version, GuildID: state.GuildID, CreatedAt: createdAt.UTC()}
	if err := json.NewEncoder(bw).Encode(header); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := json.NewEncoder(bw).Encode(state); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write game: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return enc.Close()
}

// Read decompresses a snapshot from r
func Read(r io.Reader) (*Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReader(dec))
	snap := &Snapshot{}
	if err := jd.Decode(&snap.Header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if snap.Header.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Header.Version)
	}

	state := &models.GameState{}
	if err := jd.Decode(state); err != nil {
		return nil, fmt.Errorf("failed to read game: %w", err)
	}
	state.Normalize()
	state.GuildID = snap.Header.GuildID
	snap.State = state
	return snap, nil
}

// WriteFile writes a snapshot to path, creating its directory
func WriteFile(path string, state *models.GameState, createdAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := Write(f, state, createdAt); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadFile reads the snapshot at path
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// FileName is the conventional name of a guild's snapshot taken at t
func FileName(guildID string, t time.Time) string {
	return fmt.Sprintf("%s-%s.json.zst", guildID, t.UTC().Format("20060102T150405Z"))
}
