// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit int = 20

// Storage keeps one Record per guild in a JSON-file-backed datastore. The
// store's autosave goroutine is tied to an internal context so Close can
// shut it down without a caller-supplied lifecycle.
type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	AlwaysOn            bool                   `json:"always_on"`
	DefaultVolume       int                    `json:"default_volume"`
	DefaultLoop         string                 `json:"default_loop"`
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops the autosave loop and flushes the store to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

// getOrCreateGuildRecord loads the guild's Record, creating an empty one on
// first access.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	found, err := s.ds.Get(guildID, &record)
	if err != nil {
		return nil, fmt.Errorf("error decoding record for guild %s: %w", guildID, err)
	}
	if !found {
		record = Record{CommandsHistoryList: []CommandHistoryRecord{}}
		if err := s.ds.Set(guildID, &record); err != nil {
			return nil, err
		}
		return &record, nil
	}

	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	return s.ds.Set(guildID, record)
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	return record.CommandsHistoryList, nil
}

// SetAlwaysOn flips the 24/7 flag for a guild.
func (s *Storage) SetAlwaysOn(guildID string, enabled bool) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.AlwaysOn = enabled
	return s.ds.Set(guildID, record)
}

// AlwaysOn reports the guild's 24/7 flag. Guilds without a record get the
// default (off). A corrupt record is treated the same way.
func (s *Storage) AlwaysOn(guildID string) bool {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return false
	}
	return record.AlwaysOn
}

func (s *Storage) SetDefaultVolume(guildID string, volume int) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.DefaultVolume = volume
	return s.ds.Set(guildID, record)
}

// DefaultVolume returns the guild's stored starting volume, 0 when unset.
func (s *Storage) DefaultVolume(guildID string) int {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return 0
	}
	return record.DefaultVolume
}

func (s *Storage) SetDefaultLoop(guildID string, mode string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.DefaultLoop = mode
	return s.ds.Set(guildID, record)
}

// DefaultLoop returns the guild's stored loop mode, empty when unset.
func (s *Storage) DefaultLoop(guildID string) string {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return ""
	}
	return record.DefaultLoop
}
