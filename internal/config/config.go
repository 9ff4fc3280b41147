package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the selected session profile.
const (
	EnvAPIURL     = "WPP_API_URL"
	EnvSelfID     = "WPP_SELF_ID"
	EnvAutoSelect = "WPP_AUTO_SELECT"
)

// Defaults applied when a profile leaves a field empty.
const (
	DefaultSelfID           = "me"
	DefaultConversationPoll = 5 * time.Second
	DefaultMessagePoll      = 2 * time.Second
	DefaultRequestTimeout   = 10 * time.Second
)

// SendFailure decides what happens to an optimistic message whose send failed.
type SendFailure string

const (
	// MarkFailed keeps the message with status failed until the user deletes it.
	MarkFailed SendFailure = "mark_failed"
	// RemoveFailed drops the message from the conversation.
	RemoveFailed SendFailure = "remove"
)

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the global ~/.wpp/config.toml.
type Config struct {
	DefaultSession string             `toml:"default_session"`
	Sessions       map[string]Profile `toml:"sessions"`
}

// Profile holds the backend settings of one named session.
type Profile struct {
	APIURL          string      `toml:"api_url"`
	SelfID          string      `toml:"self_id,omitempty"`
	AutoSelectFirst *bool       `toml:"auto_select_first,omitempty"`
	SendFailure     SendFailure `toml:"send_failure,omitempty"`
	RequestTimeout  Duration    `toml:"request_timeout,omitempty"`
	Poll            Poll        `toml:"poll,omitempty"`
}

// Poll holds the polling intervals.
type Poll struct {
	Conversations Duration `toml:"conversations,omitempty"`
	Messages      Duration `toml:"messages,omitempty"`
}

// Settings is a fully resolved profile, ready to inject into components.
type Settings struct {
	Session          string
	APIURL           string
	SelfID           string
	AutoSelectFirst  bool
	SendFailure      SendFailure
	RequestTimeout   time.Duration
	ConversationPoll time.Duration
	MessagePoll      time.Duration
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty config.
func LoadOrEmpty(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// LoadDotEnv loads the given .env files into the process environment,
// skipping files that do not exist. Variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Resolve builds the Settings of a session from its profile, the
// environment (looked up through getenv) and the defaults.
func (c *Config) Resolve(session string, getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	var p Profile
	if c != nil && c.Sessions != nil {
		p = c.Sessions[session]
	}

	s := Settings{
		Session:          session,
		APIURL:           p.APIURL,
		SelfID:           p.SelfID,
		AutoSelectFirst:  true,
		SendFailure:      p.SendFailure,
		RequestTimeout:   p.RequestTimeout.Duration,
		ConversationPoll: p.Poll.Conversations.Duration,
		MessagePoll:      p.Poll.Messages.Duration,
	}
	if p.AutoSelectFirst != nil {
		s.AutoSelectFirst = *p.AutoSelectFirst
	}

	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		s.APIURL = v
	}
	if v := strings.TrimSpace(getenv(EnvSelfID)); v != "" {
		s.SelfID = v
	}
	if v := strings.TrimSpace(getenv(EnvAutoSelect)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s=%q: %w", EnvAutoSelect, v, err)
		}
		s.AutoSelectFirst = b
	}

	if s.SelfID == "" {
		s.SelfID = DefaultSelfID
	}
	if s.SendFailure == "" {
		s.SendFailure = MarkFailed
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.ConversationPoll == 0 {
		s.ConversationPoll = DefaultConversationPoll
	}
	if s.MessagePoll == 0 {
		s.MessagePoll = DefaultMessagePoll
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks resolved settings for values no component can work with.
func (s Settings) Validate() error {
	if s.APIURL == "" {
		return fmt.Errorf("session %q: no api_url configured (set %s or sessions.%s.api_url)", s.Session, EnvAPIURL, s.Session)
	}
	switch s.SendFailure {
	case MarkFailed, RemoveFailed:
	default:
		return fmt.Errorf("session %q: send_failure %q must be %q or %q", s.Session, s.SendFailure, MarkFailed, RemoveFailed)
	}
	if s.RequestTimeout < 0 || s.ConversationPoll < 0 || s.MessagePoll < 0 {
		return fmt.Errorf("session %q: durations must be positive", s.Session)
	}
	return nil
}
