package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TicketType is one configured booking flow tracked independently.
// CalendarURL serves the month calendar; TimeSlotURL, when set, is a
// template for the per-date performance list with a "{date}" placeholder.
type TicketType struct {
	Key         string `json:"key"`
	CalendarURL string `json:"calendar_url"`
	TimeSlotURL string `json:"time_slot_url,omitempty"`
}

// defaultTicketTypes mirrors the two booking flows the watcher was built
// around: the full Colosseum itinerary and the simple entry ticket.
var defaultTicketTypes = []TicketType{
	{
		Key:         "full",
		CalendarURL: "https://ecm.coopculture.it/index.php?option=com_snapp&task=event.getEventsCalendar&format=raw&id=D7E12B2E-46C4-074B-5FC5-016ED579426D&month=11&year=2023&lang=en",
	},
	{
		Key:         "simple",
		CalendarURL: "https://ecm.coopculture.it/index.php?option=com_snapp&task=event.getEventsCalendar&format=raw&id=3793660E-5E3F-9172-2F89-016CB3FAD609&month=11&year=2023&lang=en",
	},
}

// Config holds everything the watcher needs for one run.
type Config struct {
	TicketTypes []TicketType
	// TargetDate parameterizes time-slot URL templates, e.g. "01/11/2023".
	TargetDate string

	DataDir        string
	CredentialFile string
	// CachePassphrase, when non-empty, encrypts the credential cache at rest.
	CachePassphrase string

	// GistID/GithubToken switch state persistence from the local data dir
	// to a GitHub gist.
	GistID      string
	GithubToken string

	HealthcheckURL string

	// Notifier is "telegram", "twitter" or "none".
	Notifier         string
	TelegramBotToken string
	TelegramChatID   string

	ListenAddr string
}

// FromEnv builds a Config from environment variables, applying defaults
// that match the original deployment.
func FromEnv() (Config, error) {
	cfg := Config{
		TicketTypes:      defaultTicketTypes,
		TargetDate:       os.Getenv("TARGET_DATE"),
		DataDir:          getenv("DATA_DIR", defaultDataDir()),
		CachePassphrase:  os.Getenv("CACHE_PASSPHRASE"),
		GistID:           os.Getenv("GIST_ID"),
		GithubToken:      os.Getenv("GITHUB_TOKEN"),
		HealthcheckURL:   os.Getenv("HEALTHCHECK_URL"),
		Notifier:         getenv("NOTIFIER", "telegram"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
	}
	cfg.CredentialFile = getenv("CREDENTIAL_FILE", filepath.Join(cfg.DataDir, "credential.json"))

	if path := os.Getenv("TICKET_TYPES_FILE"); path != "" {
		types, err := loadTicketTypes(path)
		if err != nil {
			return Config{}, err
		}
		cfg.TicketTypes = types
	}

	switch cfg.Notifier {
	case "telegram":
		if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
			return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for the telegram notifier")
		}
	case "twitter", "none":
	default:
		return Config{}, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}

	return cfg, nil
}

// Lookup returns the ticket type with the given key.
func (c Config) Lookup(key string) (TicketType, bool) {
	for _, tt := range c.TicketTypes {
		if tt.Key == key {
			return tt, true
		}
	}
	return TicketType{}, false
}

// loadTicketTypes reads a JSON array of ticket types from path.
func loadTicketTypes(path string) ([]TicketType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ticket types: %w", err)
	}
	var types []TicketType
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("parsing ticket types: %w", err)
	}
	for _, tt := range types {
		if tt.Key == "" || tt.CalendarURL == "" {
			return nil, fmt.Errorf("ticket type entries need key and calendar_url")
		}
	}
	return types, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ticketwatch")
	}
	return filepath.Join(home, ".local", "share", "ticketwatch")
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
