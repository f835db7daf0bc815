package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/justyntemme/raito-t/internal/reader"
)

const (
	DefaultServerURL = "http://localhost:8080"
	configFileName   = "config.json"
	configDirName    = "raito-t"
	dbFileName       = "history.db"
	MaxRecentlyRead  = 10 // Maximum number of recently read manga to track

	DefaultCellWidth        = 8
	DefaultCellHeight       = 16
	DefaultStartPageTimeout = 10 * time.Second
)

// Display mode names as stored in the config file
const (
	DisplayAuto    = "auto"
	DisplayOnePage = "one_page"
	DisplaySpread  = "spread"
)

// RecentlyReadEntry represents a recently read manga
type RecentlyReadEntry struct {
	MangaID   string    `json:"manga_id"`
	Title     string    `json:"title"`
	ChapterID string    `json:"chapter_id,omitempty"`
	OpenedAt  time.Time `json:"opened_at"`
}

// ReaderSettings holds the reading surface preferences
type ReaderSettings struct {
	DisplayMode              string `json:"display_mode"`
	ZoomEnabled              bool   `json:"zoom_enabled"`
	OverscrollToLoadPrevious bool   `json:"overscroll_to_load_previous"`
	LegacyChapterStepping    bool   `json:"legacy_chapter_stepping,omitempty"`
	CellWidth                int    `json:"cell_width,omitempty"`
	CellHeight               int    `json:"cell_height,omitempty"`
	StartPageTimeoutMS       int    `json:"start_page_timeout_ms,omitempty"`
}

// Config holds the application configuration
type Config struct {
	ServerURL    string              `json:"server_url"`
	Token        string              `json:"token,omitempty"`
	DBPath       string              `json:"db_path,omitempty"`
	Theme        string              `json:"theme,omitempty"`
	Reader       ReaderSettings      `json:"reader"`
	RecentlyRead []RecentlyReadEntry `json:"recently_read,omitempty"`

	// Path to config file (not persisted)
	path string `json:"-"`
}

// Load loads configuration from the config file
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from an explicit path. A missing file yields
// the defaults. Environment overrides are applied last.
func LoadFrom(configPath string) (*Config, error) {
	cfg := defaults(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.path = configPath
	cfg.applyEnv()
	return cfg, nil
}

func defaults(configPath string) *Config {
	return &Config{
		ServerURL: DefaultServerURL,
		DBPath:    filepath.Join(filepath.Dir(configPath), dbFileName),
		Theme:     "dark",
		Reader: ReaderSettings{
			DisplayMode: DisplayAuto,
			ZoomEnabled: true,
			CellWidth:   DefaultCellWidth,
			CellHeight:  DefaultCellHeight,
		},
		path: configPath,
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RAITO_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("RAITO_DB_PATH"); v != "" {
		c.DBPath = v
	}
}

// Save persists the configuration to disk
func (c *Config) Save() error {
	// Ensure directory exists
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Settings returns the read-only reading surface settings
func (c *Config) Settings() reader.Settings {
	s := reader.Settings{
		ZoomEnabled:              c.Reader.ZoomEnabled,
		OverscrollToLoadPrevious: c.Reader.OverscrollToLoadPrevious,
		StepPolicy:               reader.PerDirection,
		StartPageTimeout:         DefaultStartPageTimeout,
	}
	switch c.Reader.DisplayMode {
	case DisplayOnePage:
		s.DisplayMode = reader.DisplayOnePage
	case DisplaySpread:
		s.DisplayMode = reader.DisplaySpread
	default:
		s.DisplayMode = reader.DisplayAuto
	}
	if c.Reader.LegacyChapterStepping {
		s.StepPolicy = reader.SharedCount
	}
	if c.Reader.StartPageTimeoutMS > 0 {
		s.StartPageTimeout = time.Duration(c.Reader.StartPageTimeoutMS) * time.Millisecond
	}
	return s
}

// CellSize returns the pixel size of one terminal cell
func (c *Config) CellSize() (width, height int) {
	width, height = c.Reader.CellWidth, c.Reader.CellHeight
	if width <= 0 {
		width = DefaultCellWidth
	}
	if height <= 0 {
		height = DefaultCellHeight
	}
	return width, height
}

// CycleDisplayMode advances auto → one page → spread and saves
func (c *Config) CycleDisplayMode() error {
	switch c.Reader.DisplayMode {
	case DisplayOnePage:
		c.Reader.DisplayMode = DisplaySpread
	case DisplaySpread:
		c.Reader.DisplayMode = DisplayAuto
	default:
		c.Reader.DisplayMode = DisplayOnePage
	}
	return c.Save()
}

// AddRecentlyRead adds a manga to the recently read list
func (c *Config) AddRecentlyRead(mangaID, title, chapterID string) error {
	// Remove existing entry for this manga if present
	newList := make([]RecentlyReadEntry, 0, MaxRecentlyRead)
	for _, entry := range c.RecentlyRead {
		if entry.MangaID != mangaID {
			newList = append(newList, entry)
		}
	}

	// Add new entry at the front
	entry := RecentlyReadEntry{
		MangaID:   mangaID,
		Title:     title,
		ChapterID: chapterID,
		OpenedAt:  time.Now(),
	}
	c.RecentlyRead = append([]RecentlyReadEntry{entry}, newList...)

	// Trim to max size
	if len(c.RecentlyRead) > MaxRecentlyRead {
		c.RecentlyRead = c.RecentlyRead[:MaxRecentlyRead]
	}

	return c.Save()
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}

	return filepath.Join(configDir, configDirName, configFileName), nil
}
