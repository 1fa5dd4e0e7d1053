package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"smd/pkg/logger"
)

// DefaultConfigFile is the configuration file name used when none is given
const DefaultConfigFile = "config.json"

// Valid values for the closed enum fields
var (
	ValidDefaultFormats = []string{
		"show_all", "mp3", "360p", "480p", "720p", "1080p", "1440p", "2160p", "4320p",
	}
	ValidMP3Qualities = []string{"64", "128", "192", "256", "320", "396"}
)

// Config holds all settings for the downloader
type Config struct {
	DownloadDirectory string               `json:"download_directory"`
	HistoryFile       string               `json:"history_file"`
	DefaultFormat     string               `json:"default_format"`
	MP3Quality        string               `json:"mp3_quality"`
	OrganizeDownloads bool                 `json:"organize_downloads"`
	DownloadMetadata  bool                 `json:"download_metadata"`
	DownloadComments  bool                 `json:"download_comments"`
	DownloadSubtitles bool                 `json:"download_subtitles"`
	MaxComments       int                  `json:"max_comments"`
	Authentication    AuthenticationConfig `json:"authentication"`
}

// AuthenticationConfig holds authentication-related settings
type AuthenticationConfig struct {
	InstagramUsername string `json:"instagram_username"`
	UseBrowserCookies bool   `json:"use_browser_cookies"`
	CookieBrowser     string `json:"cookie_browser"`
	SessionDirectory  string `json:"session_directory"`
}

// DefaultConfig returns a Config instance with the documented defaults
func DefaultConfig() *Config {
	return &Config{
		DownloadDirectory: "media",
		HistoryFile:       "download_history.csv",
		DefaultFormat:     "show_all",
		MP3Quality:        "192",
		OrganizeDownloads: true,
		DownloadMetadata:  true,
		DownloadComments:  false,
		DownloadSubtitles: false,
		MaxComments:       200,
		Authentication: AuthenticationConfig{
			InstagramUsername: "",
			UseBrowserCookies: true,
			CookieBrowser:     "chrome",
			SessionDirectory:  ".smd_sessions",
		},
	}
}

// Store loads, validates, repairs, and persists the JSON configuration file
type Store struct {
	path string
	log  logger.Logger
}

// NewStore creates a configuration store bound to the given file path
func NewStore(path string, log logger.Logger) *Store {
	if path == "" {
		path = DefaultConfigFile
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{path: path, log: log}
}

// Path returns the configuration file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration, repairing missing or invalid fields.
//
// A missing file is created with defaults. An unreadable or unparseable
// file is left untouched and in-memory defaults are returned. Otherwise
// each field is validated independently and reset to its default on
// mismatch; the corrected document is written back only when at least
// one field changed. Loading never fails, it degrades to defaults.
func (s *Store) Load() *Config {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := s.Save(cfg); err != nil {
			s.log.WithError(err).Error("failed to create config file")
		} else {
			s.log.WithField("path", s.path).Info("created new config file")
		}
		return cfg
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.WithError(err).Error("failed to read config file, using defaults")
		return DefaultConfig()
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.WithError(err).Error("failed to parse config file, using defaults")
		return DefaultConfig()
	}

	changed := s.repair(raw)
	cfg, err := fromRaw(raw)
	if err != nil {
		// repair guarantees well-typed fields, so this is unreachable in
		// practice, but degrade to defaults rather than crash
		s.log.WithError(err).Error("failed to decode repaired config, using defaults")
		return DefaultConfig()
	}

	if changed {
		if err := s.Save(cfg); err != nil {
			s.log.WithError(err).Error("failed to write corrected config")
		} else {
			s.log.Info("config file updated with corrected values")
		}
	}

	return cfg
}

// Save overwrites the configuration file with pretty-printed JSON
func (s *Store) Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// repair validates the raw document field by field, resetting anything
// missing or invalid to its default. Fields are independent; order does
// not matter. Reports whether the document was modified.
func (s *Store) repair(raw map[string]interface{}) bool {
	changed := false

	defaults := map[string]interface{}{
		"download_directory": "media",
		"history_file":       "download_history.csv",
		"default_format":     "show_all",
		"mp3_quality":        "192",
		"organize_downloads": true,
		"download_metadata":  true,
		"download_comments":  false,
		"download_subtitles": false,
		"max_comments":       200,
	}
	for key, def := range defaults {
		if _, ok := raw[key]; !ok {
			s.warnRepair(key, nil, def)
			raw[key] = def
			changed = true
		}
	}
	if _, ok := raw["authentication"]; !ok {
		s.warnRepair("authentication", nil, "defaults")
		raw["authentication"] = defaultAuthRaw()
		changed = true
	}

	if repairString(raw, "download_directory", "media") {
		changed = true
	}
	if repairString(raw, "history_file", "download_history.csv") {
		changed = true
	}

	// mp3_quality is stored as a string; a bare number is coerced
	quality := stringify(raw["mp3_quality"])
	if !contains(ValidMP3Qualities, quality) {
		s.warnRepair("mp3_quality", raw["mp3_quality"], "192")
		raw["mp3_quality"] = "192"
		changed = true
	} else if _, ok := raw["mp3_quality"].(string); !ok {
		raw["mp3_quality"] = quality
		changed = true
	}

	// default_format is matched case-insensitively; valid mixed-case
	// values are kept as written
	format := stringify(raw["default_format"])
	if !contains(ValidDefaultFormats, strings.ToLower(format)) {
		s.warnRepair("default_format", raw["default_format"], "show_all")
		raw["default_format"] = "show_all"
		changed = true
	} else if _, ok := raw["default_format"].(string); !ok {
		raw["default_format"] = format
		changed = true
	}

	boolDefaults := map[string]bool{
		"organize_downloads": true,
		"download_metadata":  true,
		"download_comments":  false,
		"download_subtitles": false,
	}
	for key, def := range boolDefaults {
		if _, ok := raw[key].(bool); !ok {
			s.warnRepair(key, raw[key], def)
			raw[key] = def
			changed = true
		}
	}

	if n, ok := intValue(raw["max_comments"]); !ok || n < 1 || n > 10000 {
		s.warnRepair("max_comments", raw["max_comments"], 200)
		raw["max_comments"] = 200
		changed = true
	} else if _, isNumber := raw["max_comments"].(float64); !isNumber {
		raw["max_comments"] = n
		changed = true
	}

	if s.repairAuth(raw) {
		changed = true
	}

	return changed
}

// repairAuth validates the nested authentication block
func (s *Store) repairAuth(raw map[string]interface{}) bool {
	changed := false

	auth, ok := raw["authentication"].(map[string]interface{})
	if !ok {
		s.warnRepair("authentication", raw["authentication"], "defaults")
		raw["authentication"] = defaultAuthRaw()
		return true
	}

	stringDefaults := map[string]string{
		"instagram_username": "",
		"cookie_browser":     "chrome",
		"session_directory":  ".smd_sessions",
	}
	for key, def := range stringDefaults {
		if _, ok := auth[key].(string); !ok {
			s.warnRepair("authentication."+key, auth[key], def)
			auth[key] = def
			changed = true
		}
	}
	if _, ok := auth["use_browser_cookies"].(bool); !ok {
		s.warnRepair("authentication.use_browser_cookies", auth["use_browser_cookies"], true)
		auth["use_browser_cookies"] = true
		changed = true
	}

	return changed
}

func (s *Store) warnRepair(key string, got, def interface{}) {
	s.log.WarnWithFields("invalid config value, resetting to default", map[string]interface{}{
		"key":     key,
		"value":   fmt.Sprintf("%v", got),
		"default": fmt.Sprintf("%v", def),
	})
}

// repairString resets a top-level field to its default unless it is a string
func repairString(raw map[string]interface{}, key, def string) bool {
	if _, ok := raw[key].(string); !ok {
		raw[key] = def
		return true
	}
	return false
}

func defaultAuthRaw() map[string]interface{} {
	return map[string]interface{}{
		"instagram_username":  "",
		"use_browser_cookies": true,
		"cookie_browser":      "chrome",
		"session_directory":   ".smd_sessions",
	}
}

// fromRaw decodes a repaired document into a Config
func fromRaw(raw map[string]interface{}) (*Config, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// stringify renders a raw JSON value the way it would appear as a string.
// Whole-number floats drop their fractional part so 192 matches "192".
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// intValue attempts integer conversion of a raw JSON value
func intValue(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	case bool:
		// bools are not comment counts even though Python's int() accepts them
		return 0, false
	default:
		return 0, false
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ApplyEnv overrides configuration values from SMD_* environment
// variables. Values failing the field's validity predicate are ignored.
// A .env file in the working directory or HOME is honored first.
func (s *Store) ApplyEnv(cfg *Config) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".smd.env"))

	if dir := os.Getenv("SMD_DOWNLOAD_DIR"); dir != "" {
		cfg.DownloadDirectory = dir
	}
	if file := os.Getenv("SMD_HISTORY_FILE"); file != "" {
		cfg.HistoryFile = file
	}
	if format := os.Getenv("SMD_DEFAULT_FORMAT"); format != "" {
		if contains(ValidDefaultFormats, strings.ToLower(format)) {
			cfg.DefaultFormat = format
		} else {
			s.log.WithField("value", format).Warn("ignoring invalid SMD_DEFAULT_FORMAT")
		}
	}
	if quality := os.Getenv("SMD_MP3_QUALITY"); quality != "" {
		if contains(ValidMP3Qualities, quality) {
			cfg.MP3Quality = quality
		} else {
			s.log.WithField("value", quality).Warn("ignoring invalid SMD_MP3_QUALITY")
		}
	}
	if organize := os.Getenv("SMD_ORGANIZE_DOWNLOADS"); organize != "" {
		cfg.OrganizeDownloads = strings.EqualFold(organize, "true")
	}
	if maxComments := os.Getenv("SMD_MAX_COMMENTS"); maxComments != "" {
		if n, err := strconv.Atoi(maxComments); err == nil && n >= 1 && n <= 10000 {
			cfg.MaxComments = n
		} else {
			s.log.WithField("value", maxComments).Warn("ignoring invalid SMD_MAX_COMMENTS")
		}
	}
	if browser := os.Getenv("SMD_COOKIE_BROWSER"); browser != "" {
		cfg.Authentication.CookieBrowser = browser
	}
	if username := os.Getenv("SMD_INSTAGRAM_USERNAME"); username != "" {
		cfg.Authentication.InstagramUsername = username
	}
}
