// Package config resolves daycal settings from the environment, an optional
// .env file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrInvalidLocation = errors.New("config: invalid LOCAL_TZ")
	ErrInvalidHour     = errors.New("config: invalid DAYCAL_DAILY_HOUR")
	ErrInvalidPort     = errors.New("config: invalid PORT")
)

const (
	KeyPort                   = "PORT"
	KeyDBPath                 = "DAYCAL_DB_PATH"
	KeyCacheDir               = "DAYCAL_CACHE_DIR"
	KeyServerURL              = "DAYCAL_SERVER_URL"
	KeyStaticDir              = "DAYCAL_STATIC_DIR"
	KeySupabaseURL            = "SUPABASE_URL"
	KeySupabaseAnonKey        = "SUPABASE_ANON_KEY"
	KeySupabaseServiceRoleKey = "SUPABASE_SERVICE_ROLE_KEY"
	KeyTwilioAccountSID       = "TWILIO_ACCOUNT_SID"
	KeyTwilioAuthToken        = "TWILIO_AUTH_TOKEN"
	KeyTwilioFrom             = "TWILIO_SMS_FROM"
	KeyDailySMSTo             = "DAILY_SMS_TO"
	KeyLocalTZ                = "LOCAL_TZ"
	KeyDailyHour              = "DAYCAL_DAILY_HOUR"
)

var keys = []string{
	KeyPort, KeyDBPath, KeyCacheDir, KeyServerURL, KeyStaticDir,
	KeySupabaseURL, KeySupabaseAnonKey, KeySupabaseServiceRoleKey,
	KeyTwilioAccountSID, KeyTwilioAuthToken, KeyTwilioFrom, KeyDailySMSTo,
	KeyLocalTZ, KeyDailyHour,
}

type Config struct {
	Port      int
	DBPath    string
	CacheDir  string
	ServerURL string
	StaticDir string

	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	DailySMSTo       string

	LocalTZ   string
	DailyHour int
}

func Default() Config {
	return Config{
		Port:      3000,
		DBPath:    "data/daycal.db",
		CacheDir:  "~/.daycal",
		ServerURL: "http://localhost:3000",
		DailyHour: 6,
	}
}

func newViper(envFile string) *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyPort, strconv.Itoa(d.Port))
	v.SetDefault(KeyDBPath, d.DBPath)
	v.SetDefault(KeyCacheDir, d.CacheDir)
	v.SetDefault(KeyServerURL, d.ServerURL)
	v.SetDefault(KeyDailyHour, strconv.Itoa(d.DailyHour))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	return v
}

// Load reads the configuration. A missing envFile is not an error; pass ""
// to skip the file entirely.
func Load(envFile string) (Config, error) {
	v := newViper(envFile)
	if envFile != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		}
	}

	get := func(k string) string { return strings.TrimSpace(v.GetString(k)) }
	cfg := Config{
		DBPath:                 get(KeyDBPath),
		CacheDir:               get(KeyCacheDir),
		ServerURL:              strings.TrimRight(get(KeyServerURL), "/"),
		StaticDir:              get(KeyStaticDir),
		SupabaseURL:            get(KeySupabaseURL),
		SupabaseAnonKey:        get(KeySupabaseAnonKey),
		SupabaseServiceRoleKey: get(KeySupabaseServiceRoleKey),
		TwilioAccountSID:       get(KeyTwilioAccountSID),
		TwilioAuthToken:        get(KeyTwilioAuthToken),
		TwilioFrom:             get(KeyTwilioFrom),
		DailySMSTo:             get(KeyDailySMSTo),
		LocalTZ:                get(KeyLocalTZ),
	}

	port, err := strconv.Atoi(get(KeyPort))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidPort, get(KeyPort))
	}
	cfg.Port = port

	hour, err := strconv.Atoi(get(KeyDailyHour))
	if err != nil || hour < 0 || hour > 23 {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidHour, get(KeyDailyHour))
	}
	cfg.DailyHour = hour

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves LOCAL_TZ; an empty value means the host's zone.
func (c Config) Location() (*time.Location, error) {
	switch c.LocalTZ {
	case "":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.LocalTZ)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, c.LocalTZ)
	}
	return loc, nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// SupabaseKey prefers the service role key, which bypasses row level
// security, over the anonymous key.
func (c Config) SupabaseKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabaseAnonKey
}

func (c Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey() != ""
}

// SupabaseClientConfigured reports whether a client can reach the hosted
// backend directly. Clients only use the anonymous key; the service role key
// stays with the server.
func (c Config) SupabaseClientConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}
