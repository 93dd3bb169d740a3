package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"BioSentinel/internal/model"
)

// PersonEntry is one preset in the people table.
type PersonEntry struct {
	Name      string `yaml:"name"`
	Birthdate string `yaml:"birthdate"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	People []PersonEntry `yaml:"people"`
	Window struct {
		DaysBefore int `yaml:"days_before"`
		DaysAfter  int `yaml:"days_after"`
		MaxDays    int `yaml:"max_days"`
	} `yaml:"window"`
	Roster struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"roster"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Chart struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"chart"`
	Proxy string `yaml:"proxy"`
}

// DefaultPeople is the preset table used when the config file lists none.
var DefaultPeople = []PersonEntry{
	{Name: "Scott", Birthdate: "1957-04-11"},
	{Name: "Patty", Birthdate: "1963-04-30"},
	{Name: "Marina", Birthdate: "1989-01-19"},
	{Name: "Drake", Birthdate: "1991-06-06"},
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Window values are set before parsing so an explicit 0 in the file survives.
	cfg.Window.DaysBefore = 15
	cfg.Window.DaysAfter = 30
	cfg.Window.MaxDays = 3660

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("ROSTER_STATE_FILE"); v != "" {
		cfg.Roster.StateFile = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("WINDOW_DAYS_BEFORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Window.DaysBefore = n
		}
	}
	if v := os.Getenv("WINDOW_DAYS_AFTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Window.DaysAfter = n
		}
	}
	if v := os.Getenv("WINDOW_MAX_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Window.MaxDays = n
		}
	}

	// Defaults
	if len(cfg.People) == 0 {
		cfg.People = append([]PersonEntry(nil), DefaultPeople...)
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 7 * * *"
	}
	if cfg.Roster.StateFile == "" {
		cfg.Roster.StateFile = "data/roster.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/biosentinel.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 1200
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 600
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Window.DaysBefore < 0 || c.Window.DaysAfter < 0 {
		return fmt.Errorf("window days must not be negative")
	}
	if c.Window.DaysBefore+c.Window.DaysAfter == 0 {
		return fmt.Errorf("window must span at least two days")
	}
	if c.Window.MaxDays > 0 && c.Window.DaysBefore+c.Window.DaysAfter+1 > c.Window.MaxDays {
		return fmt.Errorf("window.max_days %d is smaller than the default window", c.Window.MaxDays)
	}
	if c.Chart.Width < 200 || c.Chart.Height < 150 {
		return fmt.Errorf("chart must be at least 200x150")
	}
	if _, err := c.Presets(); err != nil {
		return err
	}
	return nil
}

// TelegramEnabled reports whether the bot side should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Presets parses the people table.
func (c *Config) Presets() ([]model.Person, error) {
	people := make([]model.Person, 0, len(c.People))
	seen := make(map[string]bool, len(c.People))
	for _, e := range c.People {
		if e.Name == "" {
			return nil, fmt.Errorf("people: entry with empty name")
		}
		if e.Name == model.CustomPerson {
			return nil, fmt.Errorf("people: %q is reserved", model.CustomPerson)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("people: duplicate name %q", e.Name)
		}
		seen[e.Name] = true
		d, err := model.ParseDate(e.Birthdate)
		if err != nil {
			return nil, fmt.Errorf("people.%s.birthdate: %w", e.Name, err)
		}
		people = append(people, model.Person{Name: e.Name, Birthdate: d, Preset: true})
	}
	return people, nil
}
