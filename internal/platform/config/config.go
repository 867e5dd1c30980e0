package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

// ServerConfig は HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// AttendanceConfig は打刻パイプラインの振る舞いに関する設定です。
type AttendanceConfig struct {
	DefaultStartTime  string        `yaml:"default_start_time"`
	FirstCooldown     time.Duration `yaml:"-"`
	SecondCooldown    time.Duration `yaml:"-"`
	DebounceWindow    time.Duration `yaml:"-"`
	FirstCooldownRaw  string        `yaml:"first_cooldown"`
	SecondCooldownRaw string        `yaml:"second_cooldown"`
	DebounceWindowRaw string        `yaml:"debounce_window"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	att := &c.Attendance
	if err := att.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (a *AttendanceConfig) validateAndNormalize() error {
	if a.DefaultStartTime == "" {
		a.DefaultStartTime = "09:00"
	}
	if _, err := time.Parse("15:04", a.DefaultStartTime); err != nil {
		return fmt.Errorf("config: attendance.default_start_time: %w", err)
	}

	first, err := parseDurationAllowEmpty(a.FirstCooldownRaw)
	if err != nil {
		return fmt.Errorf("config: attendance.first_cooldown: %w", err)
	}
	a.FirstCooldown = first

	second, err := parseDurationAllowEmpty(a.SecondCooldownRaw)
	if err != nil {
		return fmt.Errorf("config: attendance.second_cooldown: %w", err)
	}
	a.SecondCooldown = second

	window, err := parseDurationAllowEmpty(a.DebounceWindowRaw)
	if err != nil {
		return fmt.Errorf("config: attendance.debounce_window: %w", err)
	}
	a.DebounceWindow = window

	if a.FirstCooldown < 0 || a.SecondCooldown < 0 || a.DebounceWindow < 0 {
		return fmt.Errorf("config: attendance durations must not be negative")
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。資格情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
