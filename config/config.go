package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// CORSAllowedOrigins берётся из CORS_ALLOWED_ORIGINS (через запятую).
	CORSAllowedOrigins []string

	// Redis необязателен: без него блокировки и события остаются внутри процесса.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	Feed  FeedConfig
	Rules Rules
}

type FeedConfig struct {
	BaseURL  string
	APIKey   string
	LeagueID int
	Season   int
	Timeout  time.Duration
	Retries  int
}

// Rules are league settings that may come from the TOML rules file.
type Rules struct {
	GroupSize        int      `toml:"group_size"`
	GroupLabels      []string `toml:"group_labels"`
	ReturnLegOffset  Duration `toml:"return_leg_offset"`
	MaxAttempts      int      `toml:"max_attempts"`
	RoundLockTTL     Duration `toml:"round_lock_ttl"`
	StandingsLockTTL Duration `toml:"standings_lock_ttl"`
	FeedTimeout      Duration `toml:"feed_timeout"`
	FeedRetries      int      `toml:"feed_retries"`
}

// Duration decodes TOML strings such as "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func DefaultRules() Rules {
	return Rules{
		GroupSize:        4,
		GroupLabels:      []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		ReturnLegOffset:  Duration{7 * 24 * time.Hour},
		MaxAttempts:      3,
		RoundLockTTL:     Duration{5 * time.Minute},
		StandingsLockTTL: Duration{time.Minute},
		FeedTimeout:      Duration{10 * time.Second},
		FeedRetries:      2,
	}
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл и файл правил RULES_FILE (TOML).
func Load() (*Config, error) {
	// Ошибку не считаем фатальной: .env нужен только локально.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	rules, err := LoadRules(os.Getenv("RULES_FILE"))
	if err != nil {
		return nil, err
	}

	leagueID, err := intEnv("FEED_LEAGUE_ID", 0)
	if err != nil {
		return nil, err
	}
	season, err := intEnv("FEED_SEASON", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
		Feed: FeedConfig{
			BaseURL:  envOr("FEED_BASE_URL", "https://v3.football.api-sports.io"),
			APIKey:   os.Getenv("FEED_API_KEY"),
			LeagueID: leagueID,
			Season:   season,
			Timeout:  rules.FeedTimeout.Duration,
			Retries:  rules.FeedRetries,
		},
		Rules: rules,
	}

	return cfg, nil
}

// LoadRules decodes the TOML rules file on top of DefaultRules. An empty
// path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	if _, err := toml.DecodeFile(path, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to decode rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	var problems []string
	if r.GroupSize < 2 {
		problems = append(problems, "group_size must be at least 2")
	}
	if len(r.GroupLabels) == 0 {
		problems = append(problems, "group_labels must not be empty")
	}
	if r.MaxAttempts < 1 {
		problems = append(problems, "max_attempts must be at least 1")
	}
	if r.FeedTimeout.Duration <= 0 {
		problems = append(problems, "feed_timeout must be positive")
	}
	if r.FeedRetries < 0 {
		problems = append(problems, "feed_retries must not be negative")
	}
	// Нулевой TTL в Redis означает ключ без срока жизни.
	if r.RoundLockTTL.Duration <= 0 {
		problems = append(problems, "round_lock_ttl must be positive")
	}
	if r.StandingsLockTTL.Duration <= 0 {
		problems = append(problems, "standings_lock_ttl must be positive")
	}
	if r.ReturnLegOffset.Duration < 0 {
		problems = append(problems, "return_leg_offset must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid rules: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
