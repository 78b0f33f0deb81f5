package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadRulesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(rules, DefaultRules()) {
		t.Errorf("empty path should return defaults, got %+v", rules)
	}
}

func TestLoadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	content := `
group_size = 3
group_labels = ["A", "B", "C", "D"]
return_leg_offset = "72h"
feed_timeout = "3s"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules.GroupSize != 3 || len(rules.GroupLabels) != 4 {
		t.Errorf("groups not decoded: %+v", rules)
	}
	if rules.ReturnLegOffset.Duration != 72*time.Hour || rules.FeedTimeout.Duration != 3*time.Second {
		t.Errorf("durations not decoded: %+v", rules)
	}
	if rules.MaxAttempts != DefaultRules().MaxAttempts {
		t.Errorf("unset key lost its default: %d", rules.MaxAttempts)
	}
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte("group_size = 1\nmax_attempts = 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "zero round lock ttl", content: `round_lock_ttl = "0s"`, wantErr: "round_lock_ttl"},
		{name: "negative standings lock ttl", content: `standings_lock_ttl = "-1s"`, wantErr: "standings_lock_ttl"},
		{name: "negative feed retries", content: `feed_retries = -1`, wantErr: "feed_retries"},
		{name: "negative return leg offset", content: `return_leg_offset = "-24h"`, wantErr: "return_leg_offset"},
		{name: "zero feed retries", content: `feed_retries = 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.toml")
			if err := os.WriteFile(path, []byte(tt.content+"\n"), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadRules(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")
	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/palpitarena")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RULES_FILE", "")
	t.Setenv("FEED_LEAGUE_ID", "71")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != 9090 || cfg.Feed.LeagueID != 71 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Feed.Timeout != DefaultRules().FeedTimeout.Duration {
		t.Errorf("feed timeout = %s", cfg.Feed.Timeout)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example")
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
