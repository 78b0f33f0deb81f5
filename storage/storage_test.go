package storage

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/pedrowallacee/palpitarena-v2/events"
)

type memoryUploader struct {
	objects map[string][]byte
}

func (m *memoryUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*UploadResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[key] = b
	return &UploadResult{Key: key}, nil
}

func (m *memoryUploader) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryUploader) GetPublicURL(key string) string { return "" }

func TestStandingsArchiver(t *testing.T) {
	up := &memoryUploader{objects: map[string][]byte{}}
	a := NewStandingsArchiver(up, nil)

	if err := a.Publish(context.Background(), events.Event{Type: events.TypeGroupsDrawn, ChampionshipID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up.objects) != 0 {
		t.Fatalf("non-recalculation event was archived: %v", up.objects)
	}

	ev := events.Event{Type: events.TypeRoundRecalculated, ChampionshipID: 1, RoundID: 4, Payload: map[string]int{"updated_standings": 8}}
	if err := a.Publish(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"standings/championship_1/round_4.json", "standings/championship_1/latest.json"} {
		raw, ok := up.objects[key]
		if !ok {
			t.Fatalf("missing object %s", key)
		}
		var got events.Event
		if err := json.Unmarshal(raw, &got); err != nil || got.RoundID != 4 {
			t.Errorf("object %s = %s (err %v)", key, raw, err)
		}
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct{ base, key, want string }{
		{"https://cdn.example.com", "standings/a.json", "https://cdn.example.com/standings/a.json"},
		{"https://cdn.example.com/bucket/", "/standings/a.json", "https://cdn.example.com/bucket/standings/a.json"},
		{"", "x", ""},
	}
	for _, tc := range tests {
		if got := publicURL(tc.base, tc.key); got != tc.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tc.base, tc.key, got, tc.want)
		}
	}
}
