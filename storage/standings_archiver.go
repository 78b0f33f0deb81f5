package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pedrowallacee/palpitarena-v2/events"
)

// StandingsArchiver is an event sink that stores a JSON snapshot of every
// recalculation, one object per round plus a "latest" object per
// championship, so views can be served from the bucket.
type StandingsArchiver struct {
	uploader FileUploader
	logger   *slog.Logger
}

func NewStandingsArchiver(uploader FileUploader, logger *slog.Logger) *StandingsArchiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandingsArchiver{uploader: uploader, logger: logger}
}

func SnapshotKey(championshipID, roundID int) string {
	return fmt.Sprintf("standings/championship_%d/round_%d.json", championshipID, roundID)
}

func LatestKey(championshipID int) string {
	return fmt.Sprintf("standings/championship_%d/latest.json", championshipID)
}

func (a *StandingsArchiver) Publish(ctx context.Context, event events.Event) error {
	if event.Type != events.TypeRoundRecalculated {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal standings snapshot: %w", err)
	}

	for _, key := range []string{SnapshotKey(event.ChampionshipID, event.RoundID), LatestKey(event.ChampionshipID)} {
		res, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("archive standings snapshot: %w", err)
		}
		a.logger.Debug("standings snapshot archived", slog.String("key", res.Key), slog.String("location", res.Location))
	}
	return nil
}

var _ events.Publisher = (*StandingsArchiver)(nil)
