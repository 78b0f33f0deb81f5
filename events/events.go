// Package events carries the notifications the engine emits after a state
// change ("round recalculated", "bracket generated") to whoever renders or
// caches views. The engine never knows who listens.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Type string

const (
	TypeRoundRecalculated Type = "round.recalculated"
	TypeGroupsDrawn       Type = "bracket.groups_drawn"
	TypeBracketGenerated  Type = "bracket.generated"
	TypeReturnLegsCreated Type = "bracket.return_legs_created"
	TypeGroupFixtures     Type = "bracket.group_fixtures"
)

type Event struct {
	Type           Type        `json:"type"`
	ChampionshipID int         `json:"championship_id"`
	RoundID        int         `json:"round_id,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
	Payload        interface{} `json:"payload,omitempty"`
}

// Room is the subscriber channel name for a championship.
func Room(championshipID int) string {
	return fmt.Sprintf("championship_%d", championshipID)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dispatcher fans an event out to every sink. A failing sink is logged and
// does not stop the others: events are notifications, not part of the
// transaction that produced them.
type Dispatcher struct {
	sinks  []Publisher
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger, sinks ...Publisher) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sinks: sinks, logger: logger}
}

func (d *Dispatcher) Add(sink Publisher) {
	d.sinks = append(d.sinks, sink)
}

func (d *Dispatcher) Publish(ctx context.Context, event Event) error {
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			d.logger.Warn("event sink failed",
				slog.String("type", string(event.Type)),
				slog.Int("championship_id", event.ChampionshipID),
				slog.Any("error", err))
		}
	}
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

var (
	_ Publisher = (*Dispatcher)(nil)
	_ Publisher = Nop{}
)
