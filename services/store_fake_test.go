package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/pedrowallacee/palpitarena-v2/db"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/repositories"
)

// memStore is an in-memory stand-in for the Postgres store. RunInTx takes a
// snapshot and restores it when fn fails, so rollbacks behave like the real
// transaction.
type memStore struct {
	mu sync.Mutex

	championships map[int]models.Championship
	participants  map[int]models.Participant
	rounds        map[int]models.Round
	matches       map[int]models.Match
	predictions   map[int]models.Prediction
	duels         map[int]models.Duel
	nextID        int

	// transientFailures transactions fail with db.ErrTransient after fn ran.
	transientFailures int
	txCalls           int
	writes            int
}

type memSnapshot struct {
	championships map[int]models.Championship
	participants  map[int]models.Participant
	rounds        map[int]models.Round
	matches       map[int]models.Match
	predictions   map[int]models.Prediction
	duels         map[int]models.Duel
	nextID        int
}

func newMemStore() *memStore {
	return &memStore{
		championships: make(map[int]models.Championship),
		participants:  make(map[int]models.Participant),
		rounds:        make(map[int]models.Round),
		matches:       make(map[int]models.Match),
		predictions:   make(map[int]models.Prediction),
		duels:         make(map[int]models.Duel),
		nextID:        1000,
	}
}

func (m *memStore) Store() Store {
	return Store{
		Tx:            m,
		Championships: memChampionships{m},
		Participants:  memParticipants{m},
		Rounds:        memRounds{m},
		Matches:       memMatches{m},
		Predictions:   memPredictions{m},
		Duels:         memDuels{m},
	}
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		championships: maps.Clone(m.championships),
		participants:  maps.Clone(m.participants),
		rounds:        maps.Clone(m.rounds),
		matches:       maps.Clone(m.matches),
		predictions:   maps.Clone(m.predictions),
		duels:         maps.Clone(m.duels),
		nextID:        m.nextID,
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.championships = s.championships
	m.participants = s.participants
	m.rounds = s.rounds
	m.matches = s.matches
	m.predictions = s.predictions
	m.duels = s.duels
	m.nextID = s.nextID
}

func (m *memStore) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snap := m.snapshot()

	m.mu.Lock()
	m.txCalls++
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.restore(snap)
		return err
	}

	m.mu.Lock()
	fail := m.transientFailures > 0
	if fail {
		m.transientFailures--
	}
	m.mu.Unlock()
	if fail {
		m.restore(snap)
		return fmt.Errorf("%w: serialization failure", db.ErrTransient)
	}
	return nil
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

// Fixture helpers. They bypass transactions.

func (m *memStore) addChampionship(c models.Championship) {
	m.championships[c.ID] = c
}

func (m *memStore) addParticipants(championshipID int, ids ...int) {
	for _, id := range ids {
		m.participants[id] = models.Participant{
			ID:             id,
			ChampionshipID: championshipID,
			UserID:         id * 10,
			TeamName:       fmt.Sprintf("team-%d", id),
			IsActive:       true,
		}
	}
}

func (m *memStore) addRound(r models.Round) {
	if r.Leg == 0 {
		r.Leg = models.LegFirst
	}
	m.rounds[r.ID] = r
}

func (m *memStore) addMatch(mt models.Match) {
	m.matches[mt.ID] = mt
}

func (m *memStore) addPrediction(p models.Prediction) {
	m.predictions[p.ID] = p
}

func (m *memStore) addDuel(d models.Duel) {
	if d.Status == "" {
		d.Status = models.DuelStatusPending
	}
	m.duels[d.ID] = d
}

func (m *memStore) duelsOfRound(roundID int) []models.Duel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Duel, 0)
	for _, d := range m.duels {
		if d.RoundID == roundID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b models.Duel) int { return a.ID - b.ID })
	return out
}

func sortedValues[V any](src map[int]V, keep func(V) bool) []V {
	keys := make([]int, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		if keep(src[k]) {
			out = append(out, src[k])
		}
	}
	return out
}

type memChampionships struct{ m *memStore }

func (r memChampionships) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Championship, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.championships[id]
	if !ok || c.DeletedAt != nil {
		return nil, repositories.ErrChampionshipNotFound
	}
	return &c, nil
}

func (r memChampionships) UpdateStage(_ context.Context, _ repositories.SQLExecutor, id int, stage models.ChampionshipStage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.championships[id]
	if !ok {
		return repositories.ErrChampionshipNotFound
	}
	c.Stage = stage
	r.m.championships[id] = c
	r.m.writes++
	return nil
}

type memParticipants struct{ m *memStore }

func (r memParticipants) ListActive(_ context.Context, _ repositories.SQLExecutor, championshipID int) ([]models.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return sortedValues(r.m.participants, func(p models.Participant) bool {
		return p.ChampionshipID == championshipID && p.IsActive
	}), nil
}

func (r memParticipants) GetByUser(_ context.Context, _ repositories.SQLExecutor, championshipID, userID int) (*models.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.participants {
		if p.ChampionshipID == championshipID && p.UserID == userID && p.IsActive {
			return &p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r memParticipants) UpdateGroupLabels(_ context.Context, _ repositories.SQLExecutor, labels map[int]string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, label := range labels {
		p, ok := r.m.participants[id]
		if !ok {
			return repositories.ErrParticipantNotFound
		}
		l := label
		p.GroupLabel = &l
		r.m.participants[id] = p
		r.m.writes++
	}
	return nil
}

func (r memParticipants) UpdateStats(_ context.Context, _ repositories.SQLExecutor, participantID int, stats models.Stats) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.participants[participantID]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Stats = stats
	r.m.participants[participantID] = p
	r.m.writes++
	return nil
}

type memRounds struct{ m *memStore }

func (r memRounds) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Round, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	round, ok := r.m.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	return &round, nil
}

func (r memRounds) ListByChampionship(_ context.Context, _ repositories.SQLExecutor, championshipID int) ([]models.Round, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := sortedValues(r.m.rounds, func(round models.Round) bool { return round.ChampionshipID == championshipID })
	slices.SortStableFunc(out, func(a, b models.Round) int { return a.Number - b.Number })
	return out, nil
}

func (r memRounds) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.rounds {
		if existing.ChampionshipID == round.ChampionshipID && existing.Name == round.Name {
			return repositories.ErrRoundNameConflict
		}
	}
	round.ID = r.m.id()
	round.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.m.rounds[round.ID] = *round
	r.m.writes++
	return nil
}

func (r memRounds) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RoundStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	round, ok := r.m.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	round.Status = status
	r.m.rounds[id] = round
	r.m.writes++
	return nil
}

type memMatches struct{ m *memStore }

func (r memMatches) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) ([]models.Match, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return sortedValues(r.m.matches, func(mt models.Match) bool { return mt.RoundID == roundID }), nil
}

func (r memMatches) UpdateResult(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.matches[match.ID]
	if !ok || stored.Status == models.MatchStatusFinished {
		return repositories.ErrMatchNotFound
	}
	r.m.matches[match.ID] = *match
	r.m.writes++
	return nil
}

type memPredictions struct{ m *memStore }

func (r memPredictions) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) ([]models.Prediction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return sortedValues(r.m.predictions, func(p models.Prediction) bool {
		return r.m.matches[p.MatchID].RoundID == roundID
	}), nil
}

func (r memPredictions) ListByChampionship(_ context.Context, _ repositories.SQLExecutor, championshipID int) ([]models.Prediction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return sortedValues(r.m.predictions, func(p models.Prediction) bool {
		round := r.m.rounds[r.m.matches[p.MatchID].RoundID]
		return round.ChampionshipID == championshipID
	}), nil
}

func (r memPredictions) Upsert(_ context.Context, _ repositories.SQLExecutor, p *models.Prediction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, existing := range r.m.predictions {
		if existing.MatchID == p.MatchID && existing.ParticipantID == p.ParticipantID {
			p.ID = id
			p.CreatedAt = existing.CreatedAt
			p.Points, p.Outcome, p.IsExact, p.Processed = 0, "", false, false
			r.m.predictions[id] = *p
			r.m.writes++
			return nil
		}
	}
	p.ID = r.m.id()
	r.m.predictions[p.ID] = *p
	r.m.writes++
	return nil
}

func (r memPredictions) UpdateScore(_ context.Context, _ repositories.SQLExecutor, p *models.Prediction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.predictions[p.ID]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	stored.Points, stored.Outcome, stored.IsExact, stored.Processed = p.Points, p.Outcome, p.IsExact, p.Processed
	r.m.predictions[p.ID] = stored
	r.m.writes++
	return nil
}

type memDuels struct{ m *memStore }

func (r memDuels) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) ([]models.Duel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return sortedValues(r.m.duels, func(d models.Duel) bool { return d.RoundID == roundID }), nil
}

func (r memDuels) ListByChampionship(_ context.Context, _ repositories.SQLExecutor, championshipID int) ([]models.Duel, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return sortedValues(r.m.duels, func(d models.Duel) bool {
		return r.m.rounds[d.RoundID].ChampionshipID == championshipID
	}), nil
}

func (r memDuels) CreateBatch(_ context.Context, _ repositories.SQLExecutor, duels []*models.Duel) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range duels {
		for _, existing := range r.m.duels {
			if existing.RoundID == d.RoundID && (existing.Involves(d.HomeParticipantID) || existing.Involves(d.AwayParticipantID)) {
				return repositories.ErrDuelConflict
			}
		}
		d.ID = r.m.id()
		r.m.duels[d.ID] = *d
		r.m.writes++
	}
	return nil
}

func (r memDuels) UpdateResult(_ context.Context, _ repositories.SQLExecutor, d *models.Duel) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.duels[d.ID]; !ok {
		return repositories.ErrDuelNotFound
	}
	r.m.duels[d.ID] = *d
	r.m.writes++
	return nil
}

var (
	testNow    = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	testOwner  = AuthContext{UserID: 1}
	testAdmin  = AuthContext{UserID: 999, IsAdmin: true}
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func newTestClock() *clock.Mock {
	clk := clock.NewMock()
	clk.Set(testNow)
	return clk
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }
