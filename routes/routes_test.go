package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pedrowallacee/palpitarena-v2/events"
	"github.com/pedrowallacee/palpitarena-v2/handlers"
	"github.com/pedrowallacee/palpitarena-v2/models"
	"github.com/pedrowallacee/palpitarena-v2/scoring"
	"github.com/pedrowallacee/palpitarena-v2/services"
	"github.com/stretchr/testify/mock"
)

var testSecret = []byte("routes-secret")

type mockRecalculation struct{ mock.Mock }

func (m *mockRecalculation) RecalculateRound(ctx context.Context, auth services.AuthContext, roundID int) (*services.RecalculationSummary, error) {
	args := m.Called(ctx, auth, roundID)
	var res *services.RecalculationSummary
	if args.Get(0) != nil {
		res = args.Get(0).(*services.RecalculationSummary)
	}
	return res, args.Error(1)
}

type mockBracket struct{ mock.Mock }

func (m *mockBracket) DrawGroups(ctx context.Context, auth services.AuthContext, id int) (map[string][]models.Participant, error) {
	args := m.Called(ctx, auth, id)
	var res map[string][]models.Participant
	if args.Get(0) != nil {
		res = args.Get(0).(map[string][]models.Participant)
	}
	return res, args.Error(1)
}

func (m *mockBracket) GenerateGroupFixtures(ctx context.Context, auth services.AuthContext, id int) (int, error) {
	args := m.Called(ctx, auth, id)
	return args.Int(0), args.Error(1)
}

func (m *mockBracket) GenerateKnockoutFromGroups(ctx context.Context, auth services.AuthContext, id int) ([]models.Duel, error) {
	args := m.Called(ctx, auth, id)
	var res []models.Duel
	if args.Get(0) != nil {
		res = args.Get(0).([]models.Duel)
	}
	return res, args.Error(1)
}

func (m *mockBracket) DrawDirectKnockout(ctx context.Context, auth services.AuthContext, id int) (*services.KnockoutDraw, error) {
	args := m.Called(ctx, auth, id)
	var res *services.KnockoutDraw
	if args.Get(0) != nil {
		res = args.Get(0).(*services.KnockoutDraw)
	}
	return res, args.Error(1)
}

func (m *mockBracket) AdvanceKnockout(ctx context.Context, auth services.AuthContext, id int) ([]models.Duel, error) {
	args := m.Called(ctx, auth, id)
	var res []models.Duel
	if args.Get(0) != nil {
		res = args.Get(0).([]models.Duel)
	}
	return res, args.Error(1)
}

func (m *mockBracket) GenerateReturnLegs(ctx context.Context, auth services.AuthContext, id int) (int, error) {
	args := m.Called(ctx, auth, id)
	return args.Int(0), args.Error(1)
}

type mockStandings struct{ mock.Mock }

func (m *mockStandings) GetStandings(ctx context.Context, id int) (*services.StandingsView, error) {
	args := m.Called(ctx, id)
	var res *services.StandingsView
	if args.Get(0) != nil {
		res = args.Get(0).(*services.StandingsView)
	}
	return res, args.Error(1)
}

type mockPredictions struct{ mock.Mock }

func (m *mockPredictions) SubmitPredictions(ctx context.Context, auth services.AuthContext, roundID int, guesses []services.GuessInput) (*services.SubmissionResult, error) {
	args := m.Called(ctx, auth, roundID, guesses)
	var res *services.SubmissionResult
	if args.Get(0) != nil {
		res = args.Get(0).(*services.SubmissionResult)
	}
	return res, args.Error(1)
}

func (m *mockPredictions) ValidateCopyLimit(participant, rival map[int]scoring.Score, roundSize int) scoring.CopyLimitResult {
	return scoring.CheckCopyLimit(participant, rival, roundSize)
}

type testServer struct {
	router        chi.Router
	recalculation *mockRecalculation
	bracket       *mockBracket
	standings     *mockStandings
	predictions   *mockPredictions
}

func newTestServer() *testServer {
	ts := &testServer{
		router:        chi.NewRouter(),
		recalculation: &mockRecalculation{},
		bracket:       &mockBracket{},
		standings:     &mockStandings{},
		predictions:   &mockPredictions{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetupRoutes(ts.router, Options{JWTSecret: testSecret},
		handlers.NewChampionshipHandler(ts.recalculation, ts.bracket, ts.standings),
		handlers.NewPredictionHandler(ts.predictions),
		handlers.NewWebSocketHandler(events.NewHub(logger), nil, logger),
	)
	return ts
}

func bearer(t *testing.T, userID int, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func (ts *testServer) do(method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := newTestServer().do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRecalculateRound_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"in progress", services.ErrRecalculationInProgress, http.StatusConflict},
		{"transient", services.ErrTransientStore, http.StatusServiceUnavailable},
		{"precondition", services.ErrPreconditionFailed, http.StatusPreconditionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			var summary *services.RecalculationSummary
			if tt.err == nil {
				summary = &services.RecalculationSummary{RoundID: 10, RoundStatus: models.RoundStatusFinished}
			}
			ts.recalculation.On("RecalculateRound", mock.Anything, services.AuthContext{UserID: 7}, 10).Return(summary, tt.err)

			rec := ts.do(http.MethodPost, "/rounds/10/recalculate", bearer(t, 7, "organizer"), "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusServiceUnavailable && rec.Header().Get("Retry-After") == "" {
				t.Error("Retry-After header missing")
			}
			ts.recalculation.AssertExpectations(t)
		})
	}
}

func TestAuthenticatedRoutesNeedToken(t *testing.T) {
	ts := newTestServer()
	for _, path := range []string{
		"/rounds/10/recalculate",
		"/rounds/10/predictions",
		"/championships/1/groups/draw",
		"/championships/1/knockout/advance",
		"/championships/1/return-legs",
	} {
		if rec := ts.do(http.MethodPost, path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("POST %s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestBracketRoutes(t *testing.T) {
	ts := newTestServer()
	admin := services.AuthContext{UserID: 1, IsAdmin: true}
	ts.bracket.On("GenerateGroupFixtures", mock.Anything, admin, 3).Return(12, nil)
	ts.bracket.On("GenerateReturnLegs", mock.Anything, admin, 3).Return(0, nil)
	ts.bracket.On("DrawDirectKnockout", mock.Anything, admin, 3).Return(nil, services.ErrPreconditionFailed)

	token := bearer(t, 1, "admin")
	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/championships/3/groups/fixtures", http.StatusCreated},
		{"/championships/3/return-legs", http.StatusOK},
		{"/championships/3/knockout/direct", http.StatusPreconditionFailed},
		{"/championships/abc/return-legs", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := ts.do(http.MethodPost, tt.path, token, ""); rec.Code != tt.wantStatus {
			t.Errorf("POST %s status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
		}
	}
	ts.bracket.AssertExpectations(t)
}

func TestSubmitPredictionsRoute(t *testing.T) {
	ts := newTestServer()
	guesses := []services.GuessInput{{MatchID: 101, HomeGuess: 2, AwayGuess: 1}}
	ts.predictions.On("SubmitPredictions", mock.Anything, services.AuthContext{UserID: 5}, 10, guesses).
		Return(&services.SubmissionResult{Accepted: []models.Prediction{{MatchID: 101, HomeGuess: 2, AwayGuess: 1}}}, nil)

	rec := ts.do(http.MethodPost, "/rounds/10/predictions", bearer(t, 5, "player"),
		`{"guesses":[{"match_id":101,"home_guess":2,"away_guess":1}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	ts.predictions.AssertExpectations(t)

	rec = ts.do(http.MethodPost, "/rounds/10/predictions", bearer(t, 5, "player"), `{"guesses":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestCopyLimitCheckIsPublic(t *testing.T) {
	rec := newTestServer().do(http.MethodPost, "/predictions/copy-limit/check", "",
		`{"participant":[{"match_id":1,"home":1,"away":0},{"match_id":2,"home":0,"away":0},{"match_id":3,"home":2,"away":2}],
		  "rival":[{"match_id":1,"home":1,"away":0},{"match_id":2,"home":0,"away":0},{"match_id":3,"home":2,"away":2}],
		  "round_size":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		CopyLimit scoring.CopyLimitResult `json:"copy_limit"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := scoring.CopyLimitResult{Violation: true, Count: 3, Allowed: 2}
	if body.CopyLimit != want {
		t.Errorf("copy_limit = %+v, want %+v", body.CopyLimit, want)
	}
}

func TestStandingsRouteIsPublic(t *testing.T) {
	ts := newTestServer()
	ts.standings.On("GetStandings", mock.Anything, 4).Return(&services.StandingsView{ChampionshipID: 4, Format: models.FormatLeaguePoints}, nil)
	ts.standings.On("GetStandings", mock.Anything, 5).Return(nil, services.ErrNotFound)

	if rec := ts.do(http.MethodGet, "/championships/4/standings", "", ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/championships/5/standings", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	ts.standings.AssertExpectations(t)
}
