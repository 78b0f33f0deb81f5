package handlers

import (
	"net/http"

	"github.com/pedrowallacee/palpitarena-v2/services"
)

type ChampionshipHandler struct {
	recalculationService services.RecalculationService
	bracketService       services.BracketService
	standingsService     services.StandingsService
}

func NewChampionshipHandler(
	rs services.RecalculationService,
	bs services.BracketService,
	ss services.StandingsService,
) *ChampionshipHandler {
	return &ChampionshipHandler{
		recalculationService: rs,
		bracketService:       bs,
		standingsService:     ss,
	}
}

// RecalculateRound godoc
// @Summary      Recalculate a round
// @Description  Syncs results from the feed, scores guesses, resolves duels and rebuilds standings.
// @Tags         rounds
// @Produce      json
// @Param        roundID  path  int  true  "Round ID"
// @Success      200  {object}  services.RecalculationSummary
// @Failure      403,404,409,503  {object}  map[string]string
// @Security     BearerAuth
// @Router       /rounds/{roundID}/recalculate [post]
func (h *ChampionshipHandler) RecalculateRound(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.recalculationService.RecalculateRound(r.Context(), auth, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DrawGroups godoc
// @Summary  Draw the group stage
// @Tags     brackets
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  200  {object}  map[string][]models.Participant
// @Failure  403,404,412  {object}  map[string]string
// @Security BearerAuth
// @Router   /championships/{championshipID}/groups/draw [post]
func (h *ChampionshipHandler) DrawGroups(w http.ResponseWriter, r *http.Request) {
	h.withChampionship(w, r, func(auth services.AuthContext, id int) (int, interface{}, error) {
		groups, err := h.bracketService.DrawGroups(r.Context(), auth, id)
		return http.StatusOK, jsonResponse{"groups": groups}, err
	})
}

// GenerateGroupFixtures godoc
// @Summary  Create the round-robin duels of every group
// @Tags     brackets
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  201  {object}  map[string]int
// @Failure  403,404,412  {object}  map[string]string
// @Security BearerAuth
// @Router   /championships/{championshipID}/groups/fixtures [post]
func (h *ChampionshipHandler) GenerateGroupFixtures(w http.ResponseWriter, r *http.Request) {
	h.withChampionship(w, r, func(auth services.AuthContext, id int) (int, interface{}, error) {
		n, err := h.bracketService.GenerateGroupFixtures(r.Context(), auth, id)
		return http.StatusCreated, jsonResponse{"duels_created": n}, err
	})
}

// GenerateKnockoutFromGroups godoc
// @Summary  Seed the knockout from the group tables (1A-2B, 1B-2A, 1C-2D, 1D-2C)
// @Tags     brackets
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  201  {array}   models.Duel
// @Failure  403,404,412  {object}  map[string]string
// @Security BearerAuth
// @Router   /championships/{championshipID}/knockout/from-groups [post]
func (h *ChampionshipHandler) GenerateKnockoutFromGroups(w http.ResponseWriter, r *http.Request) {
	h.withChampionship(w, r, func(auth services.AuthContext, id int) (int, interface{}, error) {
		duels, err := h.bracketService.GenerateKnockoutFromGroups(r.Context(), auth, id)
		return http.StatusCreated, jsonResponse{"duels": duels}, err
	})
}

// DrawDirectKnockout godoc
// @Summary  Draw a knockout from all active participants
// @Tags     brackets
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  201  {object}  services.KnockoutDraw
// @Failure  403,404,412  {object}  map[string]string
// @Security BearerAuth
// @Router   /championships/{championshipID}/knockout/direct [post]
func (h *ChampionshipHandler) DrawDirectKnockout(w http.ResponseWriter, r *http.Request) {
	h.withChampionship(w, r, func(auth services.AuthContext, id int) (int, interface{}, error) {
		draw, err := h.bracketService.DrawDirectKnockout(r.Context(), auth, id)
		return http.StatusCreated, jsonResponse{"draw": draw}, err
	})
}

// AdvanceKnockout godoc
// @Summary  Pair the winners of the latest knockout round
// @Tags     brackets
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  201  {array}   models.Duel
// @Failure  403,404,412  {object}  map[string]string
// @Security BearerAuth
// @Router   /championships/{championshipID}/knockout/advance [post]
func (h *ChampionshipHandler) AdvanceKnockout(w http.ResponseWriter, r *http.Request) {
	h.withChampionship(w, r, func(auth services.AuthContext, id int) (int, interface{}, error) {
		duels, err := h.bracketService.AdvanceKnockout(r.Context(), auth, id)
		return http.StatusCreated, jsonResponse{"duels": duels}, err
	})
}

// GenerateReturnLegs godoc
// @Summary  Mirror every first-leg round with duels
// @Tags     brackets
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  200  {object}  map[string]int
// @Failure  403,404,412  {object}  map[string]string
// @Security BearerAuth
// @Router   /championships/{championshipID}/return-legs [post]
func (h *ChampionshipHandler) GenerateReturnLegs(w http.ResponseWriter, r *http.Request) {
	h.withChampionship(w, r, func(auth services.AuthContext, id int) (int, interface{}, error) {
		n, err := h.bracketService.GenerateReturnLegs(r.Context(), auth, id)
		return http.StatusOK, jsonResponse{"rounds_created": n}, err
	})
}

// GetStandings godoc
// @Summary  League table and group tables
// @Tags     standings
// @Produce  json
// @Param    championshipID  path  int  true  "Championship ID"
// @Success  200  {object}  services.StandingsView
// @Failure  404  {object}  map[string]string
// @Router   /championships/{championshipID}/standings [get]
func (h *ChampionshipHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.standingsService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChampionshipHandler) withChampionship(
	w http.ResponseWriter,
	r *http.Request,
	op func(auth services.AuthContext, championshipID int) (int, interface{}, error),
) {
	auth, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, body, err := op(auth, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, status, body, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
