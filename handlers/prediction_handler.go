package handlers

import (
	"errors"
	"net/http"

	"github.com/pedrowallacee/palpitarena-v2/scoring"
	"github.com/pedrowallacee/palpitarena-v2/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(ps services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: ps}
}

type submitPredictionsRequest struct {
	Guesses []services.GuessInput `json:"guesses"`
}

// SubmitPredictions godoc
// @Summary  Submit guesses for a round
// @Tags     predictions
// @Accept   json
// @Produce  json
// @Param    roundID  path  int  true  "Round ID"
// @Param    input    body  submitPredictionsRequest  true  "Guesses"
// @Success  200  {object}  services.SubmissionResult
// @Failure  400,403,404,422  {object}  map[string]string
// @Security BearerAuth
// @Router   /rounds/{roundID}/predictions [post]
func (h *PredictionHandler) SubmitPredictions(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitPredictionsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.predictionService.SubmitPredictions(r.Context(), auth, roundID, input.Guesses)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type guessScore struct {
	MatchID int `json:"match_id"`
	Home    int `json:"home"`
	Away    int `json:"away"`
}

type copyLimitRequest struct {
	Participant []guessScore `json:"participant"`
	Rival       []guessScore `json:"rival"`
	RoundSize   int          `json:"round_size"`
}

func toScores(in []guessScore) map[int]scoring.Score {
	out := make(map[int]scoring.Score, len(in))
	for _, g := range in {
		out[g.MatchID] = scoring.Score{Home: g.Home, Away: g.Away}
	}
	return out
}

// CheckCopyLimit godoc
// @Summary  Check two guess sets against the copy limit
// @Tags     predictions
// @Accept   json
// @Produce  json
// @Param    input  body  copyLimitRequest  true  "Guess sets"
// @Success  200  {object}  scoring.CopyLimitResult
// @Failure  400  {object}  map[string]string
// @Router   /predictions/copy-limit/check [post]
func (h *PredictionHandler) CheckCopyLimit(w http.ResponseWriter, r *http.Request) {
	var input copyLimitRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.RoundSize < 0 {
		badRequestResponse(w, r, errors.New("round_size must not be negative"))
		return
	}

	result := h.predictionService.ValidateCopyLimit(toScores(input.Participant), toScores(input.Rival), input.RoundSize)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"copy_limit": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
