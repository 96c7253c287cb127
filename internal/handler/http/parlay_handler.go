package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/internal/service"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

const maxBodyBytes = 1 << 20

// ParlayHandler handles HTTP requests for fight cards, simulations and reconciliation
type ParlayHandler struct {
	service  *service.ParlayService
	validate *validator.Validate
	defaults models.StrategyConfig
	logger   zerolog.Logger
}

// NewParlayHandler creates a new parlay HTTP handler.
// defaults fill strategy fields a request omits.
func NewParlayHandler(
	service *service.ParlayService,
	validate *validator.Validate,
	defaults models.StrategyConfig,
	logger zerolog.Logger,
) *ParlayHandler {
	return &ParlayHandler{
		service:  service,
		validate: validate,
		defaults: defaults,
		logger:   logger.With().Str("component", "parlay_handler").Logger(),
	}
}

// RegisterRoutes registers API routes on the router
func (h *ParlayHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cards", h.handleUpsertCard)
		r.Get("/cards/{cardID}", h.handleGetCard)
		r.Post("/cards/{cardID}/simulate", h.handleSimulateCard)
		r.Post("/simulate", h.handleSimulate)
		r.Get("/runs/{runID}", h.handleGetRun)
		r.Post("/runs/{runID}/reconcile", h.handleReconcile)
		r.Get("/odds/convert", h.handleConvert)
	})
}

// handleUpsertCard handles POST /api/v1/cards
func (h *ParlayHandler) handleUpsertCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	source := req.Source
	if source == "" {
		source = "http"
	}
	card, err := h.service.UpsertCard(r.Context(), &models.FightCard{
		ID:     req.ID,
		Source: source,
		Fights: req.Fights,
	})
	if err != nil {
		h.serviceError(w, err, "failed to store card")
		return
	}

	h.jsonResponse(w, http.StatusCreated, card)
}

// handleGetCard handles GET /api/v1/cards/{cardID}
func (h *ParlayHandler) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		h.serviceError(w, err, "failed to retrieve card")
		return
	}
	h.jsonResponse(w, http.StatusOK, card)
}

// handleSimulateCard handles POST /api/v1/cards/{cardID}/simulate
func (h *ParlayHandler) handleSimulateCard(w http.ResponseWriter, r *http.Request) {
	var req cardSimulateRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	result, err := h.service.SimulateCard(r.Context(), chi.URLParam(r, "cardID"), req.Probabilities, req.Strategy.apply(h.defaults))
	if err != nil {
		h.serviceError(w, err, "simulation failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// handleSimulate handles POST /api/v1/simulate
func (h *ParlayHandler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	result, err := h.service.SimulateFights(r.Context(), req.Fights, req.Probabilities, req.Strategy.apply(h.defaults))
	if err != nil {
		h.serviceError(w, err, "simulation failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// handleGetRun handles GET /api/v1/runs/{runID}
func (h *ParlayHandler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.serviceError(w, err, "failed to retrieve run")
		return
	}
	h.jsonResponse(w, http.StatusOK, run)
}

// handleReconcile handles POST /api/v1/runs/{runID}/reconcile
func (h *ParlayHandler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	result, err := h.service.Reconcile(r.Context(), chi.URLParam(r, "runID"), req.Winners)
	if err != nil {
		h.serviceError(w, err, "reconciliation failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// handleConvert handles GET /api/v1/odds/convert?american=N or ?decimal=X
func (h *ParlayHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	american, decimalOdds := q.Get("american"), q.Get("decimal")
	if (american == "") == (decimalOdds == "") {
		h.errorResponse(w, http.StatusBadRequest, "exactly one of american or decimal is required")
		return
	}

	var resp conversionResponse
	if american != "" {
		odds, err := strconv.Atoi(strings.TrimPrefix(american, "+"))
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "american must be an integer")
			return
		}
		d, err := parlay.AmericanToDecimal(odds)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		p, _ := parlay.ImpliedProbability(odds)
		resp = conversionResponse{American: odds, Decimal: d, ImpliedProbability: p}
	} else {
		d, err := strconv.ParseFloat(decimalOdds, 64)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "decimal must be a number")
			return
		}
		odds, err := parlay.DecimalToAmerican(d)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		p, _ := parlay.DecimalImpliedProbability(d)
		resp = conversionResponse{American: odds, Decimal: d, ImpliedProbability: p}
	}

	h.jsonResponse(w, http.StatusOK, resp)
}

// decode reads and validates a JSON body; allowEmpty accepts a missing body
func (h *ParlayHandler) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		err = nil
	}
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.errorResponse(w, http.StatusBadRequest, formatValidationErrors(verrs))
			return false
		}
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// serviceError maps service errors to HTTP statuses
func (h *ParlayHandler) serviceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case service.IsNotFound(err):
		h.errorResponse(w, http.StatusNotFound, err.Error())
	case parlay.IsValidationError(err):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(msg)
		h.errorResponse(w, http.StatusInternalServerError, msg)
	}
}

// jsonResponse writes a JSON response
func (h *ParlayHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *ParlayHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
