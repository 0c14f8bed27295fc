package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

const maxRequestBody = 4 << 20

// API serves the stateless engine operations: severity aggregation,
// compensation estimates and the active rate table.
type API struct {
	rates   *domain.RateTable
	weights domain.SeverityWeights
	logger  *slog.Logger
}

// NewAPI creates the /v1 handlers. weights are used when a severity request
// does not override them.
func NewAPI(rates *domain.RateTable, weights domain.SeverityWeights, logger *slog.Logger) *API {
	return &API{rates: rates, weights: weights, logger: logger}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/severity", a.handleSeverity)
	mux.HandleFunc("POST /v1/compensation", a.handleCompensation)
	mux.HandleFunc("GET /v1/rates", a.handleRates)
}

type severityRequest struct {
	Report  domain.SituationReport `json:"report"`
	Weights json.RawMessage        `json:"weights,omitempty"`
}

func (a *API) handleSeverity(w http.ResponseWriter, r *http.Request) {
	var req severityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Weights given in the request override the configured ones field by field.
	weights := a.weights
	if len(req.Weights) > 0 && string(req.Weights) != "null" {
		if err := json.Unmarshal(req.Weights, &weights); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode weights: %w", err))
			return
		}
	}

	agg := domain.Aggregate(req.Report, weights)
	a.logger.Debug("severity aggregated", "date", req.Report.Date, "districts", agg.Totals.Districts)
	sharedobs.WriteJSON(w, http.StatusOK, agg)
}

// IncidentInput is one itemized incident of a detailed damage input.
type IncidentInput struct {
	HousesFullyDamaged     domain.Count `json:"housesFullyDamaged"`
	HousesPartiallyDamaged domain.Count `json:"housesPartiallyDamaged"`
	CattlePerished         domain.Count `json:"cattlePerished"`
	OtherDamaged           domain.Count `json:"otherDamaged"`
}

// DamageInput is the wire form of a damage source. Source selects the
// variant: "detailed" reads Incidents, "aggregate" reads HousesDamaged and
// LivestockLost.
type DamageInput struct {
	Source        string          `json:"source"`
	District      string          `json:"district"`
	Deaths        domain.Count    `json:"deaths"`
	Injured       domain.Count    `json:"injured"`
	HousesDamaged domain.Count    `json:"housesDamaged"`
	LivestockLost domain.Count    `json:"livestockLost"`
	Incidents     []IncidentInput `json:"incidents,omitempty"`
}

// DamageSource converts the input into its domain variant.
func (in DamageInput) DamageSource() (domain.DamageSource, error) {
	switch in.Source {
	case domain.DamageSourceDetailed:
		incidents := make([]domain.IncidentDamage, len(in.Incidents))
		for i, inc := range in.Incidents {
			incidents[i] = domain.IncidentDamage{
				HousesFullyDamaged:     inc.HousesFullyDamaged.Int(),
				HousesPartiallyDamaged: inc.HousesPartiallyDamaged.Int(),
				CattlePerished:         inc.CattlePerished.Int(),
				OtherDamaged:           inc.OtherDamaged.Int(),
			}
		}
		return domain.DetailedDamage{
			District:  in.District,
			Deaths:    in.Deaths.Int(),
			Injured:   in.Injured.Int(),
			Incidents: incidents,
		}, nil
	case domain.DamageSourceAggregate:
		return domain.AggregateDamage{
			District:      in.District,
			Deaths:        in.Deaths.Int(),
			Injured:       in.Injured.Int(),
			HousesDamaged: in.HousesDamaged.Int(),
			LivestockLost: in.LivestockLost.Int(),
		}, nil
	default:
		return nil, fmt.Errorf("district %q: unknown damage source %q", in.District, in.Source)
	}
}

type compensationRequest struct {
	Districts []DamageInput          `json:"districts"`
	Canonical domain.CanonicalTotals `json:"canonical"`
}

func (a *API) handleCompensation(w http.ResponseWriter, r *http.Request) {
	var req compensationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sources := make([]domain.DamageSource, 0, len(req.Districts))
	for _, in := range req.Districts {
		src, err := in.DamageSource()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		sources = append(sources, src)
	}

	report := domain.EstimateCompensation(sources, req.Canonical, a.rates)
	a.logger.Debug("compensation estimated", "districts", len(sources), "total", report.Summary.TotalCompensation)
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (a *API) handleRates(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"rates": a.rates.Rows()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
