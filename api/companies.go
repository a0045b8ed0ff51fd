package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/market"
)

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns all stored profiles.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Companies.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = toCompanyDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCompany returns a single profile.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.Companies.GetCompany(r.Context(), generic.CompanyID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*c))
}

// CreateCompany validates and stores a new profile.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.companyFromRequest(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Companies.SaveCompany(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}

	h.Logger.Info("company created", "company_id", c.ID, "name", c.Name)
	writeJSON(w, http.StatusCreated, toCompanyDTO(c))
}

// DeleteCompany removes a profile.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id := generic.CompanyID(chi.URLParam(r, "id"))
	if err := h.Companies.DeleteCompany(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Info("company deleted", "company_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// SimulateCompany runs the body's scenario with the market block taken from
// the profile. Market fields in the body still override the profile.
func (h *Handler) SimulateCompany(w http.ResponseWriter, r *http.Request) {
	sj, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}
	sj.Market.CompanyID = chi.URLParam(r, "id")
	h.simulate(w, r, sj)
}

func (h *Handler) companyFromRequest(req CreateCompanyRequest) (generic.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return generic.Company{}, &generic.InvalidInputError{Field: "name", Reason: "is required"}
	}

	growth, err := generic.DecimalFromFloat("annual_growth_rate", req.AnnualGrowthRate)
	if err != nil {
		return generic.Company{}, err
	}
	c := generic.Company{
		ID:                generic.CompanyID(strings.TrimSpace(req.ID)),
		Name:              name,
		OutstandingShares: req.OutstandingShares,
		AnnualGrowthRate:  growth,
		CreatedAt:         generic.Today(),
	}
	if c.ID == "" {
		c.ID = generic.CompanyID(h.newID())
	}

	switch {
	case req.SharePrice != nil:
		if c.SharePrice, err = generic.DecimalFromFloat("share_price", *req.SharePrice); err != nil {
			return generic.Company{}, err
		}
	case req.CurrentMarketCap != nil && req.OutstandingShares > 0:
		marketCap, err := generic.DecimalFromFloat("current_market_cap", *req.CurrentMarketCap)
		if err != nil {
			return generic.Company{}, err
		}
		price, err := market.PriceFromMarketCap(marketCap, req.OutstandingShares)
		if err != nil {
			return generic.Company{}, &generic.InvalidInputError{
				Field: "current_market_cap", Value: marketCap.String(), Reason: "must be positive",
			}
		}
		c.SharePrice = price
	}

	if err := c.MarketState().Validate(); err != nil {
		return generic.Company{}, err
	}
	return c, nil
}
