/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine values are
  decimal.Decimal internally; DTOs carry float64 so any JSON client can
  read them without a decimal library.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Simulation:
    SimulationDTO, PeriodDTO, ReturnsDTO, TaxDTO, CompareDTO
    (request body is factory.ScenarioJSON)

  Catalog:
    CurveDTO, PresetDTO

  Company:
    CompanyDTO, CreateCompanyRequest

VALIDATION:
  Validation is done by the factory and the engine, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/scenario.go: ScenarioJSON request body
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/factory"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/schedule"
)

// =============================================================================
// SIMULATION
// =============================================================================

type SimulationDTO struct {
	RunID          string `json:"run_id"`
	Curve          string `json:"curve"`
	PeriodUnit     string `json:"period_unit"`
	Horizon        int    `json:"horizon"`
	ElapsedPeriods int    `json:"elapsed_periods"`
	CliffPeriods   int    `json:"cliff_periods"`

	CurrentPrice     float64 `json:"current_price"`
	FuturePrice      float64 `json:"future_price"`
	CurrentMarketCap float64 `json:"current_market_cap"`
	FutureMarketCap  float64 `json:"future_market_cap"`

	TotalUnits        float64 `json:"total_units"`
	VestedUnits       float64 `json:"vested_units"`
	VestedPercent     float64 `json:"vested_percent"`
	GrantedPercentage float64 `json:"granted_percentage"`

	Returns            ReturnsDTO  `json:"returns"`
	Tax                TaxDTO      `json:"tax"`
	Periods            []PeriodDTO `json:"periods"`
	TotalScheduleValue float64     `json:"total_schedule_value"`
}

type PeriodDTO struct {
	Index            int     `json:"index"`
	NewlyVested      float64 `json:"newly_vested"`
	CumulativeVested float64 `json:"cumulative_vested"`
	Price            float64 `json:"price"`
	Value            float64 `json:"value"`
	IsCliffPeriod    bool    `json:"is_cliff_period"`
	VestDate         string  `json:"vest_date,omitempty"`
}

type ReturnsDTO struct {
	CurrentReturn float64 `json:"current_return"`
	FutureReturn  float64 `json:"future_return"`
	CurrentValue  float64 `json:"current_value"`
	FutureValue   float64 `json:"future_value"`
	ExerciseCost  float64 `json:"exercise_cost"`
	ExerciseGain  float64 `json:"exercise_gain"`
	SaleGain      float64 `json:"sale_gain"`
}

type TaxDTO struct {
	Rule                 string  `json:"rule"`
	ExerciseTax          float64 `json:"exercise_tax"`
	SaleTax              float64 `json:"sale_tax"`
	TotalTax             float64 `json:"total_tax"`
	GrossGain            float64 `json:"gross_gain"`
	NetAfterTax          float64 `json:"net_after_tax"`
	NominalRatePercent   float64 `json:"nominal_rate_percent"`
	EffectiveRatePercent float64 `json:"effective_rate_percent"`
}

// CompareDTO holds one simulation per registered curve.
type CompareDTO struct {
	RunID   string          `json:"run_id"`
	Results []SimulationDTO `json:"results"`
}

// =============================================================================
// CATALOG
// =============================================================================

type CurveDTO struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type PresetDTO struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Scenario    factory.ScenarioJSON `json:"scenario"`
}

// =============================================================================
// COMPANY
// =============================================================================

type CompanyDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	OutstandingShares int64   `json:"outstanding_shares"`
	SharePrice        float64 `json:"share_price"`
	MarketCap         float64 `json:"market_cap"`
	AnnualGrowthRate  float64 `json:"annual_growth_rate"`
	CreatedAt         string  `json:"created_at"`
}

// CreateCompanyRequest accepts either share_price or current_market_cap.
type CreateCompanyRequest struct {
	ID                string   `json:"id,omitempty"` // Generated when empty
	Name              string   `json:"name"`
	OutstandingShares int64    `json:"outstanding_shares"`
	SharePrice        *float64 `json:"share_price,omitempty"`
	CurrentMarketCap  *float64 `json:"current_market_cap,omitempty"`
	AnnualGrowthRate  float64  `json:"annual_growth_rate"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"` // Offending input field, for 400s
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSimulationDTO(runID string, res *schedule.Result) SimulationDTO {
	periods := make([]PeriodDTO, len(res.Periods))
	for i, p := range res.Periods {
		periods[i] = PeriodDTO{
			Index:            p.Index,
			NewlyVested:      p.NewlyVested.InexactFloat64(),
			CumulativeVested: p.CumulativeVested.InexactFloat64(),
			Price:            p.Price.InexactFloat64(),
			Value:            p.Value.InexactFloat64(),
			IsCliffPeriod:    p.IsCliffPeriod,
			VestDate:         p.VestDate.String(),
		}
	}

	r, t := res.Returns, res.Tax
	return SimulationDTO{
		RunID:             runID,
		Curve:             string(res.Curve),
		PeriodUnit:        string(res.Unit),
		Horizon:           res.Horizon,
		ElapsedPeriods:    res.ElapsedPeriods,
		CliffPeriods:      res.CliffPeriods(),
		CurrentPrice:      res.CurrentPrice.InexactFloat64(),
		FuturePrice:       res.FuturePrice.InexactFloat64(),
		CurrentMarketCap:  res.CurrentMarketCap.InexactFloat64(),
		FutureMarketCap:   res.FutureMarketCap.InexactFloat64(),
		TotalUnits:        res.TotalUnits.InexactFloat64(),
		VestedUnits:       res.VestedUnits.InexactFloat64(),
		VestedPercent:     res.VestedPercent().InexactFloat64(),
		GrantedPercentage: res.GrantedPercentage.InexactFloat64(),
		Returns: ReturnsDTO{
			CurrentReturn: r.CurrentReturn.InexactFloat64(),
			FutureReturn:  r.FutureReturn.InexactFloat64(),
			CurrentValue:  r.CurrentValue.InexactFloat64(),
			FutureValue:   r.FutureValue.InexactFloat64(),
			ExerciseCost:  r.ExerciseCost.InexactFloat64(),
			ExerciseGain:  r.ExerciseGain.InexactFloat64(),
			SaleGain:      r.SaleGain.InexactFloat64(),
		},
		Tax: TaxDTO{
			Rule:                 t.Rule,
			ExerciseTax:          t.ExerciseTax.InexactFloat64(),
			SaleTax:              t.SaleTax.InexactFloat64(),
			TotalTax:             t.TotalTax.InexactFloat64(),
			GrossGain:            t.GrossGain.InexactFloat64(),
			NetAfterTax:          t.NetAfterTax.InexactFloat64(),
			NominalRatePercent:   t.NominalRatePercent.InexactFloat64(),
			EffectiveRatePercent: t.EffectiveRatePercent.InexactFloat64(),
		},
		Periods:            periods,
		TotalScheduleValue: res.TotalScheduleValue().InexactFloat64(),
	}
}

func toCompanyDTO(c generic.Company) CompanyDTO {
	m := c.MarketState()
	return CompanyDTO{
		ID:                string(c.ID),
		Name:              c.Name,
		OutstandingShares: c.OutstandingShares,
		SharePrice:        c.SharePrice.InexactFloat64(),
		MarketCap:         m.BasePrice.Mul(decimal.NewFromInt(m.OutstandingShares)).InexactFloat64(),
		AnnualGrowthRate:  c.AnnualGrowthRate.InexactFloat64(),
		CreatedAt:         c.CreatedAt.String(),
	}
}
