/*
store.go - Persistence interface for company profiles

PURPOSE:
  Defines the interface between the API and the database. The only thing
  persisted is a Company profile: the market assumptions (outstanding
  shares, share price, growth rate) a caller wants to reuse across
  simulations. Grants and simulation results are computed per request and
  never stored.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (production)
  - generic/store/memory.go: In-memory for testing

EXAMPLE:
  store, _ := sqlite.New("./equity.db")
  err := store.SaveCompany(ctx, company)
  if errors.Is(err, generic.ErrDuplicateCompany) {
      // ID already taken
  }

SEE ALSO:
  - types.go: Company type
  - api/companies.go: HTTP endpoints using CompanyStore
*/
package generic

import "context"

// =============================================================================
// COMPANY STORE - Interface for company profile persistence
// =============================================================================

type CompanyStore interface {
	// SaveCompany inserts a new profile. Returns ErrDuplicateCompany if the ID exists.
	SaveCompany(ctx context.Context, c Company) error

	// GetCompany returns ErrCompanyNotFound when the ID is unknown.
	GetCompany(ctx context.Context, id CompanyID) (*Company, error)

	// ListCompanies returns all profiles ordered by name.
	ListCompanies(ctx context.Context) ([]Company, error)

	// DeleteCompany returns ErrCompanyNotFound when the ID is unknown.
	DeleteCompany(ctx context.Context, id CompanyID) error
}
