// Package store provides CompanyStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/equity-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	companies map[generic.CompanyID]generic.Company
}

func NewMemory() *Memory {
	return &Memory{
		companies: make(map[generic.CompanyID]generic.Company),
	}
}

func (m *Memory) SaveCompany(_ context.Context, c generic.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.companies[c.ID]; ok {
		return generic.ErrDuplicateCompany
	}
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) GetCompany(_ context.Context, id generic.CompanyID) (*generic.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.companies[id]
	if !ok {
		return nil, generic.ErrCompanyNotFound
	}
	return &c, nil
}

func (m *Memory) ListCompanies(_ context.Context) ([]generic.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Company, 0, len(m.companies))
	for _, c := range m.companies {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *Memory) DeleteCompany(_ context.Context, id generic.CompanyID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.companies[id]; !ok {
		return generic.ErrCompanyNotFound
	}
	delete(m.companies, id)
	return nil
}
