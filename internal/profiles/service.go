// Package profiles manages the own-company profile that extraction uses to
// recognise outgoing invoices.
package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
	"github.com/joseph-ayodele/invoice-tracker/internal/nlp"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// Service handles company profile business logic and caches the current
// profile for the extraction hot path.
type Service struct {
	repo   repository.CompanyRepository
	logger *slog.Logger

	mu     sync.RWMutex
	cached *nlp.CompanyProfile
}

// NewService creates a new company profile service.
func NewService(repo repository.CompanyRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// UpdateCompanyRequest represents company profile update parameters.
type UpdateCompanyRequest struct {
	Name       string `json:"name" yaml:"name"`
	Street     string `json:"street" yaml:"street"`
	PostalCode string `json:"postal_code" yaml:"postal_code"`
	City       string `json:"city" yaml:"city"`
	TaxID      string `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
}

// Get returns the stored company profile.
func (s *Service) Get(ctx context.Context) (*entity.Company, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update validates and stores the company profile, then refreshes the cache.
func (s *Service) Update(ctx context.Context, req UpdateCompanyRequest) (*entity.Company, error) {
	company := &entity.Company{
		Name:       strings.TrimSpace(req.Name),
		Street:     strings.TrimSpace(req.Street),
		PostalCode: strings.TrimSpace(req.PostalCode),
		City:       strings.TrimSpace(req.City),
		TaxID:      strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(req.TaxID), " ", "")),
	}

	v := common.NewValidator().
		Field("name", company.Name, common.Required, common.MaxLength(200)).
		Field("street", company.Street, common.MaxLength(200)).
		Field("postal_code", company.PostalCode, common.PostalCode).
		Field("city", company.City, common.MaxLength(120)).
		Field("tax_id", company.TaxID, common.MaxLength(20))
	if err := v.Err(); err != nil {
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, company)
	if err != nil {
		return nil, common.Internal("failed to save company profile", err)
	}
	s.store(toProfile(saved))

	s.logger.Info("company profile updated", "name", saved.Name, "city", saved.City)
	return saved, nil
}

// Profile returns the cached profile, loading it on first use. A missing
// profile is not an error: extraction then runs without own company matching.
func (s *Service) Profile(ctx context.Context) (*nlp.CompanyProfile, error) {
	s.mu.RLock()
	p := s.cached
	s.mu.RUnlock()
	if p != nil {
		return p, nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the profile from storage into the cache.
func (s *Service) Refresh(ctx context.Context) (*nlp.CompanyProfile, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		if common.CodeOf(err) == common.CodeNotFound {
			s.logger.Warn("company profile missing, own company matching disabled")
			return nil, nil
		}
		return nil, err
	}
	p := toProfile(c)
	s.store(p)
	return p, nil
}

func (s *Service) store(p *nlp.CompanyProfile) {
	s.mu.Lock()
	s.cached = p
	s.mu.Unlock()
}

// ImportFile reads a YAML company profile and stores it.
func (s *Service) ImportFile(ctx context.Context, path string) (*entity.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read company profile %s: %w", path, err)
	}
	var req UpdateCompanyRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, common.InvalidArgumentf("parse company profile %s: %v", path, err)
	}
	s.logger.Info("importing company profile", "path", path)
	return s.Update(ctx, req)
}

// ExportYAML renders the stored profile in the ImportFile format.
func (s *Service) ExportYAML(ctx context.Context) ([]byte, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(UpdateCompanyRequest{
		Name:       c.Name,
		Street:     c.Street,
		PostalCode: c.PostalCode,
		City:       c.City,
		TaxID:      c.TaxID,
	})
}

func toProfile(c *entity.Company) *nlp.CompanyProfile {
	return &nlp.CompanyProfile{
		Name:       c.Name,
		Street:     c.Street,
		PostalCode: c.PostalCode,
		City:       c.City,
		TaxID:      c.TaxID,
	}
}
