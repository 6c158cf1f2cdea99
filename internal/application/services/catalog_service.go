package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/medirisk/assessment-client/internal/domain/providers"
)

// CatalogService resolves the set of diseases with uploaded training data.
// Each call re-fetches; there is no invalidation to manage.
type CatalogService struct {
	gateway providers.AssessmentGateway
}

// NewCatalogService creates a new catalog service
func NewCatalogService(gateway providers.AssessmentGateway) *CatalogService {
	return &CatalogService{gateway: gateway}
}

// ListDiseases returns the available disease identifiers in server order.
// A transport failure is logged and collapsed into an empty list: no
// datasets is itself a valid, displayable state.
func (s *CatalogService) ListDiseases(ctx context.Context) []string {
	diseases, err := s.gateway.ListDiseases(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch disease catalog")
		return []string{}
	}
	return diseases
}
