package service

import (
	"context"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
)

// AuditServiceOptions groups dependencies for AuditService.
type AuditServiceOptions struct {
	Audit core.AuditRepository
}

// AuditService reads the append-only mutation ledger. Writes happen inside
// the mutating services' transactions, never here.
type AuditService struct {
	audit core.AuditRepository
}

// NewAuditService constructs a new AuditService.
func NewAuditService(opts AuditServiceOptions) *AuditService {
	return &AuditService{audit: opts.Audit}
}

// GetAuditTrail returns every audit entry for a job and its chain documents
// in chronological order. Soft-deleted jobs keep their trail readable.
func (s *AuditService) GetAuditTrail(ctx context.Context, jobID string) ([]*model.AuditEntry, error) {
	return s.audit.TrailForJob(ctx, jobID)
}
