// Package mocks provides mock implementations for testing the pressrun back office.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// repository and collaborator ports in internal/core. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), jobID).Return(job, nil)
package mocks

// Transactor runs service mutations inside one transaction; the mock invokes
// the callback with a nil *sql.Tx so repo mocks can assert on it.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=transactor_mock.go github.com/pressrun/backoffice/internal/core Transactor

// JobRepository covers job row persistence:
// InsertInTx, GetByID, GetForUpdateInTx, SetStatusInTx, SetReadinessInTx,
// AttachProofInTx, SaveSettlementInTx, UpdateDetailsInTx, SoftDeleteInTx
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/pressrun/backoffice/internal/core JobRepository

// ChainLinkRepository covers chain document persistence and numbering:
// FindActiveInTx, InsertInTx, NextDocumentNumberInTx, ExistsForJobInTx, CancelInTx, ListByJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=chain_link_repository_mock.go github.com/pressrun/backoffice/internal/core ChainLinkRepository

// AuditRepository covers the append-only ledger: AppendInTx, TrailForJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=audit_repository_mock.go github.com/pressrun/backoffice/internal/core AuditRepository

// OutboxRepository covers notification events:
// AppendInTx, ClaimPending, MarkDelivered, RecordFailure
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=outbox_repository_mock.go github.com/pressrun/backoffice/internal/core OutboxRepository

// PricingRuleRepository and CounterpartyRepository cover the catalog:
// GetBySizeKey, Upsert, List / Create, GetByID, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=catalog_repositories_mock.go github.com/pressrun/backoffice/internal/core PricingRuleRepository,CounterpartyRepository

// JobFileRepository covers attached deliverable files: InsertInTx, ListByJob
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_file_repository_mock.go github.com/pressrun/backoffice/internal/core JobFileRepository

// DocumentParser and BlobStore are the external collaborators used by intake.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=collaborators_mock.go github.com/pressrun/backoffice/internal/core DocumentParser,BlobStore
