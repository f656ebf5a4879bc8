package verification

import (
	// Go Internal Packages
	"context"
	"strings"
	"time"

	// Local Packages
	errors "receipt-verifier/errors"
	models "receipt-verifier/models"
	providers "receipt-verifier/providers"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReceiptRepository interface {
	FindByReference(ctx context.Context, reference string, bank models.Bank) (*models.VerifiedReceiptRecord, error)
	Insert(ctx context.Context, record *models.VerifiedReceiptRecord) error
}

type EventPublisher interface {
	PublishVerified(ctx context.Context, record *models.VerifiedReceiptRecord)
}

// Options carries request metadata that rides along with a verification
// attempt into the persisted record.
type Options struct {
	OrderID        string
	BranchID       string
	ManualOverride bool
	VerifiedBy     string
}

// Result is returned for an accepted receipt.
type Result struct {
	Record  *models.VerifiedReceiptRecord
	Receipt *models.CanonicalReceipt
}

// Service runs the verification pipeline: duplicate check, fetch, parse,
// normalize, ownership gate, insert, event. Each attempt is an independent
// sequence; concurrent attempts for the same receipt race safely because
// the store's unique index arbitrates at insert time.
type Service struct {
	logger    *zap.Logger
	repo      ReceiptRepository
	publisher EventPublisher
	verifiers map[models.Bank]providers.Verifier
	operator  string
	accounts  map[models.Bank]string
}

// New builds the service. accounts maps each bank to the operator's expected
// receiving-account suffix; banks without an entry skip the ownership gate.
// publisher may be nil when event publishing is disabled.
func New(logger *zap.Logger, repo ReceiptRepository, publisher EventPublisher,
	verifiers []providers.Verifier, operator string, accounts map[models.Bank]string) *Service {
	byBank := make(map[models.Bank]providers.Verifier, len(verifiers))
	for _, v := range verifiers {
		byBank[v.Bank()] = v
	}
	return &Service{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		verifiers: byBank,
		operator:  operator,
		accounts:  accounts,
	}
}

// Verify runs one attempt for the named bank. On success the canonical
// record has been persisted exactly once; on any failure nothing was
// persisted and the error's kind conveys the failure class.
func (s *Service) Verify(ctx context.Context, bank models.Bank, loc providers.Locator, opts Options) (*Result, error) {
	verifier, ok := s.verifiers[bank]
	if !ok {
		return nil, errors.E(errors.Invalid, "unsupported bank "+string(bank))
	}

	// Duplicate pre-check. Cheap rejection before any network call; the
	// unique index at insert time remains the actual guarantee.
	existing, err := s.repo.FindByReference(ctx, loc.Reference, bank)
	if err != nil {
		return nil, errors.PersistenceErr(err)
	}
	if existing != nil {
		return nil, errors.DuplicateReceiptErr(loc.Reference, string(bank), existing.VerifiedAt)
	}

	payload, err := verifier.Fetch(ctx, loc)
	if err != nil {
		s.logger.Warn("receipt fetch failed",
			zap.String("bank", string(bank)),
			zap.String("reference", loc.Reference),
			zap.Error(err))
		if errors.KindOf(err) != errors.Other {
			return nil, err
		}
		return nil, errors.ProviderUnreachableErr(string(bank), err)
	}

	fields, err := verifier.Parse(payload)
	if err != nil {
		s.logger.Warn("receipt parse failed",
			zap.String("bank", string(bank)),
			zap.String("reference", loc.Reference),
			zap.Error(err))
		return nil, err
	}

	if err := verifier.CompletenessFloor(fields); err != nil {
		return nil, errors.ParseFailureErr(string(bank), err)
	}

	receipt, err := verifier.Normalize(fields)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(bank, receipt); err != nil {
		s.logger.Warn("receipt failed ownership check",
			zap.String("bank", string(bank)),
			zap.String("reference", receipt.Reference),
			zap.String("receiverAccount", receipt.ReceiverAccount))
		return nil, err
	}

	record := &models.VerifiedReceiptRecord{
		ID:              uuid.NewString(),
		ReferenceNumber: receipt.Reference,
		Bank:            bank,
		Amount:          receipt.Amount.StringFixed(2),
		ReceiverAccount: receipt.ReceiverAccount,
		VerifiedAt:      time.Now().UTC(),
		OrderID:         opts.OrderID,
		BranchID:        opts.BranchID,
		VerifiedBy:      opts.VerifiedBy,
		ManualOverride:  opts.ManualOverride,
	}

	// A losing concurrent insert comes back as a duplicate, not an internal
	// fault; the repository maps the unique index violation for us.
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("receipt verified",
		zap.String("bank", string(bank)),
		zap.String("reference", record.ReferenceNumber),
		zap.String("amount", record.Amount),
		zap.String("verifiedBy", record.VerifiedBy))

	if s.publisher != nil {
		s.publisher.PublishVerified(ctx, record)
	}

	return &Result{Record: record, Receipt: receipt}, nil
}

// checkOwnership confirms the receiving account matches the operator's
// registered suffix for the bank. A real receipt credited elsewhere is
// rejected with a reason distinct from a parse failure.
func (s *Service) checkOwnership(bank models.Bank, receipt *models.CanonicalReceipt) error {
	suffix, ok := s.accounts[bank]
	if !ok || suffix == "" {
		return nil
	}
	if !strings.HasSuffix(receipt.ReceiverAccount, suffix) {
		return errors.OwnershipMismatchErr(s.operator)
	}
	return nil
}
