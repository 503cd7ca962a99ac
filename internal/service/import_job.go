package service

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/gcsuploader"
	"github.com/dvloznov/finance-ledger/internal/jobs"
	"github.com/dvloznov/finance-ledger/internal/logger"
)

// FileFetcher downloads import files by gs:// URI.
type FileFetcher interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// NewImportJobHandler returns the worker function for jobs.ImportFileJob.
// Files that can never import successfully (bad URI, missing or oversized
// object, invalid content) fail the job without retries.
func NewImportJobHandler(svc *TransactionService, fetcher FileFetcher) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		importJob, ok := job.(*jobs.ImportFileJob)
		if !ok {
			return jobs.Permanent(fmt.Errorf("unsupported job type %s", job.GetType()))
		}

		log := logger.FromContext(ctx)
		log.Info().Int("attempt", importJob.RetryCount+1).Msg("Importing file")

		raw, err := fetcher.FetchFromGCS(ctx, importJob.GCSURI)
		if err != nil {
			if errors.Is(err, gcsuploader.ErrInvalidURI) ||
				errors.Is(err, gcsuploader.ErrTooLarge) ||
				errors.Is(err, storage.ErrObjectNotExist) {
				return jobs.Permanent(err)
			}
			return fmt.Errorf("fetching %s: %w", importJob.GCSURI, err)
		}

		transactions, err := svc.ImportBytes(ctx, raw)
		if err != nil {
			if isValidationError(err) {
				return jobs.Permanent(err)
			}
			return err
		}

		importJob.ImportedCount = len(transactions)
		return nil
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidImport) ||
		errors.Is(err, domain.ErrInvalidTransactionType) ||
		errors.Is(err, domain.ErrMissingData)
}
