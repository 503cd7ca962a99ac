// Package bigquery implements the ledger store on BigQuery.
//
// Writes use DML statements rather than the streaming inserter so rows can be
// deleted right after they are written.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

const (
	transactionsTable = "transactions"
	categoriesTable   = "categories"

	// maxRowsPerInsert bounds the number of rows (and query parameters) per DML statement.
	maxRowsPerInsert = 500
)

// Store is the BigQuery implementation of ledger.Store. It holds a shared
// BigQuery client to avoid creating a new connection for each operation.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	now       func() time.Time
}

// NewStore creates a Store for the given project and dataset.
func NewStore(ctx context.Context, projectID, datasetID string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}
	return &Store{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		now:       time.Now,
	}, nil
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// table returns the fully qualified, quoted name of a table in the store's dataset.
func (s *Store) table(name string) string {
	return qualifiedTable(s.projectID, s.datasetID, name)
}

func qualifiedTable(projectID, datasetID, name string) string {
	return "`" + projectID + "." + datasetID + "." + name + "`"
}

// runDML runs a DML statement, waits for it and returns the number of affected rows.
func (s *Store) runDML(ctx context.Context, op string, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return 0, domain.StorageError(op+": run query", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, domain.StorageError(op+": wait for job", err)
	}
	if err := status.Err(); err != nil {
		return 0, domain.StorageError(op+": job error", err)
	}

	if status.Statistics != nil {
		if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			return qs.NumDMLAffectedRows, nil
		}
	}
	return 0, nil
}

var _ ledger.Store = (*Store)(nil)
