package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/gcsuploader"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/dvloznov/finance-ledger/internal/service"
	"github.com/spf13/cobra"
)

// newStorageService opens the GCS client used by import and upload.
var newStorageService = func(ctx context.Context, maxSize int64) (gcsuploader.StorageService, error) {
	return gcsuploader.NewGCSStorageService(ctx, maxSize)
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|gs://bucket/object>",
		Short: "Import transactions from a CSV file",
		Long: `Import transactions from a CSV file with the header
title,type,value,category. The file may be local or stored in GCS.
Nothing is written when any row is invalid.

Example:
  ledgerctl import ./statement.csv
  ledgerctl import gs://my-bucket/imports/statement.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, cfg *config.Config, svc *service.TransactionService) error {
				raw, err := readImportFile(ctx, cfg, args[0])
				if err != nil {
					return err
				}

				txs, err := svc.ImportBytes(ctx, raw)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions\n", len(txs))
				return nil
			})
		},
	}
}

func readImportFile(ctx context.Context, cfg *config.Config, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "gs://") {
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return raw, nil
	}

	storageSvc, err := newStorageService(ctx, cfg.Server.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	defer storageSvc.Close()

	return storageSvc.FetchFromGCS(ctx, source)
}

func newUploadCmd(opts *options) *cobra.Command {
	var bucket string

	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a CSV file to GCS for asynchronous import",
		Long: `Upload a local CSV file to the configured GCS bucket and print its
gs:// URI, which can be submitted to POST /api/imports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if bucket == "" {
				bucket = cfg.GCS.Bucket
			}
			if bucket == "" {
				return fmt.Errorf("no bucket: set --bucket or GCS_BUCKET")
			}

			log := opts.newLogger(cfg)
			ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context(), log), 5*time.Minute)
			defer cancel()

			storageSvc, err := newStorageService(ctx, 0)
			if err != nil {
				return err
			}
			defer storageSvc.Close()

			objectName := gcsuploader.ImportObjectName(args[0], time.Now())
			if err := storageSvc.UploadFile(ctx, bucket, objectName, args[0]); err != nil {
				return err
			}

			uri := gcsuploader.URI(bucket, objectName)
			log.Info().Str("gcs_uri", uri).Msg("File uploaded")
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}

	uploadCmd.Flags().StringVar(&bucket, "bucket", "", "GCS bucket (overrides GCS_BUCKET)")

	return uploadCmd
}
