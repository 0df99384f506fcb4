package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/doctrove/doctrove/internal/config"
	"github.com/doctrove/doctrove/internal/database"
	"github.com/doctrove/doctrove/internal/repository"
	"github.com/doctrove/doctrove/internal/service"
	"github.com/doctrove/doctrove/internal/storage"
	"github.com/spf13/cobra"
)

// CleanupCmd returns the cleanup-failed command
func CleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup-failed",
		Short: "Delete a user's failed documents",
		Long:  "Delete every failed document for a user, including stored files",
		RunE:  runCleanup,
	}

	cmd.Flags().String("user", "", "User ID whose failed documents are removed")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		return fmt.Errorf("--user is required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)

	var store service.DocumentObjectStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		store = s3Client
	} else {
		log.Println("S3 not configured; stored files will be left behind")
		store = noopObjectStore{}
	}

	svc := service.NewDocumentService(docRepo, chunkRepo, store, allowAllTypes{}, discardQueue{})

	deleted, err := svc.DeleteFailedDocuments(ctx, userID)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	log.Printf("deleted %d failed documents for user %s", deleted, userID)
	return nil
}

type noopObjectStore struct{}

func (noopObjectStore) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	return nil
}

func (noopObjectStore) DeleteObject(ctx context.Context, key string) error {
	return nil
}

type allowAllTypes struct{}

func (allowAllTypes) Supported(mediaType string) bool { return true }

type discardQueue struct{}

func (discardQueue) Enqueue(documentID, userID string) {}
