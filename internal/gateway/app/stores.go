package app

import (
	"fmt"
	"log"
	"strings"

	"podscript/internal/gateway/config"
	"podscript/internal/gateway/repository/blob"
	"podscript/internal/gateway/repository/record"
)

type gatewayStores struct {
	blobs   blob.Store
	records record.Store
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	blobs, err := initBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	records, err := initRecordStore(cfg)
	if err != nil {
		return nil, err
	}
	return &gatewayStores{blobs: blobs, records: records}, nil
}

func initBlobStore(cfg *config.Config) (blob.Store, error) {
	var origin blob.Store
	if cfg.Blob.CanUseS3() {
		s3Store, err := blob.NewS3Store(blob.S3Config{
			Endpoint:  cfg.Blob.Endpoint,
			Region:    cfg.Blob.Region,
			AccessKey: cfg.Blob.AccessKey,
			SecretKey: cfg.Blob.SecretKey,
			Bucket:    cfg.Blob.Bucket,
			UseSSL:    cfg.Blob.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize script s3 store: %w", err)
		}
		log.Printf("blob store: s3 bucket=%s endpoint=%s", cfg.Blob.Bucket, cfg.Blob.Endpoint)
		origin = s3Store
	} else {
		if cfg.Blob.Enabled {
			log.Printf("blob store: using in-memory fallback (s3 config incomplete)")
		}
		origin = blob.NewMemoryStore()
	}
	return blob.NewCachedStore(origin, cfg.CacheSize)
}

func initRecordStore(cfg *config.Config) (record.Store, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		store, err := record.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize record store: %w", err)
		}
		log.Printf("record store: postgres")
		return store, nil
	}
	log.Printf("record store: using in-memory fallback (DATABASE_URL not set)")
	return record.NewMemoryStore(), nil
}
