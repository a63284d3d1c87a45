package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-expense-tracker/internal/config"
	"go-expense-tracker/internal/util"
	"go-expense-tracker/pkg/apierror"
)

type PutMeta struct {
	UserID       string
	SourceID     string
	OriginalName string
	MimeType     string
}

type PutResult struct {
	Key            string
	Bucket         string
	URL            string
	ChecksumSHA256 string
}

// Store is the object storage consumed by the document service. Exactly one
// of LocalPath and PresignGet is meaningful per backend; the other returns an
// error.
type Store interface {
	Driver() string
	Put(ctx context.Context, data []byte, meta PutMeta) (PutResult, error)
	Delete(ctx context.Context, bucket string, key string) error
	LocalPath(key string) (string, error)
	PresignGet(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error)
}

func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.FilesDriver {
	case "s3":
		return newS3Store(ctx, cfg)
	case "local":
		return NewLocalStore(cfg.FilesLocalBase, cfg.MaxUploadSize)
	default:
		return nil, fmt.Errorf("unknown files driver %q", cfg.FilesDriver)
	}
}

// buildKey derives the object key: one folder per owner, one per source
// entity, a fresh uuid per file so uploads never collide.
func buildKey(meta PutMeta) string {
	ext := strings.TrimPrefix(path.Ext(util.SanitizeFilename(meta.OriginalName)), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return meta.UserID + "/" + meta.SourceID + "/" + name
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func checkSize(data []byte, maxBytes int64, name string) error {
	if int64(len(data)) > maxBytes {
		return apierror.New("FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds the %dMB limit", maxBytes/(1024*1024)),
			name, http.StatusBadRequest)
	}
	return nil
}
