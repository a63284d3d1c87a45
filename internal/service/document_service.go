package service

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-expense-tracker/internal/model"
	"go-expense-tracker/internal/storage"
	"go-expense-tracker/pkg/apierror"
)

const presignTTL = 60 * time.Second

// UploadFile carries one incoming multipart file, fully read into memory.
// Uploads are capped well below anything that would make buffering a problem.
type UploadFile struct {
	Name     string
	MimeType string
	Data     []byte
}

type documentStore interface {
	CreateWithLink(ctx context.Context, d model.Document, link model.DocumentLink) error
	ListBySource(ctx context.Context, userID string, sourceType string, sourceID string) ([]model.Document, error)
	FindByID(ctx context.Context, userID string, id string) (model.Document, error)
	SoftDelete(ctx context.Context, userID string, id string) error
}

type sourceChecker interface {
	FindByID(ctx context.Context, userID string, id string) (model.ExpenseEvent, error)
}

type DocumentService struct {
	docs   documentStore
	events sourceChecker
	store  storage.Store
}

func NewDocumentService(docs documentStore, events sourceChecker, store storage.Store) *DocumentService {
	return &DocumentService{docs: docs, events: events, store: store}
}

func validDocType(docType string) bool {
	switch docType {
	case model.DocTypeReceipt, model.DocTypeInvoice, model.DocTypeImage, model.DocTypePDF, model.DocTypeOther:
		return true
	}
	return false
}

// UploadMany stores each file and records it against the source entity.
// Files are processed in order; a failure aborts the batch but documents
// already stored stay stored.
func (s *DocumentService) UploadMany(ctx context.Context, userID string, sourceType string, sourceID string, docType string, files []UploadFile) ([]model.Document, error) {
	if len(files) == 0 {
		return nil, apierror.BadRequest("no files provided", "files")
	}
	if sourceType != model.SourceExpenseEvent {
		return nil, apierror.BadRequest("unsupported source type", sourceType)
	}
	if docType == "" {
		docType = model.DocTypeOther
	}
	if !validDocType(docType) {
		return nil, apierror.BadRequest("unknown document type", docType)
	}

	if _, err := s.events.FindByID(ctx, userID, sourceID); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return nil, apierror.BadRequest("source entity not found", sourceID)
		}
		return nil, err
	}

	docs := make([]model.Document, 0, len(files))
	for _, f := range files {
		doc, err := s.uploadOne(ctx, userID, sourceID, docType, f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *DocumentService) uploadOne(ctx context.Context, userID string, sourceID string, docType string, f UploadFile) (model.Document, error) {
	if strings.TrimSpace(f.Name) == "" {
		return model.Document{}, apierror.BadRequest("file name is required", "files")
	}

	result, err := s.store.Put(ctx, f.Data, storage.PutMeta{
		UserID:       userID,
		SourceID:     sourceID,
		OriginalName: f.Name,
		MimeType:     f.MimeType,
	})
	if err != nil {
		return model.Document{}, err
	}

	doc := model.Document{
		ID:             uuid.NewString(),
		UserID:         userID,
		OriginalName:   f.Name,
		MimeType:       f.MimeType,
		ByteSize:       int64(len(f.Data)),
		ChecksumSHA256: result.ChecksumSHA256,
		DocType:        docType,
		Storage:        s.store.Driver(),
		Key:            result.Key,
		CreatedAt:      time.Now().UTC(),
	}
	if ext := strings.TrimPrefix(path.Ext(f.Name), "."); ext != "" {
		lower := strings.ToLower(ext)
		doc.Ext = &lower
	}
	if result.Bucket != "" {
		doc.Bucket = &result.Bucket
	}
	if result.URL != "" {
		doc.URL = &result.URL
	}

	link := model.DocumentLink{
		DocumentID: doc.ID,
		SourceType: model.SourceExpenseEvent,
		SourceID:   sourceID,
	}

	if err := s.docs.CreateWithLink(ctx, doc, link); err != nil {
		// The object is already stored; reclaim it rather than leak it.
		bucket := ""
		if doc.Bucket != nil {
			bucket = *doc.Bucket
		}
		if delErr := s.store.Delete(ctx, bucket, doc.Key); delErr != nil {
			slog.Warn("failed to remove stored object after db error",
				"key", doc.Key, "error", delErr)
		}
		return model.Document{}, err
	}
	return doc, nil
}

func (s *DocumentService) ListBySource(ctx context.Context, userID string, sourceType string, sourceID string) ([]model.Document, error) {
	if sourceType != model.SourceExpenseEvent {
		return nil, apierror.BadRequest("unsupported source type", sourceType)
	}
	return s.docs.ListBySource(ctx, userID, sourceType, sourceID)
}

func (s *DocumentService) Get(ctx context.Context, userID string, id string) (model.Document, error) {
	doc, err := s.docs.FindByID(ctx, userID, id)
	if errors.Is(err, model.ErrDocumentNotFound) {
		return model.Document{}, apierror.NotFound("document not found", id)
	}
	return doc, err
}

// Download resolves how to serve the document: local files stream from disk,
// S3 objects redirect to a public or presigned URL.
func (s *DocumentService) Download(ctx context.Context, userID string, id string) (model.DownloadHandle, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return model.DownloadHandle{}, err
	}

	if doc.Storage == model.StorageS3 {
		if doc.URL != nil && *doc.URL != "" {
			return model.DownloadHandle{Redirect: true, URL: *doc.URL, Document: doc}, nil
		}
		bucket := ""
		if doc.Bucket != nil {
			bucket = *doc.Bucket
		}
		url, err := s.store.PresignGet(ctx, bucket, doc.Key, presignTTL)
		if err != nil {
			return model.DownloadHandle{}, err
		}
		return model.DownloadHandle{Redirect: true, URL: url, Document: doc}, nil
	}

	localPath, err := s.store.LocalPath(doc.Key)
	if err != nil {
		return model.DownloadHandle{}, err
	}
	return model.DownloadHandle{Path: localPath, Document: doc}, nil
}

// Remove soft-deletes the database row first, then tries to reclaim the
// stored object. A storage failure is logged, not surfaced: the row is
// already gone from the user's view.
func (s *DocumentService) Remove(ctx context.Context, userID string, id string) error {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.docs.SoftDelete(ctx, userID, id); err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			return apierror.NotFound("document not found", id)
		}
		return err
	}

	bucket := ""
	if doc.Bucket != nil {
		bucket = *doc.Bucket
	}
	if err := s.store.Delete(ctx, bucket, doc.Key); err != nil {
		slog.Warn("failed to delete stored object", "key", doc.Key, "error", err)
	}
	return nil
}
