package tutor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/conversation"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/models"
	"github.com/ayush/science-tutor/internal/store"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	templateModel   = "offline-template"
)

// DocumentStore persists archived document metadata.
type DocumentStore interface {
	Insert(ctx context.Context, doc *models.ArchivedDocument) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.ArchivedDocument, error)
	GetByID(ctx context.Context, id string) (*models.ArchivedDocument, error)
	Delete(ctx context.Context, id string) error
}

// FileStore holds the rendered HTML.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Archive exports completed documents: HTML to the file store, metadata to
// the document store.
type Archive struct {
	docs   DocumentStore
	files  FileStore
	model  string
	logger *zap.Logger
}

func NewArchive(docs DocumentStore, files FileStore, model string, l *zap.Logger) *Archive {
	return &Archive{docs: docs, files: files, model: model, logger: logger.Component(l, "archive")}
}

// ForUser returns the Archiver a user's controller writes through.
func (a *Archive) ForUser(userID string) conversation.Archiver {
	return userArchive{a: a, userID: userID}
}

type userArchive struct {
	a      *Archive
	userID string
}

func (u userArchive) ArchiveDocument(ctx context.Context, job models.DocumentJob) error {
	return u.a.store(ctx, u.userID, job)
}

func (a *Archive) store(ctx context.Context, userID string, job models.DocumentJob) error {
	key := store.DocumentKey(userID, job.ID)
	if err := a.files.Upload(ctx, key, []byte(job.ResultHTML), htmlContentType); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	model := a.model
	if job.Source == models.SourceFallback {
		model = templateModel
	}
	doc := &models.ArchivedDocument{
		UserID:      userID,
		JobID:       job.ID,
		Kind:        job.Kind,
		Topic:       job.Topic,
		Source:      job.Source,
		HTMLContent: job.ResultHTML,
		ObjectKey:   key,
		ModelUsed:   model,
	}
	id, err := a.docs.Insert(ctx, doc)
	if err != nil {
		if rmErr := a.files.Remove(ctx, key); rmErr != nil {
			a.logger.Warn("failed to remove orphaned object", zap.String("key", key), zap.Error(rmErr))
		}
		return fmt.Errorf("insert archive record: %w", err)
	}

	a.logger.Info("document archived",
		zap.String("user_id", userID),
		zap.String("doc_id", id),
		zap.String("kind", string(job.Kind)),
		zap.String("source", string(job.Source)),
	)
	return nil
}
