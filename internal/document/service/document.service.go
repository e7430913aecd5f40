package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resumekit/internal/document/model"
	"resumekit/internal/document/repository"
	"resumekit/socket"
)

// ErrValidation marks a malformed save request.
var ErrValidation = errors.New("invalid document")

// Notifier receives change events after successful writes. *socket.Hub implements it.
type Notifier interface {
	NotifyUser(userID, eventType, docID string, payload any)
}

// Renderer produces the downloadable artifact for a document.
type Renderer interface {
	Render(doc *model.Document) ([]byte, error)
}

type DocumentService struct {
	Repo     *repository.DocumentRepository
	Hub      Notifier
	Renderer Renderer
	// ServerTimestamps stamps createdAt/updatedAt on the server instead of
	// trusting the client.
	ServerTimestamps bool
	Now              func() time.Time
}

func NewDocumentService(repo *repository.DocumentRepository, hub Notifier, renderer Renderer, serverTimestamps bool) *DocumentService {
	return &DocumentService{
		Repo:             repo,
		Hub:              hub,
		Renderer:         renderer,
		ServerTimestamps: serverTimestamps,
		Now:              time.Now,
	}
}

// SaveDocument validates req and stores it as a new document owned by userID.
// Every save creates a new id.
func (s *DocumentService) SaveDocument(ctx context.Context, userID string, req model.SaveDocRequest) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	now := s.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	doc := &model.Document{
		UserID:    userID,
		Type:      req.Type,
		Title:     req.Title,
		Data:      req.Data,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	if s.ServerTimestamps || doc.CreatedAt == "" {
		doc.CreatedAt = now
	}
	if s.ServerTimestamps || doc.UpdatedAt == "" {
		doc.UpdatedAt = now
	}

	id, err := s.Repo.Save(ctx, doc)
	if err != nil {
		return "", err
	}

	s.notify(userID, socket.DocumentSavedType, id, doc.Summary())
	return id, nil
}

func (s *DocumentService) GetDocuments(ctx context.Context, userID string) ([]model.Summary, error) {
	return s.Repo.List(ctx, userID)
}

// DownloadDocument returns the document and its rendered PDF.
func (s *DocumentService) DownloadDocument(ctx context.Context, userID, docID string) (*model.Document, []byte, error) {
	if strings.TrimSpace(docID) == "" {
		return nil, nil, fmt.Errorf("%w: documentId is required", ErrValidation)
	}
	doc, err := s.Repo.Get(ctx, userID, docID)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.Renderer.Render(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("render document %s: %w", docID, err)
	}
	return doc, pdf, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, userID, docID string) error {
	if strings.TrimSpace(docID) == "" {
		return fmt.Errorf("%w: documentId is required", ErrValidation)
	}
	if err := s.Repo.Delete(ctx, userID, docID); err != nil {
		return err
	}
	s.notify(userID, socket.DocumentDeletedType, docID, nil)
	return nil
}

func (s *DocumentService) notify(userID, eventType, docID string, payload any) {
	if s.Hub == nil {
		return
	}
	s.Hub.NotifyUser(userID, eventType, docID, payload)
}

func validate(req model.SaveDocRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, req.Type)
	}
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	data := strings.TrimSpace(string(req.Data))
	if data == "" || data == "null" {
		return fmt.Errorf("%w: data is required", ErrValidation)
	}
	if !json.Valid(req.Data) {
		return fmt.Errorf("%w: data is not valid JSON", ErrValidation)
	}
	return nil
}
