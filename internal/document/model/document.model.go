package model

import "encoding/json"

type DocumentType string

const (
	TypeResume            DocumentType = "resume"
	TypeCoverLetter       DocumentType = "cover-letter"
	TypeResignationLetter DocumentType = "resignation-letter"
	TypeOtherLetter       DocumentType = "other-letter"
)

// Valid reports whether t is one of the supported document kinds.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeResume, TypeCoverLetter, TypeResignationLetter, TypeOtherLetter:
		return true
	}
	return false
}

// Document is the stored record under document:{id}. Data is the builder form
// payload and is kept verbatim.
type Document struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Type      DocumentType    `json:"type"`
	Title     string          `json:"title"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// Summary is the listing projection of a Document, without the payload.
type Summary struct {
	ID        string       `json:"id"`
	Type      DocumentType `json:"type"`
	Title     string       `json:"title"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

func (d *Document) Summary() Summary {
	return Summary{
		ID:        d.ID,
		Type:      d.Type,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type SaveDocRequest struct {
	Type  DocumentType    `json:"type"`
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data"`
	// UserID is sent by the client but ownership always comes from the token.
	UserID    string `json:"userId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type SaveDocResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
}

type DocumentRequest struct {
	DocumentID string `json:"documentId"`
}

type ListDocumentsResponse struct {
	Documents []Summary `json:"documents"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
