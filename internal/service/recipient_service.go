package service

import (
	"context"
	"io"
	"strings"

	"github.com/xxxsen/docshare/internal/model"
)

const markdownMimeType = "text/markdown; charset=utf-8"

// DocumentView is what an anonymous recipient sees after a successful resolve.
type DocumentView struct {
	Document    *model.Document   `json:"document"`
	AccessLevel model.AccessLevel `json:"access_level"`
	CanDownload bool              `json:"can_download"`
	SharedBy    string            `json:"shared_by"`
	ViewCount   int               `json:"view_count"`
	MaxViews    *int              `json:"max_views,omitempty"`
	ExpiresAt   int64             `json:"expires_at"`
}

type DocumentStream struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.ReadCloser
}

// RecipientService serves shared documents to anonymous recipients. Every
// successful call consumes one view of the link.
type RecipientService struct {
	gate      *Gatekeeper
	documents Documents
}

func NewRecipientService(gate *Gatekeeper, documents Documents) *RecipientService {
	return &RecipientService{gate: gate, documents: documents}
}

type RecipientRequest struct {
	Token     string
	Password  string
	ClientIP  string
	UserAgent string
}

func (r RecipientRequest) access(op model.AccessLevel) AccessRequest {
	return AccessRequest{
		Token:     r.Token,
		Password:  r.Password,
		Operation: op,
		ClientIP:  r.ClientIP,
		UserAgent: r.UserAgent,
	}
}

func (s *RecipientService) Resolve(ctx context.Context, req RecipientRequest) (*DocumentView, error) {
	grant, err := s.gate.Admit(ctx, req.access(model.AccessLevelView), nil)
	if err != nil {
		return nil, err
	}
	return &DocumentView{
		Document:    grant.Document,
		AccessLevel: grant.Link.AccessLevel,
		CanDownload: grant.Link.AccessLevel.Allows(model.AccessLevelDownload),
		SharedBy:    grant.Document.OwnerName,
		ViewCount:   grant.ViewNumber,
		MaxViews:    grant.Link.MaxViews,
		ExpiresAt:   grant.Link.ExpiresAt,
	}, nil
}

// Download returns the stored file behind the link, or the document text as
// markdown when the document has no file. The caller closes Body.
func (s *RecipientService) Download(ctx context.Context, req RecipientRequest) (*DocumentStream, error) {
	grant, err := s.gate.Admit(ctx, req.access(model.AccessLevelDownload), s.documents.Open)
	if err != nil {
		return nil, err
	}
	doc := grant.Document
	stream := &DocumentStream{Body: grant.Body}
	if doc.HasFile() {
		stream.Name = doc.FileName
		stream.MimeType = doc.MimeType
		stream.Size = doc.Size
	} else {
		stream.Name = markdownName(doc.Title)
		stream.MimeType = markdownMimeType
		stream.Size = int64(len(doc.Content))
	}
	if stream.Name == "" {
		stream.Name = doc.ID
	}
	if stream.MimeType == "" {
		stream.MimeType = "application/octet-stream"
	}
	return stream, nil
}

func markdownName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "document"
	}
	return name + ".md"
}
