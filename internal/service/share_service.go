package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docshare/internal/model"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
	"github.com/xxxsen/docshare/internal/pkg/password"
	"github.com/xxxsen/docshare/internal/pkg/token"
)

// tokenRetries bounds regeneration after a token collision on insert.
const tokenRetries = 3

type ShareOptions struct {
	PublicBaseURL  string
	MaxExpiresDays int
	MaxPasswordLen int
}

// ShareService issues share links and lets owners manage the ones they issued.
type ShareService struct {
	shares    ShareStore
	documents Documents
	accesses  AccessLog
	opts      ShareOptions
	now       func() time.Time
	newToken  func() (string, error)
}

func NewShareService(shares ShareStore, documents Documents, accesses AccessLog, opts ShareOptions) *ShareService {
	if opts.MaxExpiresDays <= 0 {
		opts.MaxExpiresDays = 365
	}
	if opts.MaxPasswordLen <= 0 || opts.MaxPasswordLen > password.MaxLength {
		opts.MaxPasswordLen = password.MaxLength
	}
	return &ShareService{
		shares:    shares,
		documents: documents,
		accesses:  accesses,
		opts:      opts,
		now:       time.Now,
		newToken:  newToken,
	}
}

type CreateShareInput struct {
	DocumentID         string            `json:"document_id"`
	OwnerID            string            `json:"owner_id"`
	AccessLevel        model.AccessLevel `json:"access_level"`
	ExpiresInDays      int               `json:"expires_in_days"`
	MaxViews           *int              `json:"max_views"`
	Password           *string           `json:"password"`
	RecipientEmailHint string            `json:"recipient_email_hint"`
}

func (in *CreateShareInput) validate(opts ShareOptions) error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.DocumentID, validation.Required, validation.Length(1, 128)),
		validation.Field(&in.OwnerID, validation.Required),
		validation.Field(&in.AccessLevel, validation.Required, validation.In(model.AccessLevelView, model.AccessLevelDownload)),
		validation.Field(&in.ExpiresInDays, validation.Required, validation.Min(1), validation.Max(opts.MaxExpiresDays)),
		validation.Field(&in.MaxViews, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&in.Password, validation.NilOrNotEmpty, validation.By(func(value interface{}) error {
			if in.Password != nil && len(*in.Password) > opts.MaxPasswordLen {
				return fmt.Errorf("must be at most %d bytes", opts.MaxPasswordLen)
			}
			return nil
		})),
		validation.Field(&in.RecipientEmailHint, validation.Length(0, 254), is.EmailFormat),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrInvalid, err)
	}
	return nil
}

type CreatedShare struct {
	ShareURL  string           `json:"share_url"`
	Token     string           `json:"token"`
	ExpiresAt int64            `json:"expires_at"`
	Share     *model.ShareLink `json:"share"`
}

func (s *ShareService) shareURL(tok string) string {
	return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/shared/" + tok
}

// Create validates in, confirms the owner owns the document and persists a
// new link. Nothing is written when any check fails.
func (s *ShareService) Create(ctx context.Context, in CreateShareInput) (*CreatedShare, error) {
	in.RecipientEmailHint = strings.TrimSpace(in.RecipientEmailHint)
	if err := in.validate(s.opts); err != nil {
		return nil, err
	}
	doc, err := s.documents.Get(ctx, in.DocumentID)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			return nil, appErr.ErrForbidden
		}
		return nil, err
	}
	if doc.UserID != in.OwnerID {
		return nil, appErr.ErrForbidden
	}
	var passwordHash string
	if in.Password != nil {
		passwordHash, err = password.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
	}
	now := s.now()
	link := &model.ShareLink{
		ID:                 newID(),
		DocumentID:         in.DocumentID,
		OwnerID:            in.OwnerID,
		AccessLevel:        in.AccessLevel,
		State:              model.ShareStateActive,
		MaxViews:           in.MaxViews,
		PasswordHash:       passwordHash,
		RecipientEmailHint: in.RecipientEmailHint,
		CreatedAt:          now.Unix(),
		ExpiresAt:          now.Add(time.Duration(in.ExpiresInDays) * 24 * time.Hour).Unix(),
	}

	logger := logutil.GetLogger(ctx).With(zap.String("share_id", link.ID), zap.String("document_id", link.DocumentID))
	insert := func() error {
		tok, err := s.newToken()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("generate share token: %w", err))
		}
		link.Token = tok
		err = s.shares.Create(ctx, link)
		if errors.Is(err, appErr.ErrConflict) {
			logger.Warn("share token collision, regenerating", zap.String("token_fp", token.Fingerprint(tok)))
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, tokenRetries), ctx)
	if err := backoff.Retry(insert, policy); err != nil {
		return nil, err
	}

	logger.Info("share link created",
		zap.String("owner_id", link.OwnerID),
		zap.String("token_fp", token.Fingerprint(link.Token)),
		zap.String("access_level", string(link.AccessLevel)),
		zap.Bool("password", link.RequiresPassword()),
		zap.Int64("expires_at", link.ExpiresAt),
	)
	return &CreatedShare{
		ShareURL:  s.shareURL(link.Token),
		Token:     link.Token,
		ExpiresAt: link.ExpiresAt,
		Share:     link,
	}, nil
}

// ShareSummary is what an owner sees about one of their links.
type ShareSummary struct {
	*model.ShareLink
	ShareURL         string `json:"share_url"`
	RequiresPassword bool   `json:"requires_password"`
	Status           string `json:"status"`
}

func (s *ShareService) summarize(link *model.ShareLink, now int64) ShareSummary {
	status := "active"
	switch link.Check(now) {
	case appErr.ErrShareRevoked:
		status = "revoked"
	case appErr.ErrShareExpired:
		status = "expired"
	case appErr.ErrShareExhausted:
		status = "exhausted"
	}
	return ShareSummary{
		ShareLink:        link,
		ShareURL:         s.shareURL(link.Token),
		RequiresPassword: link.RequiresPassword(),
		Status:           status,
	}
}

func (s *ShareService) List(ctx context.Context, ownerID, documentID string) ([]ShareSummary, error) {
	links, err := s.shares.ListByOwner(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	items := make([]ShareSummary, 0, len(links))
	for i := range links {
		items = append(items, s.summarize(&links[i], now))
	}
	return items, nil
}

func (s *ShareService) owned(ctx context.Context, ownerID, tok string) (*model.ShareLink, error) {
	link, err := s.shares.GetByToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, appErr.ErrNotFound
	}
	return link, nil
}

func (s *ShareService) Get(ctx context.Context, ownerID, tok string) (*ShareSummary, error) {
	link, err := s.owned(ctx, ownerID, tok)
	if err != nil {
		return nil, err
	}
	summary := s.summarize(link, s.now().Unix())
	return &summary, nil
}

// Revoke makes the link permanently unusable. Revoking twice is a no-op.
func (s *ShareService) Revoke(ctx context.Context, ownerID, tok string) error {
	if err := s.shares.Revoke(ctx, ownerID, tok); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("share link revoked",
		zap.String("owner_id", ownerID),
		zap.String("token_fp", token.Fingerprint(tok)),
	)
	return nil
}

func (s *ShareService) ListAccesses(ctx context.Context, ownerID, tok string, limit, offset uint) ([]model.ShareAccess, error) {
	if _, err := s.owned(ctx, ownerID, tok); err != nil {
		return nil, err
	}
	if s.accesses == nil {
		return []model.ShareAccess{}, nil
	}
	return s.accesses.ListByToken(ctx, tok, limit, offset)
}
