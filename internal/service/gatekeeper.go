package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docshare/internal/model"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
	"github.com/xxxsen/docshare/internal/pkg/password"
	"github.com/xxxsen/docshare/internal/pkg/token"
	"github.com/xxxsen/docshare/internal/throttle"
)

type AccessRequest struct {
	Token     string
	Password  string
	Operation model.AccessLevel
	ClientIP  string
	UserAgent string
}

// AccessGrant is handed out once a request passed every check and consumed a view.
// Body is set only when Admit was given a PrepareFunc; the caller closes it.
type AccessGrant struct {
	Link       *model.ShareLink
	Document   *model.Document
	Body       io.ReadCloser
	ViewNumber int
}

// PrepareFunc readies the content of doc for delivery. It runs after every
// check has passed and before the view is consumed, so a failure costs no quota.
type PrepareFunc func(ctx context.Context, doc *model.Document) (io.ReadCloser, error)

// Gatekeeper decides whether a recipient request may touch the shared document.
// Checks run in a fixed order: existence, revocation, expiry, quota,
// password, access level. A view is only consumed after all of them pass.
type Gatekeeper struct {
	shares    ShareStore
	documents Documents
	accesses  AccessLog
	attempts  throttle.Limiter
	now       func() time.Time
}

func NewGatekeeper(shares ShareStore, documents Documents, accesses AccessLog, attempts throttle.Limiter) *Gatekeeper {
	if attempts == nil {
		attempts = throttle.Noop{}
	}
	return &Gatekeeper{
		shares:    shares,
		documents: documents,
		accesses:  accesses,
		attempts:  attempts,
		now:       time.Now,
	}
}

func (g *Gatekeeper) Admit(ctx context.Context, req AccessRequest, prepare PrepareFunc) (*AccessGrant, error) {
	if !token.WellFormed(req.Token) {
		return nil, appErr.ErrNotFound
	}
	fp := token.Fingerprint(req.Token)
	logger := logutil.GetLogger(ctx).With(zap.String("token_fp", fp), zap.String("op", string(req.Operation)))
	grant, err := g.admit(ctx, req, fp, prepare)
	if err != nil {
		logger.Info("share access denied", zap.Error(err))
		return nil, err
	}
	logger.Info("share access granted", zap.Int("view_number", grant.ViewNumber))
	return grant, nil
}

func (g *Gatekeeper) admit(ctx context.Context, req AccessRequest, fp string, prepare PrepareFunc) (*AccessGrant, error) {
	link, err := g.shares.GetByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	now := g.now().Unix()
	if err := link.Check(now); err != nil {
		return nil, err
	}
	if link.RequiresPassword() {
		if err := g.checkPassword(ctx, link, req.Password, fp); err != nil {
			return nil, err
		}
	}
	if !link.AccessLevel.Allows(req.Operation) {
		return nil, appErr.ErrAccessLevelDenied
	}
	doc, err := g.documents.Get(ctx, link.DocumentID)
	if err != nil {
		return nil, err
	}
	var body io.ReadCloser
	if prepare != nil {
		body, err = prepare(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("open shared document: %w", err)
		}
	}
	// The link may have been revoked, expired or exhausted since the read above.
	count, err := g.shares.ConsumeView(ctx, req.Token, now)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, err
	}
	link.ViewCount = count
	g.record(ctx, link, req, count, now)
	return &AccessGrant{Link: link, Document: doc, Body: body, ViewNumber: count}, nil
}

func (g *Gatekeeper) checkPassword(ctx context.Context, link *model.ShareLink, supplied string, key string) error {
	if supplied == "" {
		return appErr.ErrPasswordRequired
	}
	logger := logutil.GetLogger(ctx).With(zap.String("token_fp", key))
	// The attempt is reserved before bcrypt runs, so parallel guesses cannot
	// all pass a check made before any of them was counted.
	allowed, err := g.attempts.Attempt(ctx, key)
	if err != nil {
		logger.Warn("reserve password attempt failed", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return appErr.ErrTooMany
	}
	ok := false
	if len(supplied) <= password.MaxLength {
		ok, err = password.Verify(supplied, link.PasswordHash)
		if err != nil {
			return fmt.Errorf("verify share password: %w", err)
		}
	}
	if !ok {
		return appErr.ErrPasswordIncorrect
	}
	if err := g.attempts.Reset(ctx, key); err != nil {
		logger.Warn("reset password failures failed", zap.Error(err))
	}
	return nil
}

func (g *Gatekeeper) record(ctx context.Context, link *model.ShareLink, req AccessRequest, count int, now int64) {
	if g.accesses == nil {
		return
	}
	access := &model.ShareAccess{
		ID:         newID(),
		ShareToken: link.Token,
		Action:     req.Operation,
		ViewNumber: count,
		ClientIP:   req.ClientIP,
		UserAgent:  req.UserAgent,
		Ctime:      now,
	}
	if err := g.accesses.Create(ctx, access); err != nil {
		logutil.GetLogger(ctx).Warn("record share access failed", zap.Error(err))
	}
}
