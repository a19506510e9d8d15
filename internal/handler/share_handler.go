package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docshare/internal/model"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
	"github.com/xxxsen/docshare/internal/pkg/response"
	"github.com/xxxsen/docshare/internal/service"
)

// ShareHandler serves the owner-facing share management API.
type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

type createShareRequest struct {
	DocumentID         string            `json:"document_id"`
	AccessLevel        model.AccessLevel `json:"access_level"`
	ExpiresInDays      int               `json:"expires_in_days"`
	MaxViews           *int              `json:"max_views"`
	Password           *string           `json:"password"`
	RecipientEmailHint string            `json:"recipient_email_hint"`
}

func (h *ShareHandler) Create(c *gin.Context) {
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: malformed body", appErr.ErrInvalid))
		return
	}
	if req.AccessLevel == "" {
		req.AccessLevel = model.AccessLevelView
	}
	created, err := h.shares.Create(c.Request.Context(), service.CreateShareInput{
		DocumentID:         req.DocumentID,
		OwnerID:            getUserID(c),
		AccessLevel:        req.AccessLevel,
		ExpiresInDays:      req.ExpiresInDays,
		MaxViews:           req.MaxViews,
		Password:           req.Password,
		RecipientEmailHint: req.RecipientEmailHint,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, created)
}

func (h *ShareHandler) List(c *gin.Context) {
	items, err := h.shares.List(c.Request.Context(), getUserID(c), c.Query("document_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *ShareHandler) Get(c *gin.Context) {
	item, err := h.shares.Get(c.Request.Context(), getUserID(c), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shares.Revoke(c.Request.Context(), getUserID(c), c.Param("token")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"revoked": true})
}

func (h *ShareHandler) Accesses(c *gin.Context) {
	limit := queryUint(c, "limit", 50, 200)
	offset := queryUint(c, "offset", 0, 0)
	items, err := h.shares.ListAccesses(c.Request.Context(), getUserID(c), c.Param("token"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}
