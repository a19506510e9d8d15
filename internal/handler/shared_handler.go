package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docshare/internal/pkg/response"
	"github.com/xxxsen/docshare/internal/service"
)

const maxUserAgentLen = 512

// SharedHandler serves anonymous recipients holding a share token.
type SharedHandler struct {
	recipients *service.RecipientService
}

func NewSharedHandler(recipients *service.RecipientService) *SharedHandler {
	return &SharedHandler{recipients: recipients}
}

func recipientRequest(c *gin.Context) service.RecipientRequest {
	ua := c.Request.UserAgent()
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}
	return service.RecipientRequest{
		Token:     c.Param("token"),
		Password:  c.Query("password"),
		ClientIP:  c.ClientIP(),
		UserAgent: ua,
	}
}

func (h *SharedHandler) Resolve(c *gin.Context) {
	view, err := h.recipients.Resolve(c.Request.Context(), recipientRequest(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.Success(c, view)
}

func (h *SharedHandler) Download(c *gin.Context) {
	stream, err := h.recipients.Download(c.Request.Context(), recipientRequest(c))
	if err != nil {
		handleError(c, err)
		return
	}
	defer stream.Body.Close()
	size := stream.Size
	if size <= 0 {
		size = -1
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, stream.MimeType, stream.Body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": stream.Name}),
	})
}
