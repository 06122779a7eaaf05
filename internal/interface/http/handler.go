package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-chatbot/internal/domain/auth"
	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// SessionHeader carries the conversation id in both directions.
const SessionHeader = "X-Session-ID"

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc  faq.Service
	authSvc auth.Service
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:  faqSvc,
		authSvc: authSvc,
		logger:  logger.With("component", "http.handler"),
	}
}

// Ask resolves one user utterance inside the caller's session.
func (h *Handler) Ask(c *gin.Context) {
	var req faq.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.SessionID = strings.TrimSpace(c.GetHeader(SessionHeader))

	resp, ok, err := h.faqSvc.Ask(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "faq_failed"))
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header(SessionHeader, resp.SessionID.String())
	c.JSON(http.StatusOK, resp)
}

// Feedback records a thumbs up or down on an answered turn.
func (h *Handler) Feedback(c *gin.Context) {
	var req faq.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.SessionID = c.GetHeader(SessionHeader)
	req.TurnID = c.Param("turnId")

	if err := h.faqSvc.Feedback(c.Request.Context(), req); err != nil {
		abortWithError(c, fromAppError(err, "faq_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Escalate hands a turn over to a human operator.
func (h *Handler) Escalate(c *gin.Context) {
	req := faq.EscalateRequest{
		SessionID: c.GetHeader(SessionHeader),
		TurnID:    c.Param("turnId"),
	}
	if err := h.faqSvc.Escalate(c.Request.Context(), req); err != nil {
		abortWithError(c, fromAppError(err, "faq_failed"))
		return
	}
	c.Status(http.StatusAccepted)
}

// Trending returns the most frequently answered questions.
func (h *Handler) Trending(c *gin.Context) {
	items, err := h.faqSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err, "faq_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}

// Login exchanges operator credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "login_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reload re-reads the knowledge base and pushes it to live sessions.
func (h *Handler) Reload(c *gin.Context) {
	resp, err := h.faqSvc.Reload(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err, "faq_failed"))
		return
	}
	h.logger.Info("knowledge base reloaded by operator", "operator", currentOperator(c), "entries", resp.Entries)
	c.JSON(http.StatusOK, resp)
}

// Stats reports counters for operators.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.faqSvc.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err, "faq_failed"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
