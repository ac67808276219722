package http

import (
	"net/http"
	"strconv"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/moderation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ModerationHandler manages the banned word list. Writes go through a
// repository that invalidates the classifier cache.
type ModerationHandler struct {
	words      moderation.WordRepository
	classifier moderation.Classifier
	accounts   account.Repository
	log        *zap.Logger
}

func NewModerationHandler(words moderation.WordRepository, classifier moderation.Classifier, accounts account.Repository, log *zap.Logger) *ModerationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModerationHandler{words: words, classifier: classifier, accounts: accounts, log: log}
}

type bannedWordReq struct {
	Term     string `json:"term"     validate:"required,max=120"`
	Severity string `json:"severity" validate:"required,oneof=low medium high"`
	Language string `json:"language" validate:"omitempty,oneof=ar en"`
}

type checkReq struct {
	Text string `json:"text" validate:"required,max=5000"`
}

func (h *ModerationHandler) staffOnly(c echo.Context) (bool, error) {
	actor, ok, err := requireActor(c)
	if !ok {
		return false, err
	}
	a, err := h.accounts.GetByAccountID(c.Request().Context(), actor)
	if err != nil || !a.CanReview() {
		return false, c.JSON(http.StatusForbidden, ErrorResponse{Error: "actor is not allowed to moderate"})
	}
	return true, nil
}

func (h *ModerationHandler) ListWords(c echo.Context) error {
	if ok, err := h.staffOnly(c); !ok {
		return err
	}
	items, err := h.words.ListActive(c.Request().Context())
	return writeList(c, h.log, items, err)
}

func (h *ModerationHandler) AddWord(c echo.Context) error {
	if ok, err := h.staffOnly(c); !ok {
		return err
	}
	var req bannedWordReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	w := &moderation.BannedWord{
		Term:     req.Term,
		Severity: moderation.Severity(req.Severity),
		Language: req.Language,
		IsActive: true,
	}
	if w.Language == "" {
		w.Language = "ar"
	}
	if err := h.words.Create(c.Request().Context(), w); err != nil {
		h.log.Error("create banned word", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *ModerationHandler) RemoveWord(c echo.Context) error {
	if ok, err := h.staffOnly(c); !ok {
		return err
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.words.Deactivate(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// Check runs the classifier without storing anything.
func (h *ModerationHandler) Check(c echo.Context) error {
	var req checkReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	v, err := h.classifier.Analyze(c.Request().Context(), req.Text)
	if err != nil {
		h.log.Error("moderation check", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, v)
}
