package http

import (
	"net/http"

	"ibb-guide/internal/usecase/pendingchange"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ChangeHandler struct {
	uc  *pendingchange.Usecase
	log *zap.Logger
}

func NewChangeHandler(uc *pendingchange.Usecase, log *zap.Logger) *ChangeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChangeHandler{uc: uc, log: log}
}

type requestChangeReq struct {
	Field    string `json:"field"     validate:"required,oneof=name description"`
	NewValue string `json:"new_value" validate:"required,max=5000"`
}

// RequestChange handles POST /listings/:id/changes.
func (h *ChangeHandler) RequestChange(c echo.Context) error {
	listingID := c.Param("id")
	if listingID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var req requestChangeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	res, err := h.uc.RequestChange(c.Request().Context(), pendingchange.RequestInput{
		UserID:    actor,
		ListingID: listingID,
		Field:     req.Field,
		NewValue:  req.NewValue,
		Origin:    originOf(c),
	})
	return writeResult(c, h.log, res, err)
}

func (h *ChangeHandler) ListForListing(c echo.Context) error {
	items, err := h.uc.ListForListing(c.Request().Context(), c.Param("id"))
	return writeList(c, h.log, items, err)
}

func (h *ChangeHandler) Queue(c echo.Context) error {
	items, err := h.uc.ListQueue(c.Request().Context())
	return writeList(c, h.log, items, err)
}
