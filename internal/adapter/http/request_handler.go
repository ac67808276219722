package http

import (
	"net/http"
	"time"

	requestDomain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/workflow"
	"ibb-guide/internal/usecase/request"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RequestHandler struct {
	uc  *request.Usecase
	log *zap.Logger
}

func NewRequestHandler(uc *request.Usecase, log *zap.Logger) *RequestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RequestHandler{uc: uc, log: log}
}

type submitReq struct {
	RequestType string         `json:"request_type" validate:"omitempty,oneof=UPDATE_INFO ADD_PLACE VERIFY_ESTABLISHMENT UPGRADE_PARTNER"`
	TargetKind  string         `json:"target_kind"  validate:"required,oneof=listing partner"`
	TargetID    string         `json:"target_id"    validate:"required"`
	Changes     map[string]any `json:"changes"`
	Description string         `json:"description"  validate:"max=2000"`
}

type requestDecisionReq struct {
	Reason     string `json:"reason"     validate:"max=2000"`
	Conditions string `json:"conditions" validate:"max=2000"`
	// Deadline is a calendar date for conditional approvals.
	Deadline string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

func (h *RequestHandler) Submit(c echo.Context) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var req submitReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.SubmitUpdateRequest(c.Request().Context(), request.SubmitInput{
		UserID:      actor,
		RequestType: req.RequestType,
		TargetKind:  req.TargetKind,
		TargetID:    req.TargetID,
		Changes:     req.Changes,
		Description: req.Description,
		Origin:      originOf(c),
	})
	return writeResult(c, h.log, res, err)
}

// Decide handles POST /requests/:id/:action.
func (h *RequestHandler) Decide(c echo.Context) error {
	action, err := workflow.ParseAction(c.Param("action"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var req requestDecisionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	in := request.DecideInput{
		RequestID:  c.Param("id"),
		ReviewerID: actor,
		Reason:     req.Reason,
		Conditions: req.Conditions,
		Origin:     originOf(c),
	}
	if req.Deadline != "" {
		d, _ := time.Parse(time.DateOnly, req.Deadline)
		in.Deadline = &d
	}

	ctx := c.Request().Context()
	var res *workflow.Result
	switch action {
	case workflow.ActionApprove:
		res, err = h.uc.ApproveRequest(ctx, in)
	case workflow.ActionReject:
		res, err = h.uc.RejectRequest(ctx, in)
	case workflow.ActionRequestInfo:
		res, err = h.uc.RequestInfo(ctx, in)
	case workflow.ActionConditionalApprove:
		res, err = h.uc.ConditionalApprove(ctx, in)
	}
	return writeResult(c, h.log, res, err)
}

func (h *RequestHandler) Get(c echo.Context) error {
	req, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, requestDomain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "request not found"})
	}
	if err != nil {
		h.log.Error("get request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) List(c echo.Context) error {
	status, err := statusParam(c, workflow.StatusPending)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	items, err := h.uc.ListByStatus(c.Request().Context(), status)
	return writeList(c, h.log, items, err)
}

func (h *RequestHandler) History(c echo.Context) error {
	items, err := h.uc.History(c.Request().Context(), c.Param("id"))
	return writeList(c, h.log, items, err)
}

func (h *RequestHandler) Decisions(c echo.Context) error {
	items, err := h.uc.Decisions(c.Request().Context(), c.Param("id"))
	return writeList(c, h.log, items, err)
}

// Versions handles GET /versions/:kind/:id.
func (h *RequestHandler) Versions(c echo.Context) error {
	items, err := h.uc.Versions(c.Request().Context(), c.Param("kind"), c.Param("id"))
	return writeList(c, h.log, items, err)
}
