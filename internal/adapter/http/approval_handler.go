package http

import (
	"net/http"

	"ibb-guide/internal/domain/workflow"
	"ibb-guide/internal/usecase/approval"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ApprovalHandler struct {
	uc  *approval.Usecase
	log *zap.Logger
}

func NewApprovalHandler(uc *approval.Usecase, log *zap.Logger) *ApprovalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApprovalHandler{uc: uc, log: log}
}

type decisionReq struct {
	Reason string `json:"reason" validate:"max=2000"`
}

var reviewKinds = map[string]workflow.Kind{
	"partners":        workflow.KindPartner,
	"listings":        workflow.KindListing,
	"pending-changes": workflow.KindPendingChange,
}

// Decide handles POST /approvals/:kind/:id/:action, e.g.
// /approvals/partners/{id}/approve or /approvals/listings/{id}/reject.
func (h *ApprovalHandler) Decide(c echo.Context) error {
	kind, ok := reviewKinds[c.Param("kind")]
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown review queue " + c.Param("kind")})
	}
	targetID := c.Param("id")
	if targetID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	action, err := workflow.ParseAction(c.Param("action"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var req decisionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	res, err := h.uc.Decide(c.Request().Context(), kind, action, approval.DecisionInput{
		ReviewerID: actor,
		TargetID:   targetID,
		Reason:     req.Reason,
		Origin:     originOf(c),
	})
	return writeResult(c, h.log, res, err)
}

func (h *ApprovalHandler) Counts(c echo.Context) error {
	counts, err := h.uc.PendingCounts(c.Request().Context())
	if err != nil {
		h.log.Error("pending counts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *ApprovalHandler) ListPartners(c echo.Context) error {
	status, err := statusParam(c, workflow.StatusPending)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	items, err := h.uc.ListPartners(c.Request().Context(), status)
	return writeList(c, h.log, items, err)
}

func (h *ApprovalHandler) ListListings(c echo.Context) error {
	status, err := statusParam(c, workflow.StatusPending)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	items, err := h.uc.ListListings(c.Request().Context(), status)
	return writeList(c, h.log, items, err)
}
