package api

import (
	"context"
	"strings"
	"time"

	models "github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
	"github.com/toi500/Hyper-Alpha-Arena/internal/usecase"
	xhttp "github.com/toi500/Hyper-Alpha-Arena/pkg/http"
	xlogger "github.com/toi500/Hyper-Alpha-Arena/pkg/logger"
	"github.com/toi500/Hyper-Alpha-Arena/pkg/util"

	"github.com/labstack/echo/v4"
)

// FlowEchoHandler exposes the flow indicator engine over HTTP.
type FlowEchoHandler struct {
	logger  *xlogger.Logger
	flow    *usecase.FlowIndicators
	timeout time.Duration
}

func NewFlowEchoHandler(logger *xlogger.Logger, flow *usecase.FlowIndicators, timeout time.Duration) *FlowEchoHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FlowEchoHandler{logger: logger, flow: flow, timeout: timeout}
}

func (h *FlowEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/flow", h.Flow)
}

// Flow computes the requested flow indicators for one symbol and period.
// The `at` query param optionally pins the evaluation time (RFC3339 or
// unix seconds/milliseconds) for reproducible reads.
func (h *FlowEchoHandler) Flow(c echo.Context) error {
	req := &models.FlowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var atMS int64
	if req.At != "" {
		t, ok := util.ParseTime(req.At)
		if !ok {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_INVALID_TIME",
				Field:   "at",
				Message: "at must be RFC3339 or a unix timestamp",
			}})
		}
		atMS = t.UnixMilli()
	}

	indicators := splitIndicators(req.Indicators)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res := h.flow.GetFlowIndicatorsForPrompt(ctx, req.Symbol, req.Period, indicators, atMS)
	return xhttp.SuccessResponse(c, res)
}

func splitIndicators(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
