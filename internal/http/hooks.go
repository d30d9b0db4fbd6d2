package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/notifier"
	"github.com/jmehdipour/overdue-notifier/internal/util"
	"github.com/labstack/echo/v4"
)

// EventIDHeader lets the platform supply a stable id when the body has none.
const EventIDHeader = "X-Event-ID"

// AfterSubmitter is satisfied by *notifier.Hook.
type AfterSubmitter interface {
	AfterSubmit(ctx context.Context, ev model.RecordEvent) notifier.Outcome
}

type afterSubmitResp struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// afterSubmitHandler runs the hook synchronously. Only a malformed body is
// rejected; hook failures still answer 200 so record submission is never
// blocked by the notifier.
func afterSubmitHandler(hook AfterSubmitter) echo.HandlerFunc {
	return func(c echo.Context) error {
		var ev model.RecordEvent
		if err := c.Bind(&ev); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		ev = ev.Normalize()
		if ev.Type == "" || ev.Record.Type == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing event or record type"})
		}

		if ev.ID == "" {
			ev.ID = strings.TrimSpace(c.Request().Header.Get(EventIDHeader))
		}
		if ev.ID == "" {
			ev.ID = util.New()
		}

		out := hook.AfterSubmit(c.Request().Context(), ev)

		return c.JSON(http.StatusOK, afterSubmitResp{
			EventID: ev.ID,
			Status:  out.Status.String(),
			Reason:  out.Reason.String(),
		})
	}
}
