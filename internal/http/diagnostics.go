package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	echo "github.com/labstack/echo/v4"
)

func listDiagnosticsHandler(repo repository.DiagnosticsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var level model.DiagnosticLevel
		if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("level"))); raw != "" {
			tmp := model.DiagnosticLevel(raw)
			if !tmp.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid level"})
			}
			level = tmp
		}

		rows, err := repo.List(c.Request().Context(), level, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse diagnostics list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
