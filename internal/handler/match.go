package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/model"
)

type MatchHandler struct {
	API *api.Client
}

func NewMatchHandler(a *api.Client) *MatchHandler { return &MatchHandler{API: a} }

type matchRow struct {
	model.Match
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ListMatches renders the match list of the index page.
func (h *MatchHandler) ListMatches(c echo.Context) error {
	ctx, cancel := backendCtx(c)
	defer cancel()

	matches, err := h.API.ListMatches(ctx)
	if err != nil {
		return apiFailure(c, err)
	}
	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, matchRow{Match: m, Title: m.Title(), Link: "/seats?match_id=" + itoa(m.ID)})
	}
	resp := echo.Map{"matches": rows, "empty": len(rows) == 0}
	if len(rows) == 0 {
		resp["notice"] = "등록된 경기가 없습니다."
	}
	return c.JSON(http.StatusOK, resp)
}
