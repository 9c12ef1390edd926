package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/api"
)

// callTimeout bounds every backend call a handler makes.
const callTimeout = 10 * time.Second

const noticeServerError = "요청 처리 중 오류가 발생했습니다."

// backendCtx derives the context for one backend call.  The cancel func
// must be deferred by the caller.
func backendCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), callTimeout)
}

// notice writes the JSON body every page shows as an alert.
func notice(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// apiFailure converts a gateway error into a response.  Rejections keep the
// backend's status and message; a backend that cannot be reached is a 502.
func apiFailure(c echo.Context, err error) error {
	var (
		re *api.RejectionError
		ve *api.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return notice(c, http.StatusBadRequest, ve.Message)
	case errors.As(err, &re):
		status := re.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		return notice(c, status, re.Message)
	case api.IsTransport(err):
		c.Logger().Warnf("[backend] %v", err)
		return notice(c, http.StatusBadGateway, api.Message(err))
	}
	c.Logger().Errorf("[handler] %v", err)
	return notice(c, http.StatusInternalServerError, noticeServerError)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional numeric query parameter; zero means absent.
func queryID(c echo.Context, name string) (uint64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }
