package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/receipt"
)

// CompleteHandler renders the completion page from the receipt carried in
// the query string.  It makes no backend call: the receipt came from the
// booking response.
type CompleteHandler struct {
	// PublicURL is the address browsers reach this server at; it is encoded
	// in the receipt QR code.
	PublicURL string
}

func NewCompleteHandler(publicURL string) *CompleteHandler {
	return &CompleteHandler{PublicURL: publicURL}
}

func (h *CompleteHandler) Complete(c echo.Context) error {
	r, err := model.ParseReceipt(c.QueryParams())
	if err != nil {
		return notice(c, http.StatusBadRequest, "예매 정보가 올바르지 않습니다.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("예매가 완료되었습니다! (예약번호: %d) 경기 ID: %d, 좌석: %s, 가격: %d원",
			r.ReservationID, r.MatchID, r.SeatLabel, r.Price),
		"receipt":     r,
		"receipt_pdf": "/api/complete/receipt.pdf?" + r.Query().Encode(),
	})
}

// ReceiptPDF streams the printable receipt.
func (h *CompleteHandler) ReceiptPDF(c echo.Context) error {
	r, err := model.ParseReceipt(c.QueryParams())
	if err != nil {
		return notice(c, http.StatusBadRequest, "예매 정보가 올바르지 않습니다.")
	}
	pdf, err := receipt.PDF(r, receipt.Link(h.PublicURL, r))
	if err != nil {
		c.Logger().Errorf("[receipt] reservation %d: %v", r.ReservationID, err)
		return notice(c, http.StatusInternalServerError, noticeServerError)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="reservation-%d.pdf"`, r.ReservationID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
