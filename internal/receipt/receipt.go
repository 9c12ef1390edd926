// Package receipt renders the printable booking receipt: a one-page PDF
// with the reservation details and a QR code pointing back at the
// completion page.
package receipt

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// QRSize is the pixel size of the embedded QR image.
const QRSize = 300

var labelPattern = regexp.MustCompile(`^(.+)블록 (.+)열 (.+)번$`)

// QRPNG encodes text as a PNG QR code.
func QRPNG(text string, size int) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}

// Link is the completion page URL a receipt's QR code points at.
func Link(baseURL string, r model.Receipt) string {
	return strings.TrimRight(baseURL, "/") + "/complete?" + r.Query().Encode()
}

// PDF renders r.  link is encoded in the QR code; an empty link encodes the
// reservation number only.
func PDF(r model.Receipt, link string) ([]byte, error) {
	if r.ReservationID == 0 {
		return nil, fmt.Errorf("receipt without reservation id")
	}
	qrText := link
	if qrText == "" {
		qrText = fmt.Sprintf("%d", r.ReservationID)
	}
	png, err := QRPNG(qrText, QRSize)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(fmt.Sprintf("Reservation %d", r.ReservationID), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, "Matchday Booking Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	imgName := fmt.Sprintf("qr_%d", r.ReservationID)
	pdf.RegisterImageOptionsReader(imgName, imgOpts, bytes.NewReader(png))
	w, _ := pdf.GetPageSize()
	pdf.ImageOptions(imgName, (w-70)/2, pdf.GetY(), 70, 70, false, imgOpts, 0, "")
	pdf.Ln(74)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.4)
	pdf.Line(15, pdf.GetY(), w-15, pdf.GetY())
	pdf.Ln(6)

	row := func(label, value string) {
		pdf.SetFont("Arial", "", 12)
		pdf.SetX(20)
		pdf.CellFormat(40, 9, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, value, "", 1, "L", false, 0, "")
	}
	row("Reservation:", fmt.Sprintf("#%d", r.ReservationID))
	row("Match:", fmt.Sprintf("#%d", r.MatchID))
	row("Seat:", SeatText(r.SeatLabel))
	row("Price:", FormatKRW(r.Price))

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// SeatText rewrites a seat label for the PDF core fonts, which carry no
// Hangul glyphs.
func SeatText(label string) string {
	if m := labelPattern.FindStringSubmatch(label); m != nil {
		return fmt.Sprintf("Block %s, Row %s, No. %s", ascii(m[1]), ascii(m[2]), ascii(m[3]))
	}
	if s := strings.TrimSpace(ascii(label)); s != "" {
		return s
	}
	return "-"
}

func ascii(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}

// FormatKRW formats an amount with thousands separators.
func FormatKRW(amount int) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + " KRW"
}
