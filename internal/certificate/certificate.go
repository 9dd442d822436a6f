// Package certificate renders the downloadable visit certificate PDF.
package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/pkordes/museo-companion/internal/domain"
)

// ErrNotCompleted is returned for itineraries that are not completed yet.
var ErrNotCompleted = fmt.Errorf("%w: itinerary is not completed", domain.ErrConflict)

// Certificate is the content printed on a visit certificate.
type Certificate struct {
	VisitorName string
	Itinerary   domain.Itinerary
	// LinkURL is encoded in the QR code; usually the itinerary's public page.
	LinkURL string
}

// FromItinerary builds a Certificate, rejecting itineraries that are not
// completed.
func FromItinerary(visitorName string, it domain.Itinerary, linkURL string) (Certificate, error) {
	if it.Status != domain.ItineraryCompleted {
		return Certificate{}, ErrNotCompleted
	}
	return Certificate{VisitorName: visitorName, Itinerary: it, LinkURL: linkURL}, nil
}

// Filename is the suggested download name.
func (c Certificate) Filename() string {
	return fmt.Sprintf("certificate-%d.pdf", c.Itinerary.ID)
}

// Render writes the certificate as a single A4 page.
func Render(w io.Writer, c Certificate) error {
	if c.LinkURL == "" {
		return errors.New("certificate.Render: missing link URL")
	}
	qrPNG, err := qrcode.Encode(c.LinkURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("certificate.Render: qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Visit certificate", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, "Certificate of Visit", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, tr(c.VisitorName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "completed the museum itinerary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 15)
	pdf.CellFormat(0, 10, tr(title(c.Itinerary)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	if fin := c.Itinerary.FinishedAt; fin != nil {
		pdf.CellFormat(0, 7, "Completed on "+fin.Format("2 January 2006"), "", 1, "C", false, 0, "")
	}
	if start, fin := c.Itinerary.StartedAt, c.Itinerary.FinishedAt; start != nil && fin != nil && fin.After(*start) {
		pdf.CellFormat(0, 7, "Time in the museum: "+duration(fin.Sub(*start)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	visited, skipped := 0, 0
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Areas visited")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	for _, s := range c.Itinerary.Stops {
		switch s.Status() {
		case domain.StopVisited:
			visited++
			pdf.Cell(0, 6, tr(fmt.Sprintf("%d. %s", s.Order, areaName(s))))
			pdf.Ln(6)
		case domain.StopSkipped:
			skipped++
		}
	}
	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("%d of %d areas visited, %d skipped", visited, len(c.Itinerary.Stops), skipped))

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 240, 35, 35, false, opts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("certificate.Render: %w", err)
	}
	return nil
}

func title(it domain.Itinerary) string {
	if it.Title != "" {
		return it.Title
	}
	return fmt.Sprintf("Itinerary #%d", it.ID)
}

func areaName(s domain.Stop) string {
	if s.Area != nil && s.Area.Name != "" {
		return s.Area.Name
	}
	return fmt.Sprintf("Stop %d", s.Order)
}

func duration(d time.Duration) string {
	d = d.Round(time.Minute)
	h, m := int(d.Hours()), int(d.Minutes())%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
