package services

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/signintech/gopdf"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	apperrors "github.com/medirisk/assessment-client/pkg/errors"
)

const reportFontName = "DejaVu"

// defaultFontPaths covers the common distro locations for DejaVu Sans.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// ReportService renders a completed assessment into a printable PDF
// summary: provenance, outcome table and the form answers when the
// assessment came from the structured form.
type ReportService struct {
	fontPaths []string
}

// NewReportService creates a report renderer. An explicit fontPath takes
// precedence; the known DejaVu locations are tried as fallback.
func NewReportService(fontPath string) *ReportService {
	paths := make([]string, 0, len(defaultFontPaths)+1)
	if fontPath != "" {
		paths = append(paths, fontPath)
	}
	paths = append(paths, defaultFontPaths...)
	return &ReportService{fontPaths: paths}
}

// Render writes a PDF summary of one assessment to w
func (s *ReportService) Render(event *entities.AssessmentEvent, w io.Writer) error {
	if event == nil {
		return apperrors.NewValidationError("no assessment to render")
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := s.loadFont(&pdf); err != nil {
		return err
	}

	if err := pdf.SetFont(reportFontName, "", 20); err != nil {
		return err
	}
	pdf.Cell(nil, "Disease Risk Assessment Report")
	pdf.Br(30)

	if err := pdf.SetFont(reportFontName, "", 12); err != nil {
		return err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", event.CreatedAt.Format(time.RFC1123)))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Assessment: %s", event.ID))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Mode: %s", modeLabel(event.Mode)))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Disease context: %s", event.Disease))
	pdf.Br(25)

	if err := pdf.SetFont(reportFontName, "", 14); err != nil {
		return err
	}
	pdf.Cell(nil, "Risk findings:")
	pdf.Br(15)

	if err := pdf.SetFont(reportFontName, "", 11); err != nil {
		return err
	}
	if len(event.Outcomes) == 0 {
		pdf.Cell(nil, "- No findings recorded.")
		pdf.Br(15)
	}
	for _, outcome := range event.Outcomes {
		line := fmt.Sprintf("- %s: %.1f%% (%s)", outcome.Disease, outcome.RiskScore, outcome.RiskLevel)
		pdf.Cell(nil, line)
		pdf.Br(12)
		if outcome.Explanation != "" {
			lines, _ := pdf.SplitText("  "+outcome.Explanation, 500)
			for _, l := range lines {
				pdf.Cell(nil, l)
				pdf.Br(12)
			}
		}
		pdf.Br(5)
	}
	pdf.Br(15)

	if len(event.Answers) > 0 {
		if err := pdf.SetFont(reportFontName, "", 14); err != nil {
			return err
		}
		pdf.Cell(nil, "Submitted answers:")
		pdf.Br(15)

		if err := pdf.SetFont(reportFontName, "", 11); err != nil {
			return err
		}
		names := make([]string, 0, len(event.Answers))
		for name := range event.Answers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pdf.Cell(nil, fmt.Sprintf("- %s: %s", name, event.Answers[name]))
			pdf.Br(12)
		}
	}

	pdf.SetY(800)
	if err := pdf.SetFont(reportFontName, "", 9); err != nil {
		return err
	}
	pdf.Cell(nil, "Generated locally. Not a medical diagnosis.")

	if _, err := pdf.WriteTo(w); err != nil {
		return apperrors.NewInternalError("failed to write PDF", err)
	}
	return nil
}

func (s *ReportService) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont(reportFontName, path); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return apperrors.NewInternalError("no usable TTF font found for report rendering", lastErr)
}

func modeLabel(mode entities.AssessmentMode) string {
	switch mode {
	case entities.ModeChat:
		return "Conversational assessment"
	case entities.ModeForm:
		return "Structured form assessment"
	default:
		return string(mode)
	}
}
