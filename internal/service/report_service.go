package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ReportService renders results as printable PDF documents.
type ReportService interface {
	Render(ctx context.Context, token string, w io.Writer) error
}

type reportService struct {
	results ResultService
	loc     *time.Location
	now     func() time.Time
}

func NewReportService(results ResultService, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{results: results, loc: loc, now: time.Now}
}

var levelRGB = map[string][3]int{
	"green":  {46, 160, 67},
	"yellow": {212, 160, 23},
	"red":    {200, 55, 55},
}

var levelLabel = map[string]string{
	"green":  "Adecuado",
	"yellow": "Moderado",
	"red":    "Bajo",
}

// ReportFilename is the download name for an evaluation's report.
func ReportFilename(token string) string {
	return fmt.Sprintf("evamed_resultado_%s.pdf", token)
}

func (s *reportService) Render(ctx context.Context, token string, w io.Writer) error {
	res, err := s.results.Get(ctx, token)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Resultado de evaluación psicológica"), false)
	pdf.SetAuthor("EvaMed", false)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)

	generated := s.now().In(s.loc).Format("02/01/2006 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Token %s  |  Generado %s  |  Página %d", res.Token, generated, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 10, tr("Resultado de evaluación psicológica"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Candidate
	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Candidato:", res.CandidateName)
	if res.CandidateID != nil {
		line("Cédula:", *res.CandidateID)
	}
	if res.Position != nil {
		line("Cargo:", *res.Position)
	}
	if res.Company != nil {
		line("Empresa:", *res.Company)
	}
	if res.CompletedAt != nil {
		line("Completada:", res.CompletedAt.In(s.loc).Format("02/01/2006 15:04"))
	}
	line("Respuestas:", fmt.Sprintf("%d de %d preguntas", res.AnsweredQuestions, res.TotalQuestions))
	pdf.Ln(4)

	// Verdict banner
	rgb := levelRGB[res.VerdictColor]
	pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 14, tr(fmt.Sprintf("%s  -  %.1f%%", res.Verdict, res.OverallPct)), "", 1, "C", true, 0, "")
	pdf.SetTextColor(30, 30, 30)
	pdf.Ln(6)

	// Areas
	for _, a := range res.Areas {
		rgb := levelRGB[a.Level]
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(120, 8, tr(a.Name), "B", 0, "L", false, 0, "")
		pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%.1f%%  %s", a.Pct, levelLabel[a.Level])), "B", 1, "R", false, 0, "")
		pdf.SetTextColor(30, 30, 30)

		pdf.SetFont("Arial", "", 10)
		if len(a.DimensionOrder) == 0 {
			pdf.CellFormat(0, 6, tr("Sin respuestas en esta área."), "", 1, "L", false, 0, "")
		}
		for _, key := range a.DimensionOrder {
			d := a.Dimensions[key]
			pdf.CellFormat(8, 6, "", "", 0, "L", false, 0, "")
			pdf.CellFormat(100, 6, tr(d.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, fmt.Sprintf("%.1f%%", d.Pct), "", 1, "R", false, 0, "")
		}
		if a.Description != "" {
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 5, tr(a.Description), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 4, tr("Este informe es orientativo y debe ser interpretado por un profesional calificado junto con la entrevista y demás evidencias del proceso de selección."), "", "L", false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
