package infra

// pdf.go — Stock movement report generation using go-pdf/fpdf.
// Produces a paginated A4 landscape document with:
//   - Title and covered date range
//   - Column headers repeated on every page
//   - One row per movement (date, product, variant, SKU, type, quantity, reference)
//   - Generation timestamp in the footer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DanielShofela/Stock/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateMovementReportPDF renders the movements into a PDF file under
// storagePath (created if needed) and returns the absolute path of the file.
// The file name embeds the covered date range so exports stay distinguishable.
func GenerateMovementReportPDF(movements []model.StockMovement, from, to time.Time, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("rapport_stock_%s_%s.pdf", from.Format("2006-01-02"), to.Format("2006-01-02"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)

	// Core fonts are cp1252; accented labels and cached names must be
	// translated or they render garbled.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// Column widths as fractions of the content width
	colW := []float64{
		contentW * 0.13, // date
		contentW * 0.22, // product
		contentW * 0.16, // variant
		contentW * 0.12, // sku
		contentW * 0.10, // type
		contentW * 0.08, // quantity
		contentW * 0.19, // reference
	}
	headers := []string{"Date", "Produit", "Variante", "SKU", "Type", "Qté", "Référence"}

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(contentW, 8, "Rapport de mouvements de stock", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		rangeLabel := fmt.Sprintf("Du %s au %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
		pdf.CellFormat(contentW, 6, rangeLabel, "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(235, 235, 235)
		for i, h := range headers {
			align := "L"
			if i == 5 {
				align = "R"
			}
			pdf.CellFormat(colW[i], 6, tr(h), "1", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.SetHeaderFunc(writeHeader)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 7)
		footer := fmt.Sprintf("Généré le %s - page %d", time.Now().Format("02/01/2006 15:04"), pdf.PageNo())
		pdf.CellFormat(contentW, 5, tr(footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	truncate := func(s string, max int) string {
		r := []rune(s)
		if len(r) <= max {
			return s
		}
		return string(r[:max-1]) + "…"
	}

	for _, mv := range movements {
		ref := ""
		if mv.Reference != nil {
			ref = *mv.Reference
		}
		cells := []string{
			mv.CreatedAt.Format("02/01/2006 15:04"),
			truncate(mv.ProductNameCache, 34),
			truncate(mv.VariantNameCache, 24),
			truncate(mv.SKUCache, 18),
			mv.MovementType,
			fmt.Sprintf("%d", mv.Quantity),
			truncate(ref, 30),
		}
		for i, c := range cells {
			align := "L"
			if i == 5 {
				align = "R"
			}
			pdf.CellFormat(colW[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Total: %d mouvements", len(movements)), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
