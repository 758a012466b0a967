package service

import (
	_ "embed"

	"github.com/go-pdf/fpdf"
)

const exportFontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// exportFonts holds the TrueType data used for PDF text. UTF-8 fonts keep
// characters outside cp1252 intact.
type exportFonts struct {
	regular []byte
	bold    []byte
}

func defaultExportFonts() exportFonts {
	return exportFonts{regular: dejaVuRegular, bold: dejaVuBold}
}

func (f exportFonts) register(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(exportFontFamily, "", f.regular)
	pdf.AddUTF8FontFromBytes(exportFontFamily, "B", f.bold)
}
