package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/logger"
	"github.com/pageza/recipe-remix/backend/internal/model"
)

// ErrExportStorageDisabled is returned by Publish when no bucket is configured
var ErrExportStorageDisabled = errors.New("export storage is not configured")

// Exporter renders recipes as PDF documents and optionally publishes them
type Exporter struct {
	store  ObjectStore
	urlTTL time.Duration
	fonts  exportFonts
	logger *zap.Logger
}

// NewExporter creates an Exporter. store may be nil, in which case only
// RenderPDF is available.
func NewExporter(store ObjectStore, urlTTL time.Duration, log *zap.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &Exporter{store: store, urlTTL: urlTTL, fonts: defaultExportFonts(), logger: log}
}

// CanPublish reports whether Publish has somewhere to upload to
func (e *Exporter) CanPublish() bool {
	return e.store != nil
}

// FileName is the download name for a recipe document
func FileName(recipe model.Recipe) string {
	return recipe.Title + ".pdf"
}

// RenderPDF lays out one recipe: title, description, ingredient bullets and numbered steps
func (e *Exporter) RenderPDF(recipe model.Recipe) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(recipe.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	e.fonts.register(pdf)
	pdf.AddPage()

	pdf.SetFont(exportFontFamily, "B", 22)
	pdf.MultiCell(0, 10, recipe.Title, "", "L", false)
	pdf.Ln(2)

	if recipe.Description != "" {
		pdf.SetFont(exportFontFamily, "", 12)
		pdf.MultiCell(0, 6, recipe.Description, "", "L", false)
	}

	heading := func(text string) {
		pdf.Ln(4)
		pdf.SetFont(exportFontFamily, "B", 16)
		pdf.MultiCell(0, 8, text, "", "L", false)
		pdf.SetFont(exportFontFamily, "", 12)
	}

	heading("Ingredients")
	for _, ingredient := range recipe.Ingredients {
		pdf.MultiCell(0, 6, "• "+ingredient, "", "L", false)
	}

	heading("Steps")
	for i, step := range recipe.Steps {
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, step), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Publish renders the recipe, uploads it and returns a presigned download URL
func (e *Exporter) Publish(ctx context.Context, recipe model.Recipe) (string, error) {
	if e.store == nil {
		return "", ErrExportStorageDisabled
	}

	data, err := e.RenderPDF(recipe)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%s/%s", uuid.New().String(), objectName(recipe))
	if err := e.store.PutObject(ctx, key, data, "application/pdf"); err != nil {
		return "", fmt.Errorf("failed to publish export: %w", err)
	}

	url, err := e.store.GeneratePresignedURL(ctx, key, e.urlTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign export: %w", err)
	}

	e.logger.Info("[Exporter] published recipe pdf",
		zap.String("title", recipe.Title),
		zap.String("key", key))
	return url, nil
}

// objectName is FileName made safe for an object key
func objectName(recipe model.Recipe) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, strings.TrimSpace(recipe.Title))
	if name == "" {
		name = "recipe"
	}
	return name + ".pdf"
}
