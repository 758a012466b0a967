package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-remix/backend/internal/mocks"
	"github.com/pageza/recipe-remix/backend/internal/model"
)

var pancakes = model.Recipe{
	Title:       "Banana Pancakes",
	Description: "Fluffy weekend pancakes",
	Ingredients: []string{"2 bananas", "2 eggs", "1 cup flour"},
	Steps:       []string{"Mash the bananas", "Whisk in the eggs", "Fry in a hot pan"},
}

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.GreaterOrEqual(t, r.NumPage(), 1)

	plain, err := r.GetPlainText()
	require.NoError(t, err)
	text, err := io.ReadAll(plain)
	require.NoError(t, err)
	return string(text)
}

func TestExporter_RenderPDF(t *testing.T) {
	exporter := NewExporter(nil, 0, nil)

	data, err := exporter.RenderPDF(pancakes)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	text := pdfText(t, data)
	for _, want := range []string{"Pancakes", "Ingredients", "Steps", "bananas", "Whisk"} {
		assert.Contains(t, text, want)
	}
}

func TestExporter_RenderPDFNonLatin(t *testing.T) {
	recipe := model.Recipe{
		Title:       "Борщ",
		Description: "Add ⅓ cup beet juice → stir",
		Ingredients: []string{"½ head cabbage", "Crème fraîche"},
		Steps:       []string{"Simmer 40 min at 90°C"},
	}

	data, err := NewExporter(nil, 0, nil).RenderPDF(recipe)
	require.NoError(t, err)

	text := pdfText(t, data)
	for _, want := range []string{"Борщ", "⅓", "→", "½", "Crème fraîche", "90°C"} {
		assert.Contains(t, text, want)
	}
}

func TestExporter_RenderPDFLongRecipe(t *testing.T) {
	recipe := model.Recipe{Title: "Stew"}
	for i := 0; i < 120; i++ {
		recipe.Steps = append(recipe.Steps, strings.Repeat("stir slowly ", 8))
	}

	data, err := NewExporter(nil, 0, nil).RenderPDF(recipe)
	require.NoError(t, err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Greater(t, r.NumPage(), 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Banana Pancakes.pdf", FileName(pancakes))
	assert.Equal(t, "a-b.pdf", objectName(model.Recipe{Title: "a/b"}))
	assert.Equal(t, "recipe.pdf", objectName(model.Recipe{Title: "  "}))
}

func TestExporter_Publish(t *testing.T) {
	t.Run("uploads and presigns", func(t *testing.T) {
		store := &mocks.MockObjectStore{}
		store.On("PutObject", mock.Anything,
			mock.MatchedBy(func(key string) bool {
				return strings.HasPrefix(key, "exports/") && strings.HasSuffix(key, "/Banana Pancakes.pdf")
			}),
			mock.MatchedBy(func(data []byte) bool { return bytes.HasPrefix(data, []byte("%PDF-")) }),
			"application/pdf").Return(nil).Once()
		store.On("GeneratePresignedURL", mock.Anything, mock.AnythingOfType("string"), 10*time.Minute).
			Return("https://bucket.s3.amazonaws.com/exports/x?sig=1", nil).Once()

		exporter := NewExporter(store, 10*time.Minute, nil)
		require.True(t, exporter.CanPublish())

		url, err := exporter.Publish(context.Background(), pancakes)
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.s3.amazonaws.com/exports/x?sig=1", url)
		store.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		store := &mocks.MockObjectStore{}
		store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied")).Once()

		_, err := NewExporter(store, time.Minute, nil).Publish(context.Background(), pancakes)
		assert.ErrorContains(t, err, "access denied")
		store.AssertNotCalled(t, "GeneratePresignedURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no storage configured", func(t *testing.T) {
		exporter := NewExporter(nil, 0, nil)
		assert.False(t, exporter.CanPublish())
		_, err := exporter.Publish(context.Background(), pancakes)
		assert.ErrorIs(t, err, ErrExportStorageDisabled)
	})
}
