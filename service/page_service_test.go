package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"catalogo-armazones/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageSource struct {
	images map[string][models.ImageSlots]string
	err    error
}

func (f *fakeImageSource) ProductImages(ctx context.Context, sku string) ([models.ImageSlots]string, error) {
	if f.err != nil {
		return [models.ImageSlots]string{}, f.err
	}
	return f.images[sku], nil
}

func newTestPageService(t *testing.T, rows []models.Row, images ImageSourceInterface) (*PageService, *Ledger, string) {
	t.Helper()
	ws := NewWorkspace()
	ws.SetRows("productos.csv", rows)
	ledger := NewLedger(&fakeStatusRepository{}, nil)
	out := filepath.Join(t.TempDir(), "paginas")

	svc := NewPageService(PageServiceConfig{
		Engine:    NewEngine(nil),
		Cache:     NewTemplateCache(),
		Workspace: ws,
		Ledger:    ledger,
		Images:    images,
		OutputDir: out,
		Workers:   2,
	})
	return svc, ledger, out
}

func TestPageService_Generate(t *testing.T) {
	svc, ledger, out := newTestPageService(t, []models.Row{sampleRow()}, nil)

	res, err := svc.Generate(context.Background(), "VLE41684", [models.ImageSlots]string{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "VLE41684.html"), res.Path)
	assert.Empty(t, res.Misses)
	assert.Equal(t, models.StatusGreen, ledger.Get("VLE41684"))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	doc := parseHTML(t, string(data))
	assert.Equal(t, "VLE41684", doc.Find("#product-model").Text())
}

func TestPageService_GenerateWithOverrides(t *testing.T) {
	row := sampleRow()
	row.Images[2] = ""
	svc, _, _ := newTestPageService(t, []models.Row{row}, nil)

	res, err := svc.Generate(context.Background(), "VLE41684", [models.ImageSlots]string{"", "", "https://cdn.example.com/manual-3.jpg"})
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://cdn.example.com/manual-3.jpg")
}

func TestPageService_GenerateMissingImages(t *testing.T) {
	row := sampleRow()
	row.Images[1] = ""
	svc, ledger, out := newTestPageService(t, []models.Row{row}, nil)

	_, err := svc.Generate(context.Background(), "VLE41684", [models.ImageSlots]string{})
	assert.ErrorIs(t, err, ErrMissingImages)
	assert.Equal(t, models.StatusYellow, ledger.Get("VLE41684"))

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no file is written")
}

func TestPageService_GenerateFillsFromImageSource(t *testing.T) {
	row := sampleRow()
	row.Images = [models.ImageSlots]string{"https://sheet/1.jpg", "", ""}
	source := &fakeImageSource{images: map[string][models.ImageSlots]string{
		"VLE41684": {"https://drive/1", "https://drive/2", "https://drive/3"},
	}}
	svc, _, _ := newTestPageService(t, []models.Row{row}, source)

	res, err := svc.Generate(context.Background(), "VLE41684", [models.ImageSlots]string{})
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://sheet/1.jpg")
	assert.NotContains(t, string(data), "https://drive/1")
	assert.Contains(t, string(data), "https://drive/3")
}

func TestPageService_GenerateUnknownSKU(t *testing.T) {
	svc, _, _ := newTestPageService(t, []models.Row{sampleRow()}, nil)

	_, err := svc.Generate(context.Background(), "NOPE", [models.ImageSlots]string{})
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestPageService_GenerateMissingTemplate(t *testing.T) {
	ws := NewWorkspace()
	ws.SetRows("productos.csv", []models.Row{sampleRow()})
	svc := NewPageService(PageServiceConfig{
		Engine:       NewEngine(nil),
		Cache:        NewTemplateCache(),
		Workspace:    ws,
		Ledger:       NewLedger(&fakeStatusRepository{}, nil),
		TemplatePath: filepath.Join(t.TempDir(), "nope.html"),
		OutputDir:    t.TempDir(),
	})

	_, err := svc.Generate(context.Background(), "VLE41684", [models.ImageSlots]string{})
	assert.ErrorIs(t, err, ErrMissingTemplate)
}

func TestPageService_GenerateBatch(t *testing.T) {
	good := sampleRow()
	other := sampleRow()
	other.SKU = "RB 2398/N"
	other.Attributes[0] = "RB 2398/N"
	other.PriceNormal = "$2800"
	other.PriceDiscounted = "$2520"
	other.DiscountPercent = "-10"
	broken := sampleRow()
	broken.SKU = "CSV100"
	broken.Attributes[0] = "CSV100"
	broken.Images[0] = ""

	svc, ledger, out := newTestPageService(t, []models.Row{good, other, broken}, nil)
	summary := svc.GenerateBatch(context.Background(), []string{"VLE41684", "RB 2398/N", "CSV100", "NOPE"})

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Items, 4)

	assert.Equal(t, filepath.Join(out, "VLE41684_1.html"), summary.Items[0].Path)
	assert.Equal(t, filepath.Join(out, "RB_2398_N_2.html"), summary.Items[1].Path)
	assert.NotEmpty(t, summary.Items[2].Error)
	assert.NotEmpty(t, summary.Items[3].Error)

	assert.Equal(t, models.StatusGreen, ledger.Get("VLE41684"))
	assert.Equal(t, models.StatusGreen, ledger.Get("RB 2398/N"))
	assert.Equal(t, models.StatusRed, ledger.Get("CSV100"))
	assert.Equal(t, models.StatusRed, ledger.Get("NOPE"))

	data, err := os.ReadFile(summary.Items[1].Path)
	require.NoError(t, err)
	doc := parseHTML(t, string(data))
	assert.Equal(t, "RB 2398/N", doc.Find("#product-model").Text())
	assert.Equal(t, "$2,800.00", doc.Find("span.line-through").Text())
	assert.Equal(t, "-10%", doc.Find("span.bg-red-100").Text())
	assert.Equal(t, "$2,520.00", doc.Find("span.text-5xl").Text())
}
