package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"catalogo-armazones/app/controller"
	"catalogo-armazones/models"
	"catalogo-armazones/repository"
	"catalogo-armazones/service"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSheet = "SKU;Marca;Precio normal;Precio con descuento;Porcentaje de descuento;Imagen 1;Imagen 2;Imagen 3\n" +
	"VLE41684;CLOE;$3,000.00;$2,550.00;-15%;https://cdn.example.com/v-1.jpg;https://cdn.example.com/v-2.jpg;https://cdn.example.com/v-3.jpg\n" +
	"RB2398;RAYBAN;$2,800.00;$2,520.00;-10%;https://cdn.example.com/r-1.jpg;;\n"

const testCatalog = "<html><body><main class=\"grid\">\n</main></body></html>\n"

type testEnv struct {
	handler     http.Handler
	dir         string
	outputDir   string
	catalogPath string
	ledger      *service.Ledger
	jobs        *service.JobRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:         dir,
		outputDir:   filepath.Join(dir, "paginas"),
		catalogPath: filepath.Join(dir, "catalogo.html"),
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "productos.csv"), []byte(testSheet), 0o644))
	require.NoError(t, os.WriteFile(env.catalogPath, []byte(testCatalog), 0o644))

	env.ledger = service.NewLedger(repository.NewStatusFileRepository(filepath.Join(dir, "historial.json")), nil)
	env.jobs = service.NewJobRegistry(nil)
	engine := service.NewEngine(nil)
	workspace := service.NewWorkspace()
	templates := service.NewTemplateCache()
	catalog := service.NewCatalogService(nil)

	pages := service.NewPageService(service.PageServiceConfig{
		Engine:    engine,
		Cache:     templates,
		Workspace: workspace,
		Ledger:    env.ledger,
		OutputDir: env.outputDir,
		Workers:   2,
	})
	cards := service.NewCardService(service.CardServiceConfig{
		Engine:      engine,
		Workspace:   workspace,
		Ledger:      env.ledger,
		Catalog:     catalog,
		CatalogPath: env.catalogPath,
		Workers:     2,
	})
	previews := service.NewPreviewService(cards, catalog, "", filepath.Join(dir, ".previews"), nil)

	env.handler = SetupRoutes(&Controllers{
		Sheet:      controller.NewSheetController(workspace, env.ledger, service.NewMappingLoader(nil), nil),
		Generation: controller.NewGenerationController(pages, cards, catalog, workspace, env.jobs, previews, templates, nil),
		Job:        controller.NewJobController(env.jobs, nil),
		Image:      controller.NewImageController(service.NewURLValidator(time.Second, 2, nil), workspace, nil, nil),
		Status:     controller.NewStatusController(env.ledger, nil),
	}, nil)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) loadSheet(t *testing.T) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"path": filepath.Join(e.dir, "productos.csv")})
	require.NoError(t, err)
	rec := e.do(t, http.MethodPost, "/api/sheet", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRowsRequireSheet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/rows", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/pages/VLE41684", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/pages/batch", `{"skus":["VLE41684"]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoadSheetErrors(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/sheet", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/sheet", `{"path":`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/sheet", `{"path":"/nope/productos.csv"}`).Code)
}

func TestListRows(t *testing.T) {
	env := newTestEnv(t)
	env.loadSheet(t)

	rec := env.do(t, http.MethodGet, "/api/rows", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, filepath.Join(env.dir, "productos.csv"), rec.Header().Get("X-Sheet-Path"))

	rows := decode[[]controller.RowView](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "VLE41684", rows[0].SKU)
	assert.Equal(t, models.StatusNormal, rows[0].Status)
	assert.Equal(t, "-15%", rows[0].ComputedDiscount)
	assert.Equal(t, []int{2, 3}, rows[1].MissingImages)
}

func TestGeneratePage(t *testing.T) {
	env := newTestEnv(t)
	env.loadSheet(t)

	rec := env.do(t, http.MethodPost, "/api/pages/VLE41684", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[models.PageResult](t, rec)
	assert.Equal(t, filepath.Join(env.outputDir, "VLE41684.html"), result.Path)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, "CLOE", doc.Find("#product-brand").Text())

	assert.Equal(t, models.StatusGreen, env.ledger.Get("VLE41684"))
}

func TestGeneratePageMissingImages(t *testing.T) {
	env := newTestEnv(t)
	env.loadSheet(t)

	rec := env.do(t, http.MethodPost, "/api/pages/RB2398", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, models.StatusYellow, env.ledger.Get("RB2398"))

	rec = env.do(t, http.MethodPost, "/api/pages/RB2398", `{"images":["","https://cdn.example.com/r-2.jpg","https://cdn.example.com/r-3.jpg"]}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusGreen, env.ledger.Get("RB2398"))

	rec = env.do(t, http.MethodPost, "/api/pages/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPagesBatchJob(t *testing.T) {
	env := newTestEnv(t)
	env.loadSheet(t)

	rec := env.do(t, http.MethodPost, "/api/pages/batch", `{"skus":["VLE41684","RB2398"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	accepted := decode[map[string]any](t, rec)
	jobID, _ := accepted["jobId"].(string)
	require.NotEmpty(t, jobID)

	env.jobs.Wait()

	rec = env.do(t, http.MethodGet, "/api/jobs/"+jobID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[service.Job](t, rec)
	assert.Equal(t, service.JobFinished, job.Status)
	require.NotNil(t, job.Summary)
	assert.Equal(t, 1, job.Summary.Succeeded)
	assert.Equal(t, 1, job.Summary.Failed)

	assert.FileExists(t, filepath.Join(env.outputDir, "VLE41684_1.html"))
	assert.Equal(t, models.StatusRed, env.ledger.Get("RB2398"))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/pages/batch", `{"skus":[" "]}`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/jobs/nope", "").Code)
}

func TestCardsBatchAndInsert(t *testing.T) {
	env := newTestEnv(t)
	env.loadSheet(t)

	rec := env.do(t, http.MethodPost, "/api/cards/batch", `{"skus":["VLE41684","RB2398"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	env.jobs.Wait()

	rec = env.do(t, http.MethodGet, "/api/cards/held", "")
	require.Equal(t, http.StatusOK, rec.Code)
	held := decode[[]service.HeldCard](t, rec)
	assert.Len(t, held, 2)
	assert.Equal(t, models.StatusPurple, env.ledger.Get("VLE41684"))

	rec = env.do(t, http.MethodPost, "/api/catalog/insert", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"inserted":2}`, rec.Body.String())
	assert.Equal(t, models.StatusGreen, env.ledger.Get("RB2398"))

	data, err := os.ReadFile(env.catalogPath)
	require.NoError(t, err)
	skus, err := service.CatalogSKUs(string(data))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"VLE41684", "RB2398"}, skus)

	rec = env.do(t, http.MethodPost, "/api/catalog/insert", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateCardWarnings(t *testing.T) {
	env := newTestEnv(t)
	env.loadSheet(t)

	rec := env.do(t, http.MethodPost, "/api/cards/RB2398", `{"link":"https://tienda.example.com/rb2398"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	card := decode[models.CardResult](t, rec)
	assert.Equal(t, []int{2, 3}, card.MissingImages)
	assert.True(t, card.LogoMissing)
	assert.Contains(t, card.HTML, "https://tienda.example.com/rb2398")
}

func TestSetCardTemplate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/card-template", `{"fromCatalog":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	tplPath := filepath.Join(env.dir, "tarjeta.html")
	require.NoError(t, os.WriteFile(tplPath, []byte(`<div class="product-card"><span class="old-price">x</span></div>`), 0o644))
	body, err := json.Marshal(map[string]string{"path": tplPath})
	require.NoError(t, err)
	rec = env.do(t, http.MethodPost, "/api/card-template", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/card-template", `{"path":"/nope/tarjeta.html"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/card-template", `{"reset":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mode":"default"}`, rec.Body.String())
}

func TestStatusEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/status/VLE41684", `{"status":"morado"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"sku":"VLE41684","status":"purple"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/status/VLE41684", `{"status":"azul"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"VLE41684":"purple"}`, rec.Body.String())

	rec = env.do(t, http.MethodDelete, "/api/status", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/status", "")
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.NoFileExists(t, filepath.Join(env.dir, "historial.json"))
}

func TestImageEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/images/validate", `{"urls":["not-a-url"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"slot":1,"url":"not-a-url","valid":false}]`, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Cached-URLs"))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/images/validate", `{}`).Code)
	assert.Equal(t, http.StatusNotImplemented, env.do(t, http.MethodPost, "/api/images/sync", "").Code)
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
