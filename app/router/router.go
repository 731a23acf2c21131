package router

import (
	"net/http"
	"time"

	"catalogo-armazones/app/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Controllers struct {
	Sheet      *controller.SheetController
	Generation *controller.GenerationController
	Job        *controller.JobController
	Image      *controller.ImageController
	Status     *controller.StatusController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs every request once it completes
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("latency", time.Since(start)),
					zap.Int("bytes", ww.BytesWritten()),
				}
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					log.Error("request completed", fields...)
				case ww.Status() >= http.StatusBadRequest:
					log.Warn("request completed", fields...)
				default:
					log.Info("request completed", fields...)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// SetupRoutes builds the HTTP handler for the admin API
func SetupRoutes(controllers *Controllers, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Route("/api", func(r chi.Router) {
		// Inputs
		r.Post("/sheet", controllers.Sheet.LoadSheet)
		r.Get("/rows", controllers.Sheet.ListRows)
		r.Post("/logos", controllers.Sheet.LoadLogos)
		r.Post("/links", controllers.Sheet.LoadLinks)
		r.Post("/card-template", controllers.Generation.SetCardTemplate)

		// Detail pages (batch must be registered before {sku})
		r.Post("/pages/batch", controllers.Generation.GeneratePagesBatch)
		r.Post("/pages/{sku}", controllers.Generation.GeneratePage)

		// Catalog cards
		r.Post("/cards/batch", controllers.Generation.GenerateCardsBatch)
		r.Get("/cards/held", controllers.Generation.ListHeldCards)
		r.Post("/cards/{sku}", controllers.Generation.GenerateCard)
		r.Post("/cards/{sku}/insert", controllers.Generation.InsertCard)
		r.Post("/catalog/insert", controllers.Generation.InsertHeldCards)
		r.Get("/previews/{sku}", controllers.Generation.CardPreview)

		r.Get("/jobs/{id}", controllers.Job.GetJob)

		r.Post("/images/validate", controllers.Image.ValidateImages)
		r.Post("/images/sync", controllers.Image.SyncImages)

		// Status ledger
		r.Get("/status", controllers.Status.GetStatuses)
		r.Delete("/status", controllers.Status.ResetStatuses)
		r.Put("/status/{sku}", controllers.Status.SetStatus)
	})

	return r
}
