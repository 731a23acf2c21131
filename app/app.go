package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"

	"catalogo-armazones/app/controller"
	"catalogo-armazones/app/router"
	"catalogo-armazones/config"
	"catalogo-armazones/db"
	"catalogo-armazones/repository"
	"catalogo-armazones/service"

	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Handler   http.Handler
	Ledger    *service.Ledger
	Workspace *service.Workspace
	Jobs      *service.JobRegistry
	db        *sql.DB
}

// Close releases the database connection, if any
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Initialize wires config -> repositories -> services -> controllers
func Initialize(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	app := &App{}

	// Ledger storage: Postgres when configured, the JSON file otherwise
	var statusRepo repository.StatusRepositoryInterface
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		pgRepo := repository.NewStatusPostgresRepository(conn)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		app.db = conn
		statusRepo = pgRepo
		log.Info("status ledger backed by postgres")
	} else {
		statusRepo = repository.NewStatusFileRepository(cfg.LedgerPath)
		log.Info("status ledger backed by file", zap.String("path", cfg.LedgerPath))
	}

	ledger := service.NewLedger(statusRepo, log)
	statuses := ledger.Load(ctx)
	log.Info("status ledger loaded", zap.Int("entries", len(statuses)))

	anchors, err := service.LoadAnchorSet(cfg.AnchorsPath)
	if err != nil {
		return nil, err
	}
	engine := service.NewEngine(anchors)
	log.Info("anchor table loaded", zap.Int("version", anchors.Version), zap.Int("page", len(anchors.Page)), zap.Int("card", len(anchors.Card)))

	workspace := service.NewWorkspace()
	mappings := service.NewMappingLoader(log)
	templates := service.NewTemplateCache()
	catalog := service.NewCatalogService(log)
	jobs := service.NewJobRegistry(log)
	validator := service.NewURLValidator(cfg.URLCheckTimeout, cfg.Workers, log)

	if err := preload(cfg, workspace, mappings, catalog, log); err != nil {
		return nil, err
	}

	// Optional Drive image source
	var images service.ImageSourceInterface
	var imageSync service.ImageSyncServiceInterface
	if cfg.CredentialsPath != "" && cfg.DriveFolderID != "" {
		drive, err := service.NewDriveService(ctx, cfg.CredentialsPath, cfg.DriveFolderID, log)
		if err != nil {
			return nil, err
		}
		images = drive
		imageSync = service.NewImageSyncService(drive, workspace, log)
		log.Info("drive image source enabled", zap.String("folder_id", cfg.DriveFolderID))
	}

	pages := service.NewPageService(service.PageServiceConfig{
		Engine:       engine,
		Cache:        templates,
		Workspace:    workspace,
		Ledger:       ledger,
		Images:       images,
		TemplatePath: cfg.PageTemplatePath,
		OutputDir:    cfg.OutputDir,
		Workers:      cfg.Workers,
		Logger:       log,
	})
	cards := service.NewCardService(service.CardServiceConfig{
		Engine:      engine,
		Workspace:   workspace,
		Ledger:      ledger,
		Catalog:     catalog,
		Images:      images,
		CatalogPath: cfg.CatalogPath,
		Workers:     cfg.Workers,
		Logger:      log,
	})
	previews := service.NewPreviewService(cards, catalog, cfg.ChromePath, filepath.Join(cfg.OutputDir, ".previews"), log)

	controllers := &router.Controllers{
		Sheet:      controller.NewSheetController(workspace, ledger, mappings, log),
		Generation: controller.NewGenerationController(pages, cards, catalog, workspace, jobs, previews, templates, log),
		Job:        controller.NewJobController(jobs, log),
		Image:      controller.NewImageController(validator, workspace, imageSync, log),
		Status:     controller.NewStatusController(ledger, log),
	}

	app.Handler = router.SetupRoutes(controllers, log)
	app.Ledger = ledger
	app.Workspace = workspace
	app.Jobs = jobs
	return app, nil
}

// preload loads the mapping files and card template named in the configuration
func preload(cfg config.Config, workspace *service.Workspace, mappings *service.MappingLoader, catalog *service.CatalogService, log *zap.Logger) error {
	if cfg.LogoMapPath != "" {
		logos, _, err := mappings.LoadLogoMap(cfg.LogoMapPath)
		if err != nil {
			return err
		}
		workspace.SetLogos(logos)
	}
	if cfg.LinksPath != "" {
		links, _, err := mappings.LoadLinkMap(cfg.LinksPath)
		if err != nil {
			return err
		}
		workspace.SetLinks(links)
	}

	switch {
	case cfg.CardTemplatePath != "":
		tpl, err := service.NewTemplateCache().Get(cfg.CardTemplatePath)
		if err != nil {
			return err
		}
		workspace.SetCardTemplate(tpl)
	case cfg.CatalogPath != "":
		// bootstrap the card template from the first card already in the catalog
		if tpl, err := catalog.ExtractTemplateFromFile(cfg.CatalogPath); err == nil {
			workspace.SetCardTemplate(tpl)
		} else {
			log.Info("using default card template", zap.Error(err))
		}
	}
	return nil
}
