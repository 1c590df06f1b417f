package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/database"
	"github.com/stemsi/survey-seeder/internal/gateway"
	"github.com/stemsi/survey-seeder/internal/logger"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/monitoring"
	"github.com/stemsi/survey-seeder/internal/repository"
	"github.com/stemsi/survey-seeder/internal/service"
	"github.com/stemsi/survey-seeder/internal/template"
	"github.com/stemsi/survey-seeder/internal/validator"
	"golang.org/x/term"
)

// Exit codes.
const (
	exitOK      = 0
	exitPartial = 1
	exitFatal   = 2
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

type options struct {
	list      bool
	validate  bool
	all       bool
	asJSON    bool
	gateway   string
	templates stringList
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	flag.BoolVar(&opts.list, "list", false, "List available templates and exit")
	flag.BoolVar(&opts.validate, "validate", false, "Validate templates without creating anything")
	flag.BoolVar(&opts.all, "all", false, "Seed every available template")
	flag.BoolVar(&opts.asJSON, "json", false, "Print the outcome as JSON")
	flag.StringVar(&opts.gateway, "gateway", "", "Gateway mode: http or postgres (default from GATEWAY_MODE)")
	flag.Var(&opts.templates, "template", "Template id to seed (repeatable)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	if opts.gateway != "" {
		cfg.GatewayMode = strings.ToLower(opts.gateway)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Logs go to stderr; stdout carries the summary.
	format := cfg.LogFormat
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		format = "json"
	}
	log := logger.Setup(cfg.LogLevel, format, os.Stderr)

	validator.Setup()
	monitoring.Init()

	// ─── Load Templates ────────────────────────────────────────────────
	store, err := template.LoadStore(cfg.SeedTemplateDir)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.SeedTemplateDir).Msg("Failed to load survey templates")
		return exitFatal
	}

	switch {
	case opts.list:
		return printList(os.Stdout, store.Summaries(), opts.asJSON)
	case opts.validate:
		selected, err := selectTemplates(store, opts)
		if err != nil {
			log.Error().Err(err).Msg("Invalid template selection")
			return exitFatal
		}
		return printValidation(os.Stdout, selected)
	}

	selected, err := selectTemplates(store, opts)
	if err != nil {
		log.Error().Err(err).Msg("Invalid template selection")
		flag.Usage()
		return exitFatal
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Build Gateway ─────────────────────────────────────────────────
	var catalog gateway.Catalog
	if cfg.GatewayMode == config.GatewayModePostgres {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to PostgreSQL")
			return exitFatal
		}
		defer pool.Close()

		catalog = service.NewCatalogService(
			repository.NewSurveyRepository(pool),
			repository.NewSectionRepository(pool),
			repository.NewQuestionRepository(pool),
			log,
		)
	}

	entityGateway, err := gateway.New(cfg, catalog, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build entity gateway")
		return exitFatal
	}

	// ─── Materialize ───────────────────────────────────────────────────
	materializer := service.NewMaterializer(entityGateway, log,
		service.WithProgress(service.LogProgress{Log: logger.Component(log, "progress")}),
		service.WithQuestionConcurrency(cfg.SeedQuestionConcurrency),
	)
	orchestrator := service.NewBatchOrchestrator(materializer, store, service.OrchestratorConfig{
		StrictValidation:    cfg.SeedStrictValidation,
		TemplateConcurrency: cfg.SeedTemplateConcurrency,
	}, log)

	started := time.Now()
	batch, err := orchestrator.MaterializeBatch(ctx, selected)
	if err != nil {
		log.Error().Err(err).Msg("Seeding aborted before any entity was created")
		return exitFatal
	}
	log.Info().
		Int("succeeded", batch.SuccessCount).
		Int("total", batch.TotalCount).
		Dur("elapsed", time.Since(started)).
		Msg("Seeding finished")

	if err := printOutcome(os.Stdout, batch, opts.asJSON); err != nil {
		log.Error().Err(err).Msg("Failed to write outcome")
	}
	return exitCode(batch)
}

// selectTemplates resolves the -template and -all flags against the store.
// -validate falls back to every template when nothing is named.
func selectTemplates(store *template.Store, opts options) ([]model.SurveyTemplate, error) {
	switch {
	case opts.all && len(opts.templates) > 0:
		return nil, errors.New("-all and -template are mutually exclusive")
	case opts.all:
		return store.All(), nil
	case len(opts.templates) > 0:
		return store.Lookup(opts.templates)
	case opts.validate:
		return store.All(), nil
	default:
		return nil, errors.New("nothing to seed: pass -template <id> or -all")
	}
}

// exitCode is exitOK only when every template was fully materialized.
func exitCode(batch model.BatchOutcome) int {
	if batch.CompleteCount() == batch.TotalCount {
		return exitOK
	}
	return exitPartial
}

func printList(w io.Writer, summaries []model.TemplateSummary, asJSON bool) int {
	if asJSON {
		if err := writeJSON(w, summaries); err != nil {
			return exitFatal
		}
		return exitOK
	}
	for _, s := range summaries {
		mark := ""
		if !s.Valid {
			mark = " (invalid)"
		}
		fmt.Fprintf(w, "%-28s %-40s %d sections, %d questions%s\n", s.ID, s.Title, s.Sections, s.TotalQuestions, mark)
	}
	return exitOK
}

func printValidation(w io.Writer, templates []model.SurveyTemplate) int {
	code := exitOK
	for _, t := range templates {
		problems := template.Problems(t)
		if len(problems) == 0 {
			fmt.Fprintf(w, "ok       %s\n", t.ID)
			continue
		}
		code = exitPartial
		fmt.Fprintf(w, "invalid  %s\n", t.ID)
		for _, p := range problems {
			fmt.Fprintf(w, "         - %s\n", p)
		}
	}
	return code
}

func printOutcome(w io.Writer, batch model.BatchOutcome, asJSON bool) error {
	if asJSON {
		return writeJSON(w, batch)
	}
	for _, o := range batch.PerTemplate {
		status := "ok"
		if !o.Complete() {
			status = "partial"
		}
		if !o.SurveyCreated {
			status = "failed"
		}
		if _, err := fmt.Fprintf(w, "%-8s %s\n", status, o.Summary()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d/%d surveys created, %d complete\n",
		batch.SuccessCount, batch.TotalCount, batch.CompleteCount())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
