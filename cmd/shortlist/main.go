// Package main is the shortlist CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	clifmt "github.com/hyperjump/shortlist/internal/cli"
	"github.com/hyperjump/shortlist/internal/config"
	"github.com/hyperjump/shortlist/internal/embedding"
	"github.com/hyperjump/shortlist/internal/export"
	"github.com/hyperjump/shortlist/internal/llm"
	"github.com/hyperjump/shortlist/internal/metrics"
	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/retriever"
	"github.com/hyperjump/shortlist/internal/screening"
	"github.com/hyperjump/shortlist/internal/search"
	"github.com/hyperjump/shortlist/internal/server"
	"github.com/hyperjump/shortlist/internal/storage"
	"github.com/hyperjump/shortlist/pkg/utils"
)

var version = "dev"

// defaultConfigName is looked up in the working directory when --config is not set.
const defaultConfigName = "config.yaml"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	resumeFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "resumes",
			Aliases: []string{"r"},
			Usage:   "Resumes: a JSON file, a single pdf/docx/txt file, or a directory of them",
		},
		&cli.BoolFlag{
			Name:  "from-db",
			Usage: "Load resumes from the candidate repository",
		},
		&cli.StringFlag{
			Name:     "job",
			Aliases:  []string{"j"},
			Usage:    "Job description: a JSON file or a pdf/docx/txt/md document",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format (text, json)",
			Value: string(clifmt.OutputText),
		},
	}

	return &cli.App{
		Name:    "shortlist",
		Usage:   "Hybrid candidate retrieval and screening for resumes",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (defaults to ./config.yaml when present)",
				EnvVars: []string{"SHORTLIST_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
			},
			{
				Name:   "retrieve",
				Usage:  "Rank resumes against a job description with hybrid search",
				Action: retrieveCommand,
				Flags: append(resumeFlags,
					&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Number of candidates to return (default from config)"},
					&cli.Float64Flag{Name: "keyword-weight", Usage: "Keyword weight in fusion (default from config)"},
					&cli.Float64Flag{Name: "vector-weight", Usage: "Vector weight in fusion (default from config)"},
				),
			},
			{
				Name:   "screen",
				Usage:  "Retrieve candidates and score them with an LLM",
				Action: screenCommand,
				Flags: append(resumeFlags,
					&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Candidates kept by retrieval before scoring (default from config)"},
					&cli.BoolFlag{Name: "no-retrieval", Usage: "Score every resume without retrieval"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent scoring workers (default from config)"},
					&cli.StringFlag{Name: "xlsx", Usage: "Write the shortlist to this Excel file"},
					&cli.BoolFlag{Name: "no-history", Usage: "Do not record this run in the screening history"},
				),
			},
			{
				Name:   "history",
				Usage:  "List past screening runs or show the results of one",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "session", Aliases: []string{"s"}, Usage: "Show the stored results of this session id"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of sessions to list (0 for all)", Value: 20},
					&cli.BoolFlag{Name: "clear", Usage: "Delete the screening history"},
					&cli.StringFlag{Name: "format", Usage: "Output format (text, json)", Value: string(clifmt.OutputText)},
				},
			},
			{
				Name:   "import",
				Usage:  "Store resumes in the candidate repository",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "resumes",
						Aliases:  []string{"r"},
						Usage:    "Resumes: a JSON file, a single pdf/docx/txt file, or a directory of them",
						Required: true,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "shortlist version %s\n", version)
					return nil
				},
			},
		},
	}
}

// env holds what every command needs after startup.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

// loadConfig loads path, or ./config.yaml when path is empty and that file exists,
// or the built-in defaults otherwise. Returns the path actually used ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, defaultConfigName)
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func setup(c *cli.Context) (*env, error) {
	cfg, path, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	debug := cfg.Debug || c.Bool("debug")
	var levels []string
	if lvl := c.String("log-level"); lvl != "" {
		levels = append(levels, lvl)
	}
	logger, err := utils.NewLogger(debug, levels...)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", path), zap.Bool("debug", debug))
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) openRepository() (*storage.CandidateRepository, error) {
	repo, err := storage.NewCandidateRepository(e.cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open candidate repository: %w", err)
	}
	return repo, nil
}

// loadInputs reads the resumes and job description named by the command flags.
func (e *env) loadInputs(c *cli.Context) ([]models.ResumeRecord, models.JobDescriptionRecord, error) {
	job, err := clifmt.LoadJob(c.String("job"))
	if err != nil {
		return nil, job, fmt.Errorf("load job: %w", err)
	}

	var resumes []models.ResumeRecord
	if path := c.String("resumes"); path != "" {
		resumes, err = clifmt.LoadResumes(path)
		if err != nil {
			return nil, job, fmt.Errorf("load resumes: %w", err)
		}
	}
	if c.Bool("from-db") {
		repo, err := e.openRepository()
		if err != nil {
			return nil, job, err
		}
		defer repo.Close()
		stored, err := repo.ListResumes(c.Context, 0, 0)
		if err != nil {
			return nil, job, fmt.Errorf("list resumes: %w", err)
		}
		resumes = append(resumes, stored...)
	}
	if len(resumes) == 0 {
		return nil, job, fmt.Errorf("no resumes given (use --resumes or --from-db)")
	}
	return resumes, job, nil
}

func serveCommand(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	embedder, err := embedding.New(e.cfg.Embedding, e.logger)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	defer embedder.Close()

	repo, err := e.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	srv := server.NewServer(e.cfg, embedder, repo, e.logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
	}

	e.logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func retrieveCommand(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.logger.Sync()
	format, err := clifmt.ParseOutputFormat(c.String("format"))
	if err != nil {
		return err
	}
	resumes, job, err := e.loadInputs(c)
	if err != nil {
		return err
	}

	req := models.RetrieveRequest{
		Job:           job,
		TopK:          c.Int("top-k"),
		KeywordWeight: c.Float64("keyword-weight"),
		VectorWeight:  c.Float64("vector-weight"),
	}
	if err := req.Validate(e.cfg.Retrieval.DefaultTopK, e.cfg.Retrieval.MaxTopK); err != nil {
		return err
	}
	weights := search.Weights{Keyword: e.cfg.Retrieval.KeywordWeight, Vector: e.cfg.Retrieval.VectorWeight}
	if req.KeywordWeight != 0 || req.VectorWeight != 0 {
		weights = search.Weights{Keyword: req.KeywordWeight, Vector: req.VectorWeight}
	}

	embedder, err := embedding.New(e.cfg.Embedding, e.logger)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	defer embedder.Close()

	r, err := retriever.New(embedder,
		retriever.WithWeights(weights),
		retriever.WithOverFetch(e.cfg.Retrieval.OverFetch),
		retriever.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := r.IndexResumes(c.Context, resumes); err != nil {
		return err
	}
	candidates, err := r.RetrieveCandidates(c.Context, job, req.TopK)
	if err != nil {
		return err
	}
	return clifmt.WriteCandidates(c.App.Writer, &models.RetrieveResponse{
		JobTitle:   job.Title,
		Candidates: candidates,
		Total:      len(candidates),
		Corpus:     r.ResumeCount(),
		QueryTime:  time.Since(start).Milliseconds(),
	}, format)
}

func screenCommand(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.logger.Sync()
	format, err := clifmt.ParseOutputFormat(c.String("format"))
	if err != nil {
		return err
	}
	resumes, job, err := e.loadInputs(c)
	if err != nil {
		return err
	}
	metrics.Register()

	sc := e.cfg.Screening
	scorer, err := llm.NewScorer(sc, e.logger)
	if err != nil {
		return err
	}
	workers := sc.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}
	pool, err := screening.NewPool(scorer,
		screening.WithWorkers(workers),
		screening.WithRetry(sc.MaxAttempts, sc.BaseDelay),
		screening.WithPoolLogger(e.logger),
	)
	if err != nil {
		return err
	}
	defer pool.Release()

	opts := screening.Options{
		UseRetrieval: sc.UseRetrievalOrDefault() && !c.Bool("no-retrieval"),
		RetrievalK:   sc.RetrievalK,
		Weights:      search.Weights{Keyword: e.cfg.Retrieval.KeywordWeight, Vector: e.cfg.Retrieval.VectorWeight},
		OverFetch:    e.cfg.Retrieval.OverFetch,
	}
	if c.IsSet("top-k") {
		opts.RetrievalK = c.Int("top-k")
	}

	var embedder embedding.Embedder
	if opts.UseRetrieval {
		embedder, err = embedding.New(e.cfg.Embedding, e.logger)
		if err != nil {
			e.logger.Warn("Embedder unavailable, scoring without retrieval", zap.Error(err))
			embedder = nil
		} else {
			defer embedder.Close()
		}
	}

	report, err := screening.NewScreener(embedder, pool, e.logger).Screen(c.Context, resumes, job, opts)
	if err != nil {
		return err
	}
	if path := c.String("xlsx"); path != "" {
		if err := writeXLSX(path, report); err != nil {
			return err
		}
		e.logger.Info("Shortlist exported", zap.String("path", path))
	}
	if !c.Bool("no-history") {
		if err := e.recordHistory(c.Context, report); err != nil {
			return err
		}
	}
	return clifmt.WriteReport(c.App.Writer, report, format)
}

// recordHistory stores the report in the screening history of the candidate repository.
func (e *env) recordHistory(ctx context.Context, report *screening.Report) error {
	repo, err := e.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	id, err := repo.SaveSession(ctx, report.Session(), report.Scores)
	if err != nil {
		return fmt.Errorf("save screening history: %w", err)
	}
	e.logger.Info("Screening recorded", zap.Int64("session_id", id), zap.Int("scored", len(report.Scores)))
	return nil
}

func historyCommand(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.logger.Sync()
	format, err := clifmt.ParseOutputFormat(c.String("format"))
	if err != nil {
		return err
	}
	repo, err := e.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	if c.Bool("clear") {
		if err := repo.ClearHistory(c.Context); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "Screening history cleared")
		return nil
	}
	if c.IsSet("session") {
		id := c.Int64("session")
		session, err := repo.GetSession(c.Context, id)
		if err != nil {
			return err
		}
		scores, err := repo.SessionResults(c.Context, id)
		if err != nil {
			return err
		}
		return clifmt.WriteSessionResults(c.App.Writer, session, scores, format)
	}
	sessions, err := repo.ListSessions(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	return clifmt.WriteSessions(c.App.Writer, sessions, format)
}

func writeXLSX(path string, report *screening.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteShortlistXLSX(f, report.Job, report.Candidates, report.Scores); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func importCommand(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	resumes, err := clifmt.LoadResumes(c.String("resumes"))
	if err != nil {
		return fmt.Errorf("load resumes: %w", err)
	}
	for i := range resumes {
		if err := resumes[i].Validate(); err != nil {
			return err
		}
	}
	repo, err := e.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.SaveResumes(c.Context, resumes); err != nil {
		return err
	}
	total, err := repo.CountResumes(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d resumes (%d in repository)\n", len(resumes), total)
	return nil
}
