package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aidar/certgen/internal/app"
	"github.com/aidar/certgen/internal/domain"
	"github.com/aidar/certgen/internal/roster"
	"github.com/aidar/certgen/internal/service"
)

func newGenerateCmd() *cobra.Command {
	var (
		path       string
		resultsDir string
		lines      []int
		idMode     bool
		template   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Сгенерировать сертификаты по XLSX или CSV списку",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Флаги переопределяют значения из окружения
			flags := cmd.Flags()
			if flags.Changed("path") {
				cfg.Generator.RosterPath = path
			}
			if flags.Changed("results-dir") {
				cfg.Generator.ResultsDir = resultsDir
			}
			if flags.Changed("lines") {
				cfg.Generator.Lines = lines
			}
			if flags.Changed("id-mode") {
				cfg.Generator.IDMode = idMode
			}
			if flags.Changed("template") {
				cfg.Template.Path = template
			}

			validLines, err := domain.ValidateLines(cfg.Generator.Lines)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Log, cmd.ErrOrStderr(), "text")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, app.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := application.Initialize(ctx); err != nil {
				return err
			}
			defer func() {
				if err := application.Shutdown(cmd.Context()); err != nil {
					logger.Error("Failed to shutdown", "error", err)
				}
			}()

			src, err := roster.Open(cfg.Generator.RosterPath, cfg.Generator.IDMode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			run, err := application.CertificateService().Generate(ctx, service.GenerateRequest{
				Source:     src,
				ResultsDir: cfg.Generator.ResultsDir,
				Lines:      validLines,
				IDMode:     cfg.Generator.IDMode,
				OnSaved: func(cert *domain.Certificate) {
					fmt.Fprintln(out, cert.FileName)
				},
			})
			if err != nil {
				return err
			}

			logger.Info("Done", "run_id", run.ID, "generated", run.Generated, "skipped", run.Skipped, "results_dir", run.ResultsDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "studs.xlsx", "путь к списку студентов (.xlsx или .csv)")
	cmd.Flags().StringVarP(&resultsDir, "results-dir", "o", "results", "директория для PNG файлов")
	cmd.Flags().IntSliceVarP(&lines, "lines", "l", domain.DefaultLines(), "допустимые количества строк ФИО")
	cmd.Flags().BoolVar(&idMode, "id-mode", false, "первая колонка содержит идентификатор, файлы называются <id>.png")
	cmd.Flags().StringVarP(&template, "template", "t", "template.yaml", "YAML описание шаблона")

	return cmd
}
