package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidar/certgen/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "certgen",
		Short: "Генерация PNG сертификатов по списку студентов",
		// Ошибку печатает cobra, справка по флагам нужна только при ошибке разбора флагов
		SilenceUsage: true,
	}

	root.AddCommand(
		newGenerateCmd(),
		newServeCmd(),
		newTokenCmd(),
	)

	return root
}

// loadConfig загружает конфигурацию из переменных окружения
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	return cfg, nil
}

// newLogger создает логгер в формате из LOG_FORMAT, либо в формате по умолчанию для режима
func newLogger(cfg config.LogConfig, w io.Writer, defaultFormat string) *slog.Logger {
	format := cfg.Format
	if format == "" {
		format = defaultFormat
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
