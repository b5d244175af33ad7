package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidar/certgen/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API генерации",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			logger := newLogger(cfg.Log, os.Stdout, "json")

			// Создаем экземпляр приложения
			application, err := app.New(cfg, app.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("не удалось создать приложение: %w", err)
			}

			// Инициализируем приложение (шаблон, журнал, роутинг)
			if err := application.Initialize(cmd.Context()); err != nil {
				return fmt.Errorf("не удалось инициализировать приложение: %w", err)
			}

			// Настраиваем graceful shutdown для корректного завершения
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			serverErr := make(chan error, 1)
			go func() {
				if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Сервер запущен на порту %s\n", cfg.Server.Port)

			select {
			case <-sigChan:
			case err := <-serverErr:
				return fmt.Errorf("ошибка сервера: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Остановка сервера...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := application.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("не удалось корректно остановить сервер: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Сервер остановлен")
			return nil
		},
	}
}
