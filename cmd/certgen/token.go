package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidar/certgen/internal/service"
)

func newTokenCmd() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить JWT токен оператора для HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			authService := service.NewAuthService(cfg.JWT.APIKey, cfg.JWT.Secret, cfg.JWT.GetExpiration())
			token, err := authService.IssueToken(operator)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "имя оператора")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}
