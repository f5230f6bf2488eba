package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/templui/magicprofile/internal/config"
	"github.com/templui/magicprofile/internal/repository"
	"github.com/templui/magicprofile/internal/service"
)

func CleanupCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete used or expired magic links and expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				auth := service.NewAuthService(
					repository.NewUserRepository(database),
					repository.NewTokenRepository(database),
					repository.NewSessionRepository(database),
					nil, // no mail is sent during cleanup
					cfg.JWTSecret,
					cfg.IsProduction(),
					cfg.SessionExpiry,
					cfg.TokenMagicLinkExpiry,
				)

				tokens, sessions, err := auth.Cleanup(cmd.Context(), olderThan)
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d tokens and %d sessions\n", tokens, sessions)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "keep used or expired tokens younger than this")
	return cmd
}
