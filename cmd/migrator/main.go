package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/quiz-api/internal/config"
	"github.com/gokatarajesh/quiz-api/internal/db/migrations"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("migrator failed")
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "migrator",
		Short:         "Apply or roll back the quiz-api database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile == "" {
				return
			}
			if err := godotenv.Load(envFile); err != nil {
				log.Warn().Err(err).Str("file", envFile).Msg("could not load env file")
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file read before connecting (empty to skip)")

	root.AddCommand(
		migrateCmd("up", "Apply every pending migration", migrations.Up, "migrations applied successfully"),
		migrateCmd("down", "Roll back the most recent migration", migrations.Down, "migration rolled back successfully"),
		migrateCmd("status", "Print applied and pending migrations", migrations.Status, ""),
	)
	return root
}

func migrateCmd(use, short string, run func(context.Context, *sql.DB) error, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := run(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			if done != "" {
				log.Info().Msg(done)
			}
			return nil
		},
	}
}

// openDB reads only the postgres section so the migrator does not need the
// API's secrets in its environment.
func openDB(ctx context.Context) (*sql.DB, error) {
	var pg config.Postgres
	if err := config.Parse(&pg); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", pg.Host).
		Int("port", pg.Port).
		Str("database", pg.Database).
		Msg("connected to database")
	return db, nil
}
