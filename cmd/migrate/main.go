package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"storemanager/config"
	"storemanager/internal/pkg/database"
	"storemanager/internal/pkg/logger"
	"storemanager/migrations"
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Aplica as migrações do Store Manager no PostgreSQL",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		gooseCommand("up", "Aplica todas as migrações pendentes", goose.Up),
		gooseCommand("down", "Desfaz a última migração aplicada", goose.Down),
		gooseCommand("status", "Lista o estado de cada migração", goose.Status),
		gooseCommand("version", "Mostra a versão atual do schema", goose.Version),
	)
}

// gooseCommand cria um subcomando que abre o banco e executa fn sobre as migrações embutidas.
func gooseCommand(use, short string, fn func(db *sql.DB, dir string, opts ...goose.OptionsFunc) error) *cobra.Command {
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
			return fn(db, ".")
		},
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL deve ser definida para rodar migrações")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	return database.NewPostgresDB(ctx, cfg.DatabaseURL, database.DefaultPool)
}

func main() {
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"))

	if err := godotenv.Load(); err != nil {
		log.Warn("Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.", nil)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal("Migração falhou.", err)
	}
}
