package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ss12000-mock/internal/app"
	"ss12000-mock/internal/config"
	"ss12000-mock/internal/db"
	"ss12000-mock/internal/resource"
	"ss12000-mock/internal/service/provision"
	"ss12000-mock/internal/validator"
	"ss12000-mock/pkg/cli/client"
)

// storeFlags override the store settings of the server environment for the
// commands that work on the database directly.
type storeFlags struct {
	backend     string
	metaDBPath  string
	databaseURL string
}

func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "store-backend", "", "sqlite or postgres (default: STORE_BACKEND)")
	fs.StringVar(&f.metaDBPath, "meta-db-path", "", "SQLite file (default: META_DB_PATH)")
	fs.StringVar(&f.databaseURL, "database-url", "", "Postgres DSN (default: DATABASE_URL)")
}

func (f *storeFlags) config() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if f.backend != "" {
		cfg.StoreBackend = f.backend
	}
	if f.metaDBPath != "" {
		cfg.MetaDBPath = f.metaDBPath
	}
	if f.databaseURL != "" {
		cfg.DatabaseURL = f.databaseURL
	}
	switch cfg.StoreBackend {
	case config.BackendSQLite, config.BackendPostgres:
		return cfg, nil
	case config.BackendMemory:
		return nil, fmt.Errorf("the memory backend does not outlive this command: use sqlite or postgres")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newLoadCmd() *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Provision a YAML fixture into the local database",
		Long: `Validate a YAML fixture and upsert its records into the database the server
uses. Records listed under "deleted" are removed and leave a tombstone.
Nothing is written when any record is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sf.config()
			if err != nil {
				return err
			}
			backend, conn, err := app.OpenBackend(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer conn.Close() //nolint:errcheck

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			reg := resource.NewRegistry(resource.OpenStores(backend))
			loader := provision.NewLoader(reg, validator.New(reg.Has), logger)

			rep, err := loader.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return client.PrintJSON(cmd.OutOrStdout(), map[string]int{
					"inserted": rep.Inserted,
					"updated":  rep.Updated,
					"deleted":  rep.Deleted,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s: %d inserted, %d updated, %d deleted\n",
				args[0], rep.Inserted, rep.Updated, rep.Deleted)
			return nil
		},
	}
	sf.register(cmd.Flags())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := sf.config()
			if err != nil {
				return err
			}
			_, conn, err := app.OpenBackend(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer conn.Close() //nolint:errcheck

			v, err := db.MigrationVersion(conn)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return client.PrintJSON(cmd.OutOrStdout(), map[string]any{
					"backend": cfg.StoreBackend,
					"version": v,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", cfg.StoreBackend, v)
			return nil
		},
	}
	sf.register(cmd.Flags())
	return cmd
}
