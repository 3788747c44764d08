package main

import (
	"os"

	"github.com/codey22/notespace/internal/config"
	"github.com/codey22/notespace/internal/db"
	"github.com/codey22/notespace/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.Defaults(v)

	root := &cobra.Command{
		Use:          "notespace",
		Short:        "Anonymous notes addressed by short slugs",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("db-driver", "", "store driver: postgres or sqlite (DB_DRIVER)")
	pf.String("database-url", "", "store DSN (DATABASE_URL)")
	pf.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	_ = v.BindPFlag("DB_DRIVER", pf.Lookup("db-driver"))
	_ = v.BindPFlag("DATABASE_URL", pf.Lookup("database-url"))
	_ = v.BindPFlag("LOG_LEVEL", pf.Lookup("log-level"))

	root.AddCommand(
		newServeCmd(v),
		newReapCmd(v),
		newSlugCmd(),
		newOpenCmd(),
		newEditCmd(),
	)
	return root
}

// openStore loads config and connects to a migrated store. The caller owns
// the returned logger and database.
func openStore(v *viper.Viper) (config.Config, *logging.ZapLogger, *gorm.DB, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return cfg, nil, nil, err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return cfg, nil, nil, err
	}

	gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		_ = log.Sync()
		return cfg, nil, nil, err
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		_ = db.Close(gdb)
		_ = log.Sync()
		return cfg, nil, nil, err
	}
	return cfg, log, gdb, nil
}
