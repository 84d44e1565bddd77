// Command tagcloud renders weighted tag clouds from YAML files or a SQLite
// vocabulary store, and load-tests the cached cloud service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/tagcloud/config"
)

var (
	v = config.NewViper()

	rootCmd = &cobra.Command{
		Use:           "tagcloud",
		Short:         "Weighted tag clouds: render, store and serve them through a cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// a missing .env is fine
			_ = godotenv.Load()

			if path := v.GetString("config"); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "reading config %s", path)
				}
			}
			setupLogger(v.GetString("log-level"))
			return nil
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Int("steps", config.Default().Steps, "number of weight bands")
	pf.String("sort", config.Default().Sort, "sort order: name, count, weight, random")
	pf.String("locale", config.Default().Locale, "BCP 47 locale used to collate names")
	pf.String("db", config.Default().DB.Path, "SQLite vocabulary database")

	for key, flag := range map[string]string{
		"config":    "config",
		"log-level": "log-level",
		"steps":     "steps",
		"sort":      "sort",
		"locale":    "locale",
		"db.path":   "db",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(renderCmd, vocabCmd, benchCmd, configCmd)
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("tagcloud failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves flags, environment and the config file.
func loadConfig() (config.Config, error) {
	return config.Load(v)
}
