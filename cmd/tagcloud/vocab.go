package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/tagcloud/source"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage and render vocabularies stored in SQLite",
}

var vocabImportCmd = &cobra.Command{
	Use:   "import <id> <file>",
	Short: "Upsert the tags of a YAML file into vocabulary id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := os.Open(args[1])
		if err != nil {
			return errors.Wrap(err, "opening tag file")
		}
		defer f.Close()
		tags, err := source.DecodeYAML(f)
		if err != nil {
			return errors.WithMessage(err, args[1])
		}

		db, err := source.OpenSQLite(source.SQLiteOptions{Path: cfg.DB.Path})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Put(cmd.Context(), args[0], tags...); err != nil {
			return err
		}
		slog.Info("imported vocabulary", "id", args[0], "tags", len(tags), "db", cfg.DB.Path)
		return nil
	},
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vocabulary ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := source.OpenSQLite(source.SQLiteOptions{Path: cfg.DB.Path})
		if err != nil {
			return err
		}
		defer db.Close()
		ids, err := db.Vocabularies(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var vocabShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Load a vocabulary through the cache and print its weighted cloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStack(cfg, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := st.svc.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := c.SortBy(cfg.SortOrder()); err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writeTags(cmd.OutOrStdout(), format, c.Tags())
	},
}

var vocabWarmCmd = &cobra.Command{
	Use:   "warm [id...]",
	Short: "Build and cache vocabularies (all of them when no id is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStack(cfg, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		ids := args
		if len(ids) == 0 {
			if ids, err = st.db.Vocabularies(cmd.Context()); err != nil {
				return err
			}
		}
		if err := st.svc.Warm(cmd.Context(), ids); err != nil {
			return err
		}
		stats := st.mem.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "warmed=%d entries=%d bytes=%d\n", len(ids), stats.Entries, stats.Bytes)
		return nil
	},
}

func init() {
	vocabShowCmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml, html")
	vocabCmd.AddCommand(vocabImportCmd, vocabListCmd, vocabShowCmd, vocabWarmCmd)
}
