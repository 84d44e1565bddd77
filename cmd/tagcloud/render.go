package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/tagcloud/cloud"
	"github.com/IvanBrykalov/tagcloud/source"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Weigh and sort a YAML tag list (stdin when file is omitted or -)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opt, err := cfg.CloudOptions()
		if err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()
		name := "stdin"
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening tag file")
			}
			defer f.Close()
			in, name = f, args[0]
		}
		tags, err := source.DecodeYAML(in)
		if err != nil {
			return errors.WithMessage(err, name)
		}

		id, _ := cmd.Flags().GetString("id")
		c, err := cloud.New(id, opt, tags...)
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

func init() {
	renderCmd.Flags().String("id", "cli", "cloud id")
	renderCmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml, html")
}
