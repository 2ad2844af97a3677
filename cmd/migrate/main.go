package main

import (
	"crm/config"
	"crm/helper"
	"crm/shared/logger"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or roll back the postgres schema",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.Init(config.Get())
		},
	}

	root.AddCommand(
		actionCmd(helper.ActionUp, "Apply every pending migration", helper.Up),
		actionCmd(helper.ActionDown, "Roll back the latest migration", helper.Down),
		actionCmd(helper.ActionStepUp, "Apply the next pending migration", helper.StepUp),
		actionCmd(helper.ActionDrop, "Roll back every migration", helper.Drop),
		versionCmd(),
	)

	return root
}

func actionCmd(use, short string, run func(*config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := run(config.Get()); err != nil {
				log.Error().Err(err).Str("action", use).Msg("migration failed")

				return err
			}

			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, dirty, err := helper.Version(config.Get())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)

			return nil
		},
	}
}
