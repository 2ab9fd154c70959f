// SPDX-License-Identifier: EPL-2.0

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/dawcore/config"
	"github.com/ik5/dawcore/internal/logging"
)

// cli carries state shared by every subcommand.
type cli struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "dawcore",
		Short:         "Real-time audio engine tools",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Int("sample-rate", 48000, "engine sample rate in Hz")
	_ = c.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = c.v.BindPFlag("engine.sample_rate", root.PersistentFlags().Lookup("sample-rate"))

	root.AddCommand(newPlayCmd(c), newDecodeCmd(c), newProbeCmd(c))

	return root
}

func (c *cli) load() error {
	if c.configFile != "" {
		c.v.SetConfigFile(c.configFile)
		if err := c.v.ReadInConfig(); err != nil {
			return err
		}
	}

	cfg, err := config.FromViper(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.Log.Level, nil)
	if err != nil {
		return err
	}
	c.logger = logger

	return nil
}
