// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ik5/dawcore/pipeline"
)

type probeReport struct {
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`
	Channels   int    `yaml:"channels"`
	SampleRate int    `yaml:"sample_rate"`
	Layout     string `yaml:"layout"`
}

func newProbeCmd(_ *cli) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show the format of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := pipeline.Probe(args[0], nil)
			if err != nil {
				return err
			}

			r := probeReport{
				Path:       info.Path,
				Format:     info.Format,
				Channels:   info.Channels,
				SampleRate: info.SampleRate,
				Layout:     info.Layout.String(),
			}

			if asYAML {
				out, err := yaml.Marshal(r)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d ch @ %d Hz [%s]\n",
				r.Path, r.Format, r.Channels, r.SampleRate, r.Layout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print a YAML report")

	return cmd
}
