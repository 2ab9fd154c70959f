// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ik5/dawcore/formats/wav"
	"github.com/ik5/dawcore/pipeline"
	"github.com/ik5/dawcore/utils"
)

func newDecodeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <in> <out.wav>",
		Short: "Convert a file to engine format and write it as 16-bit WAV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.decode(cmd, args[0], args[1])
		},
	}
}

func (c *cli) decode(cmd *cobra.Command, in, out string) error {
	opts := pipeline.Options{
		SampleRate:      c.cfg.Engine.SampleRate,
		Channels:        c.cfg.Engine.Channels,
		ChunkFrames:     c.cfg.Pipeline.ChunkFrames,
		MaxDecodeErrors: c.cfg.Pipeline.MaxDecodeErrors,
		Logger:          c.logger,
	}

	d, err := pipeline.DecodeFile(in, opts)
	if err != nil {
		return err
	}

	samples := make([]int16, len(d.Data))
	for i, s := range d.Data {
		samples[i] = utils.Float32ToInt16(s)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}

	if err := wav.Encode(f, d.SampleRate, d.Channels, samples); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d frames, %d ch @ %d Hz\n", out, d.Frames(), d.Channels, d.SampleRate)

	return nil
}
