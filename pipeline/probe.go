// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/dawcore/audio"
)

// Info describes a source file as its decoder sees it.
type Info struct {
	Path       string
	Format     string
	Channels   int
	SampleRate int
	Layout     audio.Layout
}

// openSource opens path, picks a decoder by extension and content, and
// validates the default audio track. The returned file must be closed
// after the source.
func openSource(path string, reg *audio.Registry) (audio.Source, *os.File, Info, error) {
	info := Info{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, info, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	header := make([]byte, audio.SniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, nil, info, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, nil, info, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	format, dec, err := reg.Probe(filepath.Ext(path), header[:n])
	if err != nil {
		_ = f.Close()
		return nil, nil, info, err
	}
	info.Format = format

	src, err := dec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, info, fmt.Errorf("%s %s: %w", format, filepath.Base(path), err)
	}

	if src.Channels() <= 0 || src.SampleRate() <= 0 {
		_ = src.Close()
		_ = f.Close()
		return nil, nil, info, fmt.Errorf("%w: %s has no usable audio track", audio.ErrTrack, filepath.Base(path))
	}

	info.Channels = src.Channels()
	info.SampleRate = src.SampleRate()
	info.Layout = audio.LayoutOf(src)

	return src, f, info, nil
}

// Probe reports the format of path without decoding its audio.
func Probe(path string, reg *audio.Registry) (Info, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	src, f, info, err := openSource(path, reg)
	if err != nil {
		return info, err
	}

	_ = src.Close()
	_ = f.Close()

	return info, nil
}
