// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// SniffLen is the number of leading bytes handed to Sniffer implementations.
const SniffLen = 64

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// LayoutSource is implemented by sources that know which speaker each
// interleaved channel feeds.
type LayoutSource interface {
	Layout() Layout
}

// LayoutOf returns the channel layout of src, falling back to the canonical
// WAVE ordering for its channel count.
func LayoutOf(src Source) Layout {
	if ls, ok := src.(LayoutSource); ok {
		if l := ls.Layout(); len(l) == src.Channels() {
			return l
		}
	}

	return DefaultLayout(src.Channels())
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Sniffer is implemented by decoders that can recognize their container
// from its first SniffLen bytes.
type Sniffer interface {
	Sniff(header []byte) bool
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder
	exts   map[string]string
	order  []string

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		exts:   make(map[string]string),
		mtx:    &sync.RWMutex{},
	}
}

// Register adds d under format. The format key itself and every extension
// given are accepted as probe hints.
func (r *Registry) Register(format string, d Decoder, extensions ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.codecs[format]; !ok {
		r.order = append(r.order, format)
	}
	r.codecs[format] = d
	r.exts[normalizeExt(format)] = format
	for _, ext := range extensions {
		r.exts[normalizeExt(ext)] = format
	}
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats lists registered format keys in registration order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return slices.Clone(r.order)
}

// Probe picks a decoder for a stream whose first bytes are header.
// The extension hint is tried first; it only wins when its decoder cannot
// sniff or its sniff accepts the header. Otherwise every registered sniffer
// is tried in registration order.
func (r *Registry) Probe(hint string, header []byte) (string, Decoder, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	if format, ok := r.exts[normalizeExt(hint)]; ok {
		d := r.codecs[format]
		s, canSniff := d.(Sniffer)
		if !canSniff || s.Sniff(header) {
			return format, d, nil
		}
	}

	for _, format := range r.order {
		if s, ok := r.codecs[format].(Sniffer); ok && s.Sniff(header) {
			return format, r.codecs[format], nil
		}
	}

	return "", nil, fmt.Errorf("%w: hint %q", ErrFormat, hint)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
