// Package stream splits a complete answer into paced chunks for
// incremental delivery. Chunking favors perceived responsiveness: the
// first chunk arrives fast, later chunks slow toward reading pace, and
// replayed cached answers use a uniformly fast schedule.
package stream

import (
	"strings"
	"time"
)

// Chunk is one unit of a streamed answer. The terminal chunk carries no
// text and always closes the sequence.
type Chunk struct {
	Index    int
	Text     string
	Delay    time.Duration
	Terminal bool
}

// Config controls chunk sizing and pacing. Zero values select defaults.
type Config struct {
	MinChunkWords    int
	TargetChunkCount int
	FirstDelay       time.Duration
	EarlyDelay       time.Duration
	LateDelay        time.Duration
	CachedDelay      time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinChunkWords <= 0 {
		c.MinChunkWords = 8
	}
	if c.TargetChunkCount <= 0 {
		c.TargetChunkCount = 25
	}
	if c.FirstDelay <= 0 {
		c.FirstDelay = 50 * time.Millisecond
	}
	if c.EarlyDelay <= 0 {
		c.EarlyDelay = 80 * time.Millisecond
	}
	if c.LateDelay <= 0 {
		c.LateDelay = 120 * time.Millisecond
	}
	if c.CachedDelay <= 0 {
		c.CachedDelay = 50 * time.Millisecond
	}
	return c
}

// Chunker produces finite chunk sequences from answer text.
type Chunker struct {
	cfg Config
}

// New creates a Chunker with defaults applied.
func New(cfg Config) *Chunker {
	return &Chunker{cfg: cfg.withDefaults()}
}

// Chunk splits text into word groups of roughly equal size, each with a
// delivery delay. cached selects the uniform fast schedule. The
// returned sequence always ends with exactly one terminal marker, and
// any non-empty text yields at least one content chunk.
func (c *Chunker) Chunk(text string, cached bool) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []Chunk{{Index: 0, Terminal: true}}
	}

	size := len(words) / c.cfg.TargetChunkCount
	if size < c.cfg.MinChunkWords {
		size = c.cfg.MinChunkWords
	}

	var chunks []Chunk
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		idx := len(chunks)
		chunks = append(chunks, Chunk{
			Index: idx,
			Text:  strings.Join(words[start:end], " ") + " ",
			Delay: c.delay(idx, cached),
		})
	}

	chunks = append(chunks, Chunk{Index: len(chunks), Terminal: true})
	return chunks
}

// delay is front-loaded short and rises toward reading pace.
func (c *Chunker) delay(idx int, cached bool) time.Duration {
	if cached {
		return c.cfg.CachedDelay
	}
	switch {
	case idx == 0:
		return c.cfg.FirstDelay
	case idx < 3:
		return c.cfg.EarlyDelay
	default:
		return c.cfg.LateDelay
	}
}
