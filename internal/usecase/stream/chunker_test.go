package stream

import (
	"context"
	"strings"
	"testing"
	"time"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestChunkReassemblesWords(t *testing.T) {
	c := New(Config{})
	text := "The capital of France is Paris, a city known for art and history."

	var rebuilt []string
	terminals := 0
	for _, ch := range c.Chunk(text, false) {
		if ch.Terminal {
			terminals++
			if ch.Text != "" {
				t.Error("terminal chunk must carry no text")
			}
			continue
		}
		rebuilt = append(rebuilt, strings.Fields(ch.Text)...)
	}

	if terminals != 1 {
		t.Fatalf("expected exactly one terminal chunk, got %d", terminals)
	}
	want := strings.Fields(text)
	if len(rebuilt) != len(want) {
		t.Fatalf("word count mismatch: got %d, want %d", len(rebuilt), len(want))
	}
	for i := range want {
		if rebuilt[i] != want[i] {
			t.Fatalf("word %d: got %q, want %q", i, rebuilt[i], want[i])
		}
	}
}

func TestChunkTerminalIsLast(t *testing.T) {
	c := New(Config{})
	chunks := c.Chunk(words(100), false)

	for i, ch := range chunks {
		isLast := i == len(chunks)-1
		if ch.Terminal != isLast {
			t.Fatalf("chunk %d: terminal=%v at position %d of %d", i, ch.Terminal, i, len(chunks))
		}
		if ch.Index != i {
			t.Errorf("chunk %d: index %d", i, ch.Index)
		}
	}
}

func TestChunkSingleWord(t *testing.T) {
	c := New(Config{})
	chunks := c.Chunk("hi", false)

	if len(chunks) != 2 {
		t.Fatalf("expected one content chunk plus terminal, got %d chunks", len(chunks))
	}
	if strings.TrimSpace(chunks[0].Text) != "hi" {
		t.Errorf("got %q", chunks[0].Text)
	}
}

func TestChunkEmptyText(t *testing.T) {
	c := New(Config{})
	chunks := c.Chunk("", false)

	if len(chunks) != 1 || !chunks[0].Terminal {
		t.Fatalf("expected only the terminal marker, got %+v", chunks)
	}
}

func TestChunkSizeScalesWithLength(t *testing.T) {
	c := New(Config{})

	// 1000 words / 25 target chunks = 40 words per chunk.
	chunks := c.Chunk(words(1000), false)
	content := chunks[:len(chunks)-1]
	if len(content) != 25 {
		t.Errorf("expected 25 content chunks, got %d", len(content))
	}

	// Short answers never go below the minimum chunk size.
	chunks = c.Chunk(words(20), false)
	content = chunks[:len(chunks)-1]
	for _, ch := range content {
		if n := len(strings.Fields(ch.Text)); n > 8 && ch != content[len(content)-1] {
			t.Errorf("chunk exceeds expected size: %d words", n)
		}
	}
	if len(content) != 3 {
		t.Errorf("expected 3 chunks of up to 8 words for 20 words, got %d", len(content))
	}
}

func TestFreshDelaySchedule(t *testing.T) {
	c := New(Config{})
	chunks := c.Chunk(words(100), false)

	want := []time.Duration{
		50 * time.Millisecond,
		80 * time.Millisecond,
		80 * time.Millisecond,
		120 * time.Millisecond,
	}
	for i, d := range want {
		if chunks[i].Delay != d {
			t.Errorf("chunk %d: delay %v, want %v", i, chunks[i].Delay, d)
		}
	}
}

func TestCachedDelayScheduleIsUniform(t *testing.T) {
	c := New(Config{})
	chunks := c.Chunk(words(100), true)

	for _, ch := range chunks[:len(chunks)-1] {
		if ch.Delay != 50*time.Millisecond {
			t.Errorf("chunk %d: delay %v, want 50ms", ch.Index, ch.Delay)
		}
	}
}

func TestDeliverCompletes(t *testing.T) {
	c := New(Config{FirstDelay: time.Millisecond, EarlyDelay: time.Millisecond,
		LateDelay: time.Millisecond, CachedDelay: time.Millisecond})
	chunks := c.Chunk(words(30), false)

	got := 0
	for range Deliver(context.Background(), chunks) {
		got++
	}
	if got != len(chunks) {
		t.Fatalf("delivered %d of %d chunks", got, len(chunks))
	}
}

func TestDeliverStopsOnCancel(t *testing.T) {
	c := New(Config{})
	chunks := c.Chunk(words(1000), false)

	ctx, cancel := context.WithCancel(context.Background())
	out := Deliver(ctx, chunks)

	// Take one chunk, then disconnect.
	first, ok := <-out
	if !ok || first.Terminal {
		t.Fatal("expected a content chunk first")
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return // closed without draining the full sequence
			}
		case <-deadline:
			t.Fatal("delivery did not stop after cancellation")
		}
	}
}
