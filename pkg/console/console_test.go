package console

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConsole_BannerAndClear(t *testing.T) {
	c := New()

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 banner lines", c.Len())
	}

	c.AddLogEntry("--- demo.txt ---")
	c.AddLogEntry("Success: File 'demo.txt' successfully parsed!")
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}

	c.Clear()
	if c.Len() != 2 {
		t.Errorf("Len() after Clear = %d, want 2", c.Len())
	}
}

func TestConsole_NoBanner(t *testing.T) {
	c := New(WithBanner(""))

	c.AddLogEntry("a")
	c.AddLogEntry("b")

	if diff := cmp.Diff([]string{"a", "b"}, c.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
	if got := c.String(); got != "a\nb" {
		t.Errorf("String() = %q, want %q", got, "a\nb")
	}
}

func TestConsole_Since(t *testing.T) {
	c := New(WithBanner(""))
	c.AddLogEntry("one")
	mark := c.Len()
	c.AddLogEntry("two")
	c.AddLogEntry("three")

	if diff := cmp.Diff([]string{"two", "three"}, c.Since(mark)); diff != "" {
		t.Errorf("Since() mismatch (-want +got):\n%s", diff)
	}
	if got := c.Since(10); got != nil {
		t.Errorf("Since(10) = %v, want nil", got)
	}
}

func TestConsole_Verbose(t *testing.T) {
	c := New(WithVerbose(false))
	if c.Verbose() {
		t.Fatal("Verbose() = true, want false")
	}
	if !c.ToggleVerbose() {
		t.Error("ToggleVerbose() = false, want true")
	}
	c.SetVerbose(false)
	if c.Verbose() {
		t.Error("Verbose() = true after SetVerbose(false)")
	}
}

func TestConsole_Mirror(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithBanner(""), WithMirror(&buf))

	c.AddLogEntry("Line 1: WINDOW -> Window")

	if got, want := buf.String(), "Line 1: WINDOW -> Window\n"; got != want {
		t.Errorf("mirror = %q, want %q", got, want)
	}
}

func TestConsole_Concurrent(t *testing.T) {
	c := New(WithBanner(""))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddLogEntry("x")
				c.ToggleVerbose()
			}
		}()
	}
	wg.Wait()

	if c.Len() != 800 {
		t.Errorf("Len() = %d, want 800", c.Len())
	}
}
