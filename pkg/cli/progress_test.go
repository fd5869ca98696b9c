package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestBatchProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewBatchProgress(buf)

	progress.Start(3)
	progress.Done(true)
	progress.Done(false)
	progress.Done(true)
	progress.Finish()

	out := buf.String()
	if !strings.Contains(out, "(3/3)") || !strings.Contains(out, "100%") {
		t.Errorf("missing completion in output: %q", out)
	}
	if !strings.Contains(out, "2 generated, 1 fell back") {
		t.Errorf("missing tally in output: %q", out)
	}
	if g, f := progress.Counts(); g != 2 || f != 1 {
		t.Errorf("Counts() = %d, %d", g, f)
	}
}

func TestBatchProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewBatchProgress(buf)

	progress.Start(0)
	progress.Finish()

	if strings.Contains(buf.String(), "[") {
		t.Errorf("zero total should not render a bar: %q", buf.String())
	}
}

func TestBatchProgress_Concurrent(t *testing.T) {
	progress := NewBatchProgress(&bytes.Buffer{})
	progress.Start(50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			progress.Done(i%5 != 0)
		}(i)
	}
	wg.Wait()

	if g, f := progress.Counts(); g != 40 || f != 10 {
		t.Errorf("Counts() = %d, %d", g, f)
	}
}
