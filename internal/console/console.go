// Package console drives the widget from line-oriented input: every line read
// is an Enter press carrying that line, every display change is printed.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ffaiyaz23/querywidget/internal/widget"
)

// maxLineSize bounds a single input line.
const maxLineSize = 16 << 20

type display struct {
	mu  sync.Mutex
	out io.Writer
}

func (d *display) Show(_ widget.State, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, text)
}

// Run reads in until EOF, submitting each line, and returns once every
// request it started has resolved.
func Run(ctx context.Context, client widget.Querier, in io.Reader, out io.Writer) error {
	w := widget.New(client, &display{out: out}, nil)

	var wg sync.WaitGroup
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for scanner.Scan() {
		done := w.HandleKey(ctx, widget.EnterKey, scanner.Text())
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-done
		}()
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
