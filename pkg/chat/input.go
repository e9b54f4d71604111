package chat

import (
	"bufio"
	"io"
)

// lineBuffer bounds the hand-off queue between the blocking reader and
// the dispatcher.
const lineBuffer = 16

// Lines bridges a blocking line source into a bounded channel the
// dispatcher can select on. The channel closes when the source ends.
func Lines(r io.Reader) <-chan string {
	out := make(chan string, lineBuffer)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			out <- scanner.Text()
		}
	}()
	return out
}
