package viewer

import (
	"errors"
)

// ErrPickCancelled is returned by a FilePicker when the user closed the dialog.
var ErrPickCancelled = errors.New("file selection cancelled")

// FilePicker asks the user for a file to open. It blocks and is run off the
// main thread.
type FilePicker func() (string, error)

// pickAsync runs pick in a goroutine and delivers the chosen path on out.
// Cancellation sends nothing; other failures are reported through fail.
// done is signalled when the dialog has closed.
func pickAsync(pick FilePicker, out chan<- string, done chan<- struct{}, fail func(error)) {
	go func() {
		defer func() { done <- struct{}{} }()
		path, err := pick()
		if err != nil {
			if !errors.Is(err, ErrPickCancelled) {
				fail(err)
			}
			return
		}
		out <- path
	}()
}
