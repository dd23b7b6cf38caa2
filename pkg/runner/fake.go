package runner

import (
	"context"
	"sync"
)

// Fake records commands instead of running them. Results are keyed by the
// full command line as returned by Command.String.
type Fake struct {
	mu      sync.Mutex
	Calls   []Command
	Errors  map[string]error
	Outputs map[string][]byte
}

// NewFake creates an empty Fake
func NewFake() *Fake {
	return &Fake{
		Errors:  make(map[string]error),
		Outputs: make(map[string][]byte),
	}
}

// Fail scripts an error for the given command line
func (f *Fake) Fail(line string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[line] = err
}

// Run records the command and returns its scripted error
func (f *Fake) Run(_ context.Context, cmd Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)
	return f.Errors[cmd.String()]
}

// Output records the command and returns its scripted output and error
func (f *Fake) Output(_ context.Context, cmd Command) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)
	line := cmd.String()
	return f.Outputs[line], f.Errors[line]
}

// Lines returns the recorded command lines in call order
func (f *Fake) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}
