package player

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os/exec"
	"sync"

	"github.com/mpx-cli/mpx/log"
)

const maxLineSize = 1024 * 1024

// ProcessEvent is produced by a Process for every output line and once when
// the process instance has exited.
type ProcessEvent struct {
	// Instance identifies the launch that produced the event.
	Instance int

	Line    string
	IsError bool

	Terminated bool
	ExitCode   int
}

// Process runs one player child at a time.
type Process interface {
	// Start launches path with args in dir and returns the instance number.
	// Events of the instance carry the same number.
	Start(path string, args []string, dir string) (int, error)
	// WriteLine writes text followed by a newline to the child's input.
	WriteLine(text string) error
	// Terminate asks the child to exit. It does not wait.
	Terminate() error
	// Kill stops the child and its process group immediately.
	Kill() error
	// Running reports whether a child is alive.
	Running() bool
}

// ProcessFactory creates a Process that delivers its events to sink.
type ProcessFactory func(sink func(ProcessEvent)) Process

// Supervisor is the Process backed by an operating system child.
type Supervisor struct {
	sink func(ProcessEvent)

	mu       sync.Mutex
	cmd      *exec.Cmd
	input    *lineQueue
	exited   chan struct{}
	instance int
}

// NewSupervisor returns a Supervisor delivering events to sink. sink is
// called from reader goroutines and must not block for long.
func NewSupervisor(sink func(ProcessEvent)) *Supervisor {
	exited := make(chan struct{})
	close(exited)
	return &Supervisor{sink: sink, exited: exited}
}

// Start implements Process.
func (s *Supervisor) Start(path string, args []string, dir string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return 0, ErrAlreadyRunning
	}

	bin, err := exec.LookPath(path)
	if err != nil {
		return 0, &LaunchError{Path: path, Err: err}
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.SysProcAttr = sysProcAttr()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, &LaunchError{Path: path, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, &LaunchError{Path: path, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, &LaunchError{Path: path, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return 0, &LaunchError{Path: path, Err: err}
	}

	s.instance++
	s.cmd = cmd
	s.input = newLineQueue(stdin)
	s.exited = make(chan struct{})

	instance := s.instance
	exited := s.exited
	input := s.input

	log.With(log.Fields{"pid": cmd.Process.Pid, "instance": instance}).Infof("started %s", bin)

	var readers sync.WaitGroup
	readers.Add(2)
	go s.read(&readers, instance, stdout, false)
	go s.read(&readers, instance, stderr, true)

	go func() {
		readers.Wait()
		code := 0
		if err := cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				log.WithError(err).Warn("waiting for player")
			}
		}
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}

		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
			s.input = nil
		}
		s.mu.Unlock()
		input.close()
		close(exited)

		log.With(log.Fields{"instance": instance, "code": code}).Info("player exited")
		s.sink(ProcessEvent{Instance: instance, Terminated: true, ExitCode: code})
	}()

	return instance, nil
}

func (s *Supervisor) read(wg *sync.WaitGroup, instance int, r io.Reader, isError bool) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		s.sink(ProcessEvent{Instance: instance, Line: line, IsError: isError})
	}

	if err := scanner.Err(); err != nil {
		log.WithError(err).Warn("reading player output")
		// keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, r)
	}
}

// WriteLine implements Process. The line is queued for the child's input
// and written by a goroutine of the instance; a failed write is reported
// by the next call.
func (s *Supervisor) WriteLine(text string) error {
	s.mu.Lock()
	input := s.input
	s.mu.Unlock()

	if input == nil {
		return &WriteError{Command: text, Err: ErrNotRunning}
	}
	if err := input.push(text); err != nil {
		return &WriteError{Command: text, Err: err}
	}
	return nil
}

// Terminate implements Process.
func (s *Supervisor) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil
	}
	return terminateProcess(s.cmd)
}

// Kill implements Process.
func (s *Supervisor) Kill() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil
	}
	return killProcess(s.cmd)
}

// Running implements Process.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Wait returns a channel that is closed when the current child has exited.
func (s *Supervisor) Wait() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// lineQueue feeds the input of one child. A child that stops reading
// blocks only the queue's goroutine.
type lineQueue struct {
	w    io.Writer
	wake chan struct{}

	mu     sync.Mutex
	lines  []string
	err    error
	closed bool
}

func newLineQueue(w io.Writer) *lineQueue {
	q := &lineQueue{w: w, wake: make(chan struct{}, 1)}
	go q.run()
	return q
}

func (q *lineQueue) push(text string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	if q.closed {
		return ErrNotRunning
	}
	q.lines = append(q.lines, text)
	q.signal()
	return nil
}

// close drops unwritten lines and stops the goroutine once its current
// write returns.
func (q *lineQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.lines = nil
	q.signal()
}

func (q *lineQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *lineQueue) next() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.lines) == 0 {
		return "", false
	}
	text := q.lines[0]
	q.lines = q.lines[1:]
	return text, true
}

func (q *lineQueue) run() {
	for range q.wake {
		for {
			text, ok := q.next()
			if !ok {
				break
			}
			if _, err := io.WriteString(q.w, text+"\n"); err != nil {
				log.With(log.Fields{"command": text}).WithError(err).Warn("writing to player")
				q.mu.Lock()
				q.err = err
				q.lines = nil
				q.mu.Unlock()
				return
			}
			log.Tracef("-> %s", text)
		}

		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return
		}
	}
}

// scanLines splits on either line terminator; status lines end in a bare '\r'.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
