package csvwriter

import (
	"bufio"
	"errors"
	"io"
	"iter"
)

type sessionState int

const (
	stateStart sessionState = iota
	stateHeaderWritten
	stateFinished
	stateFailed
)

func (s sessionState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateHeaderWritten:
		return "header_written"
	case stateFinished:
		return "finished"
	default:
		return "failed"
	}
}

// session writes one document. It owns w until finish returns.
type session struct {
	w        *bufio.Writer
	registry *Registry
	delim    string
	state    sessionState
	records  int
	bytes    int
}

var errInterrupted = errors.New("session interrupted")

func writeSeq[T any](w io.Writer, seq iter.Seq[T], cfg config) (err error) {
	s := &session{
		w:        bufio.NewWriter(w),
		registry: cfg.registry,
	}
	completed := false
	defer func() {
		// Runs while a panic unwinds too; the panic keeps going after the flush.
		if !completed {
			err = errInterrupted
		}
		reached := s.state
		if err = s.finish(err); err != nil {
			cfg.logger.Error("csv write failed",
				"records", s.records, "reached", reached, "state", s.state, "error", err)
			return
		}
		cfg.logger.Debug("csv write finished",
			"records", s.records, "bytes", s.bytes, "state", s.state)
	}()
	for item := range seq {
		if err = s.write(any(item)); err != nil {
			break
		}
	}
	completed = true
	return err
}

func (s *session) write(record any) error {
	shape, err := s.registry.lookup(record)
	if err != nil {
		return err
	}
	if s.state == stateStart {
		s.delim = delimiterOf(record)
		if err := s.line(shape.header(s.delim)); err != nil {
			return err
		}
		s.state = stateHeaderWritten
	}
	line, err := shape.encode(record, s.delim)
	if err != nil {
		return err
	}
	if err := s.line(line); err != nil {
		return err
	}
	s.records++
	return nil
}

func (s *session) line(text string) error {
	n, err := s.w.WriteString(text)
	s.bytes += n
	if err != nil {
		return sinkError("write", err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return sinkError("write", err)
	}
	s.bytes++
	return nil
}

// finish flushes on every path so lines produced before a failure still
// reach the sink.
func (s *session) finish(err error) error {
	if ferr := s.w.Flush(); ferr != nil && !errors.Is(err, ErrSink) {
		err = errors.Join(err, sinkError("flush", ferr))
	}
	if err != nil {
		s.state = stateFailed
		return err
	}
	s.state = stateFinished
	return nil
}
