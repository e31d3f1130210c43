package completion

// Stream is a lazy, forward-only sequence of assistant text chunks.
//
//	for s.Next() {
//		use(s.Chunk())
//	}
//	if err := s.Err(); err != nil { ... }
//
// Next returns false once the producer signals completion or fails; Err
// reports the failure, if any. Close releases the underlying connection and
// is safe to call more than once.
type Stream interface {
	Next() bool
	Chunk() string
	Err() error
	Close() error
}

// PullFunc yields the next raw fragment. ok=false ends the stream.
type PullFunc func() (chunk string, ok bool, err error)

// NewStream adapts a pull function into a Stream. Empty fragments are
// skipped so consumers only ever see non-empty chunks.
func NewStream(pull PullFunc, closeFn func() error) Stream {
	return &pullStream{pull: pull, closeFn: closeFn}
}

type pullStream struct {
	pull    PullFunc
	closeFn func() error
	cur     string
	err     error
	done    bool
	closed  bool
}

func (s *pullStream) Next() bool {
	for !s.done {
		chunk, ok, err := s.pull()
		if err != nil {
			s.err = err
			s.done = true
			break
		}
		if !ok {
			s.done = true
			break
		}
		if chunk == "" {
			continue
		}
		s.cur = chunk
		return true
	}
	s.cur = ""
	return false
}

func (s *pullStream) Chunk() string { return s.cur }

func (s *pullStream) Err() error { return s.err }

func (s *pullStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// SliceStream returns a Stream over fixed chunks followed by err.
func SliceStream(chunks []string, err error) Stream {
	i := 0
	return NewStream(func() (string, bool, error) {
		if i < len(chunks) {
			i++
			return chunks[i-1], true, nil
		}
		if err != nil {
			return "", false, err
		}
		return "", false, nil
	}, nil)
}

// Collect drains s and returns the concatenated text.
func Collect(s Stream) (string, error) {
	defer s.Close()
	var out []byte
	for s.Next() {
		out = append(out, s.Chunk()...)
	}
	return string(out), s.Err()
}
