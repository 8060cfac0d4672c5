package session

import "errors"

// ErrSpeechUnsupported is returned when no recognizer is available
var ErrSpeechUnsupported = errors.New("Speech recognition is not supported in your browser")

// SpeechEvents receives the lifecycle of one recognition run
type SpeechEvents struct {
	OnStart  func()
	OnResult func(transcript string)
	OnEnd    func()
}

// Recognizer produces transcripts through the supplied callbacks
type Recognizer interface {
	Start(events SpeechEvents) error
}

// Listen starts a recognition run that appends each transcript to the draft.
// Events from an earlier run are ignored once a new one starts.
func (s *Session) Listen(rec Recognizer) error {
	if rec == nil {
		return ErrSpeechUnsupported
	}

	s.mu.Lock()
	s.speechGen++
	gen := s.speechGen
	s.mu.Unlock()

	current := func() bool { return s.speechGen == gen }

	err := rec.Start(SpeechEvents{
		OnStart: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current() {
				s.listening = true
			}
		},
		OnResult: func(transcript string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !current() {
				return
			}
			s.draft += " " + transcript
		},
		OnEnd: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current() {
				s.listening = false
			}
		},
	})
	if err != nil {
		s.mu.Lock()
		if current() {
			s.listening = false
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// Listening reports whether a recognition run is active
func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}
