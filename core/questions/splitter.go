// Package questions finds the questions addressed to the assistant in a
// transcript.
package questions

import (
	"errors"
	"strings"
)

const DefaultWakeWord = "jarvis"

var (
	ErrWakeWordMissing = errors.New("wake word not found")
	ErrNoQuestions     = errors.New("no questions found")
)

// Splitter splits transcripts on a case-insensitive wake word.
//
// Every occurrence of the wake word starts a new question, including
// occurrences in the middle of a sentence.
type Splitter struct {
	wakeWord string
}

func NewSplitter(wakeWord string) *Splitter {
	wakeWord = strings.ToLower(strings.TrimSpace(wakeWord))
	if wakeWord == "" {
		wakeWord = DefaultWakeWord
	}
	return &Splitter{wakeWord: wakeWord}
}

func (s *Splitter) WakeWord() string { return s.wakeWord }

// Contains reports whether text mentions the wake word in any case.
func (s *Splitter) Contains(text string) bool {
	return strings.Contains(strings.ToLower(text), s.wakeWord)
}

// Split lower-cases text and returns the trimmed, non-empty pieces between
// wake word occurrences in order. Text before the first occurrence counts as
// a question too.
func (s *Splitter) Split(text string) []string {
	var questions []string
	for _, piece := range strings.Split(strings.ToLower(text), s.wakeWord) {
		if question := strings.TrimSpace(piece); question != "" {
			questions = append(questions, question)
		}
	}
	return questions
}

// Extract combines Contains and Split and reports why nothing was found.
func (s *Splitter) Extract(text string) ([]string, error) {
	if !s.Contains(text) {
		return nil, ErrWakeWordMissing
	}
	questions := s.Split(text)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}
