package questions

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	testCases := []struct {
		name     string
		wakeWord string
		text     string
		expected []string
	}{
		{
			name:     "two questions",
			wakeWord: "jarvis",
			text:     "Jarvis, what time is it? JARVIS tell me a joke",
			expected: []string{", what time is it?", "tell me a joke"},
		},
		{
			name:     "text before the wake word is kept",
			wakeWord: "jarvis",
			text:     "Hey there jarvis what is the weather",
			expected: []string{"hey there", "what is the weather"},
		},
		{
			name:     "wake word only",
			wakeWord: "jarvis",
			text:     "  Jarvis   jarvis ",
			expected: nil,
		},
		{
			name:     "mid sentence occurrence splits",
			wakeWord: "jarvis",
			text:     "jarvis do you know the jarvis project",
			expected: []string{"do you know the", "project"},
		},
		{
			name:     "wake word is normalized",
			wakeWord: "  Friday ",
			text:     "friday open the door",
			expected: []string{"open the door"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewSplitter(tc.wakeWord).Split(tc.text)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	splitter := NewSplitter("Jarvis")
	if !splitter.Contains("Okay JARVIS, lights") {
		t.Fatalf("expected the wake word to be found")
	}
	if splitter.Contains("nothing to see here") {
		t.Fatalf("expected no wake word")
	}
}

func TestExtract(t *testing.T) {
	splitter := NewSplitter("")
	if splitter.WakeWord() != DefaultWakeWord {
		t.Fatalf("expected default wake word, got %q", splitter.WakeWord())
	}

	if _, err := splitter.Extract("what time is it"); !errors.Is(err, ErrWakeWordMissing) {
		t.Fatalf("expected ErrWakeWordMissing, got %v", err)
	}
	if _, err := splitter.Extract("jarvis"); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}

	questions, err := splitter.Extract("Jarvis what time is it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 || questions[0] != "what time is it" {
		t.Fatalf("unexpected questions %q", questions)
	}
}
