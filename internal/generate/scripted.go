package generate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// scriptedQuizJSON is what Complete returns when asked for quiz questions,
// so the quiz pipeline works end to end without an API key.
const scriptedQuizJSON = `{"questions": [
  {"question": "Which statement best summarizes the material?",
   "options": ["It introduces the topic", "It is unrelated", "It is a glossary", "It is an index"],
   "answer": 0},
  {"question": "What should you do after reading?",
   "options": ["Forget it", "Review the key points", "Skip ahead", "Nothing"],
   "answer": 1}
]}`

// ScriptedGenerator is the development and test backend. It produces a
// deterministic answer derived from the request, split into small fragments.
type ScriptedGenerator struct{}

// NewScriptedGenerator creates the scripted backend.
func NewScriptedGenerator() *ScriptedGenerator {
	return &ScriptedGenerator{}
}

func (g *ScriptedGenerator) Name() string {
	return "scripted"
}

func (g *ScriptedGenerator) answer(req Request) string {
	return fmt.Sprintf("**Let's work through that.**\n\nYou asked: %q\n\n"+
		"Here is a structured way to think about it:\n\n"+
		"1. Identify what the question is really asking.\n"+
		"2. Find the relevant section in your material.\n"+
		"3. Restate the idea in your own words.\n\n"+
		"Ask a follow-up if any step is unclear.", req.Message)
}

// Stream splits the scripted answer into word-sized fragments.
func (g *ScriptedGenerator) Stream(_ context.Context, req Request) (Stream, error) {
	if strings.Contains(req.Message, "!!fail") {
		// Lets development clients exercise the mid-stream failure path.
		return &scriptedStream{fragments: []string{"Partial answer before "}, failAfter: true}, nil
	}
	text := g.answer(req)
	var fragments []string
	for _, word := range strings.SplitAfter(text, " ") {
		if word != "" {
			fragments = append(fragments, word)
		}
	}
	return &scriptedStream{fragments: fragments}, nil
}

// Complete returns the scripted answer, or canned quiz JSON when the prompt
// asks for questions.
func (g *ScriptedGenerator) Complete(_ context.Context, req Request) (string, error) {
	if strings.Contains(req.System, "JSON") || strings.Contains(req.Message, "JSON") {
		return scriptedQuizJSON, nil
	}
	return g.answer(req), nil
}

type scriptedStream struct {
	mu        sync.Mutex
	fragments []string
	pos       int
	failAfter bool
}

func (s *scriptedStream) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.fragments) {
		if s.failAfter {
			return "", fmt.Errorf("scripted failure")
		}
		return "", io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	return f, nil
}

func (s *scriptedStream) Close() error {
	return nil
}
