// Package quiz turns generator output into stored quizzes. Model output is
// not trusted to be valid JSON; it is repaired before parsing.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/EyadAmgad/EduMentorAI/internal/generate"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

const quizSystemPrompt = "You write multiple-choice quizzes. Respond with JSON only, " +
	`shaped as {"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "answer": 0}]}. ` +
	"The answer field is the zero-based index of the correct option. No prose, no code fences."

const (
	MinQuestions = 1
	MaxQuestions = 20
)

// Builder generates quiz questions from source material.
type Builder struct {
	gen generate.Generator
}

// NewBuilder creates a quiz builder on top of a generator.
func NewBuilder(gen generate.Generator) *Builder {
	return &Builder{gen: gen}
}

type rawQuiz struct {
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// Build asks the generator for numQuestions questions about the source text
// and parses the reply into quiz questions. Positions are assigned in reply
// order; ids are left for the store to fill.
func (b *Builder) Build(ctx context.Context, source string, numQuestions int) ([]models.QuizQuestion, error) {
	if numQuestions < MinQuestions {
		numQuestions = MinQuestions
	}
	if numQuestions > MaxQuestions {
		numQuestions = MaxQuestions
	}

	reply, err := b.gen.Complete(ctx, generate.Request{
		System: quizSystemPrompt,
		Message: fmt.Sprintf("Write %d multiple-choice questions covering this material:\n\n%s",
			numQuestions, source),
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	parsed, err := parseQuizJSON(reply)
	if err != nil {
		return nil, err
	}

	questions := make([]models.QuizQuestion, 0, len(parsed.Questions))
	for i, q := range parsed.Questions {
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			continue
		}
		questions = append(questions, models.QuizQuestion{
			Position: i,
			Prompt:   q.Question,
			Options:  q.Options,
			Answer:   q.Answer,
		})
		if len(questions) >= numQuestions {
			break
		}
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz generation: no usable questions in model output")
	}
	return questions, nil
}

// parseQuizJSON parses model output, repairing malformed JSON first if the
// strict parse fails. Models often wrap JSON in code fences; strip them.
func parseQuizJSON(reply string) (*rawQuiz, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var parsed rawQuiz
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		fixed, repairErr := jsonrepair.JSONRepair(reply)
		if repairErr != nil {
			return nil, fmt.Errorf("quiz generation: unparseable model output: %w", err)
		}
		if err := json.Unmarshal([]byte(fixed), &parsed); err != nil {
			return nil, fmt.Errorf("quiz generation: unparseable model output: %w", err)
		}
	}
	return &parsed, nil
}

// Score grades an attempt against the quiz's questions. Missing answers
// count as wrong; extra answers are ignored.
func Score(questions []models.QuizQuestion, answers []int) (score, total int) {
	total = len(questions)
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.Answer {
			score++
		}
	}
	return score, total
}
