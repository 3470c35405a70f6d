package quiz

import (
	"context"
	"testing"

	"github.com/EyadAmgad/EduMentorAI/internal/generate"
	"github.com/EyadAmgad/EduMentorAI/internal/models"
)

// cannedGenerator returns a fixed Complete reply.
type cannedGenerator struct {
	reply string
	err   error
}

func (g *cannedGenerator) Name() string { return "canned" }

func (g *cannedGenerator) Stream(context.Context, generate.Request) (generate.Stream, error) {
	panic("not used")
}

func (g *cannedGenerator) Complete(context.Context, generate.Request) (string, error) {
	return g.reply, g.err
}

func TestBuildParsesWellFormedJSON(t *testing.T) {
	b := NewBuilder(&cannedGenerator{reply: `{"questions":[
		{"question":"What is 2+2?","options":["3","4","5","6"],"answer":1},
		{"question":"What color is the sky?","options":["blue","green"],"answer":0}
	]}`})

	questions, err := b.Build(context.Background(), "arithmetic and nature", 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].Prompt != "What is 2+2?" || questions[0].Answer != 1 {
		t.Fatalf("question 0 = %+v", questions[0])
	}
	if questions[1].Position != 1 {
		t.Fatalf("position = %d, want 1", questions[1].Position)
	}
}

func TestBuildRepairsMalformedJSON(t *testing.T) {
	// Unquoted keys, trailing comma, code fences: typical model output
	b := NewBuilder(&cannedGenerator{reply: "```json\n" +
		`{questions: [{question: "Pick one", options: ["a", "b", "c"], answer: 2},]}` +
		"\n```"})

	questions, err := b.Build(context.Background(), "source", 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) != 1 || questions[0].Answer != 2 {
		t.Fatalf("questions = %+v", questions)
	}
}

func TestBuildSkipsInvalidQuestions(t *testing.T) {
	b := NewBuilder(&cannedGenerator{reply: `{"questions":[
		{"question":"","options":["a","b"],"answer":0},
		{"question":"only one option","options":["a"],"answer":0},
		{"question":"answer out of range","options":["a","b"],"answer":5},
		{"question":"valid","options":["a","b"],"answer":1}
	]}`})

	questions, err := b.Build(context.Background(), "source", 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) != 1 || questions[0].Prompt != "valid" {
		t.Fatalf("questions = %+v", questions)
	}
}

func TestBuildRejectsUnusableOutput(t *testing.T) {
	b := NewBuilder(&cannedGenerator{reply: `{"questions":[]}`})
	if _, err := b.Build(context.Background(), "source", 3); err == nil {
		t.Fatal("empty question list should be an error")
	}
}

func TestBuildWithScriptedGenerator(t *testing.T) {
	b := NewBuilder(generate.NewScriptedGenerator())
	questions, err := b.Build(context.Background(), "study notes about recursion", 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) == 0 {
		t.Fatal("scripted generator should yield questions")
	}
}

func TestScore(t *testing.T) {
	questions := []models.QuizQuestion{
		{Answer: 0}, {Answer: 2}, {Answer: 1},
	}

	tests := []struct {
		name    string
		answers []int
		score   int
	}{
		{"all correct", []int{0, 2, 1}, 3},
		{"some correct", []int{0, 0, 1}, 2},
		{"none correct", []int{1, 0, 0}, 0},
		{"missing answers count wrong", []int{0}, 1},
		{"extra answers ignored", []int{0, 2, 1, 0, 0}, 3},
		{"no answers", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, total := Score(questions, tt.answers)
			if score != tt.score || total != 3 {
				t.Fatalf("Score = (%d, %d), want (%d, 3)", score, total, tt.score)
			}
		})
	}
}
