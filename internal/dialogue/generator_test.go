package dialogue

import (
	"context"
	"fmt"
	"testing"
)

type scriptedClient struct {
	replies []string
	failAt  int // 1-based call index that fails; 0 means never
	calls   int
}

func (c *scriptedClient) GenerateText(_ context.Context, _ string) (string, error) {
	c.calls++
	if c.failAt > 0 && c.calls >= c.failAt {
		return "", fmt.Errorf("model unavailable")
	}
	if c.calls <= len(c.replies) {
		return c.replies[c.calls-1], nil
	}
	return fmt.Sprintf("line %d", c.calls), nil
}

func (c *scriptedClient) Name() string { return "scripted" }
func (c *scriptedClient) Close() error { return nil }

func TestGenerateRoundRobinPersonas(t *testing.T) {
	llm := &scriptedClient{}
	g := NewGenerator(llm, 4)

	res, err := g.Generate(context.Background(), "doc text", []string{"Ana", "Bruno"}, nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(res.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(res.Lines))
	}
	want := []string{"Ana", "Bruno", "Ana", "Bruno"}
	for i, l := range res.Lines {
		if l.Persona != want[i] {
			t.Fatalf("turn %d spoken by %s, want %s", i+1, l.Persona, want[i])
		}
	}
	if res.Truncated {
		t.Fatal("full run must not be truncated")
	}
}

func TestGenerateMidFailureKeepsPartial(t *testing.T) {
	llm := &scriptedClient{failAt: 3}
	g := NewGenerator(llm, 6)

	res, err := g.Generate(context.Background(), "doc text", []string{"Ana", "Bruno"}, nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !res.Truncated {
		t.Fatal("mid-conversation failure must mark the result truncated")
	}
	if len(res.Lines) != 2 {
		t.Fatalf("expected 2 surviving lines, got %d", len(res.Lines))
	}
	if llm.calls != 3 {
		t.Fatalf("loop must stop at the failing turn, made %d calls", llm.calls)
	}
}

func TestGenerateFirstTurnFailureIsError(t *testing.T) {
	llm := &scriptedClient{failAt: 1}
	g := NewGenerator(llm, 6)

	if _, err := g.Generate(context.Background(), "doc text", []string{"Ana", "Bruno"}, nil); err == nil {
		t.Fatal("first-turn failure must be an error")
	}
}

func TestGenerateEnforcesHardCap(t *testing.T) {
	llm := &scriptedClient{}
	g := NewGenerator(llm, 50)

	res, err := g.Generate(context.Background(), "doc text", []string{"Ana", "Bruno"}, nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(res.Lines) != HardMaxTurns {
		t.Fatalf("expected %d lines at the hard cap, got %d", HardMaxTurns, len(res.Lines))
	}
}

func TestGenerateRequiresTwoPersonas(t *testing.T) {
	g := NewGenerator(&scriptedClient{}, 4)
	if _, err := g.Generate(context.Background(), "doc", []string{"Solo"}, nil); err == nil {
		t.Fatal("single persona must be rejected")
	}
}

func TestGenerateReportsProgress(t *testing.T) {
	llm := &scriptedClient{}
	g := NewGenerator(llm, 3)

	var turns []int
	_, err := g.Generate(context.Background(), "doc", []string{"Ana", "Bruno"}, func(turn int, _ Line) {
		turns = append(turns, turn)
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(turns) != 3 || turns[0] != 1 || turns[2] != 3 {
		t.Fatalf("unexpected progress turns: %v", turns)
	}
}
