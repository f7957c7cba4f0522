package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"

	"podscript/internal/llmclient"
)

const (
	// HardMaxTurns bounds the conversation regardless of configuration; the
	// loop never issues more model calls than this per script.
	HardMaxTurns    = 10
	defaultMaxTurns = 10
)

// Line is one persona's utterance in the generated conversation.
type Line struct {
	Persona string `json:"persona"`
	Text    string `json:"text"`
}

// Result is a finished (possibly truncated) conversation plus its SSML
// rendering. Truncated is set when a mid-conversation model failure cut the
// loop short and the partial transcript was kept.
type Result struct {
	Lines     []Line
	SSML      []byte
	Truncated bool
}

// Progress is invoked after each completed turn. It must not block for long;
// the loop is sequential and waits for it.
type Progress func(turn int, line Line)

// Generator drives the model through a bounded round-robin conversation over
// a source text. One model call per turn, no retries.
type Generator struct {
	llm      llmclient.Client
	maxTurns int
}

func NewGenerator(llm llmclient.Client, maxTurns int) *Generator {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	if maxTurns > HardMaxTurns {
		maxTurns = HardMaxTurns
	}
	return &Generator{llm: llm, maxTurns: maxTurns}
}

// Generate produces a dialogue over sourceText between the given personas,
// speaking round-robin. The first turn failing is an error; a later failure
// stops the loop and returns the partial transcript with Truncated set.
func (g *Generator) Generate(ctx context.Context, sourceText string, personas []string, onProgress Progress) (*Result, error) {
	if g == nil || g.llm == nil {
		return nil, fmt.Errorf("dialogue: generator is not configured")
	}
	sourceText = strings.TrimSpace(sourceText)
	if sourceText == "" {
		return nil, fmt.Errorf("dialogue: source text is empty")
	}
	if len(personas) < 2 {
		return nil, fmt.Errorf("dialogue: at least two personas required, got %d", len(personas))
	}

	res := &Result{Lines: make([]Line, 0, g.maxTurns)}
	for turn := 0; turn < g.maxTurns; turn++ {
		persona := personas[turn%len(personas)]
		prompt := buildTurnPrompt(sourceText, personas, persona, res.Lines, turn == g.maxTurns-1)
		text, err := g.llm.GenerateText(ctx, prompt)
		if err != nil {
			if turn == 0 {
				return nil, fmt.Errorf("dialogue: first turn failed: %w", err)
			}
			log.Printf("WARN dialogue: turn %d (%s) failed, keeping partial script: %v", turn+1, persona, err)
			res.Truncated = true
			break
		}
		line := Line{Persona: persona, Text: strings.TrimSpace(text)}
		res.Lines = append(res.Lines, line)
		if onProgress != nil {
			onProgress(turn+1, line)
		}
	}

	res.SSML = RenderSSML(res.Lines)
	return res, nil
}

func buildTurnPrompt(sourceText string, personas []string, speaker string, sofar []Line, closing bool) string {
	var b strings.Builder
	b.WriteString("You are writing a podcast conversation about the document below.\n")
	b.WriteString("Speakers: ")
	b.WriteString(strings.Join(personas, ", "))
	b.WriteString(".\n\n[DOCUMENT]\n")
	b.WriteString(sourceText)
	b.WriteString("\n\n[CONVERSATION SO FAR]\n")
	if len(sofar) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, l := range sofar {
		b.WriteString(l.Persona)
		b.WriteString(": ")
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nWrite the next utterance for ")
	b.WriteString(speaker)
	if closing {
		b.WriteString(", wrapping the conversation up")
	}
	b.WriteString(". Reply with the spoken words only, no speaker label, no markup.")
	return b.String()
}
