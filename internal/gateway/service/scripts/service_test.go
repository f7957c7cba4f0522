package scripts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"podscript/internal/dialogue"
	"podscript/internal/gateway/repository/blob"
	"podscript/internal/gateway/repository/record"
	"podscript/internal/script"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractURL(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	result *dialogue.Result
	err    error

	gotText     string
	gotPersonas []string
}

func (f *fakeGenerator) Generate(_ context.Context, sourceText string, personas []string, onProgress dialogue.Progress) (*dialogue.Result, error) {
	f.gotText = sourceText
	f.gotPersonas = personas
	if f.err != nil {
		return nil, f.err
	}
	if onProgress != nil {
		for i, l := range f.result.Lines {
			onProgress(i+1, l)
		}
	}
	return f.result, nil
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		PDFURL:   "https://example.com/doc.pdf",
		Name:     "Quarterly Report",
		Personas: []string{"Ana", "Bruno"},
	}
}

func newTestService(ex *fakeExtractor, gen *fakeGenerator) (*Service, *blob.MemoryStore, *record.MemoryStore) {
	blobs := blob.NewMemoryStore()
	records := record.NewMemoryStore()
	return NewService(ex, gen, blobs, records, 0), blobs, records
}

func TestGeneratePipelineStoresScript(t *testing.T) {
	ex := &fakeExtractor{text: "document body"}
	gen := &fakeGenerator{result: &dialogue.Result{
		Lines: []dialogue.Line{{Persona: "Ana", Text: "hi"}},
		SSML:  []byte("<speak>hi</speak>"),
	}}
	svc, blobs, records := newTestService(ex, gen)

	out, err := svc.Generate(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out.Record == nil || out.Record.ID == 0 {
		t.Fatalf("record not materialized: %+v", out.Record)
	}
	if !strings.HasPrefix(out.Record.StorageKey, "quarterly-report-") {
		t.Fatalf("unexpected storage key: %q", out.Record.StorageKey)
	}
	if out.Truncated {
		t.Fatal("full result must not be truncated")
	}
	data, err := blobs.Get(context.Background(), out.Record.StorageKey)
	if err != nil || string(data) != "<speak>hi</speak>" {
		t.Fatalf("blob content mismatch: %q err=%v", data, err)
	}
	rows, err := records.List(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected one record row, got %d err=%v", len(rows), err)
	}
	if gen.gotText != "document body" {
		t.Fatalf("generator got wrong text: %q", gen.gotText)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc, _, _ := newTestService(&fakeExtractor{text: "x"}, &fakeGenerator{result: &dialogue.Result{}})

	cases := []GenerateRequest{
		{Name: "n", Personas: []string{"a", "b"}},
		{PDFURL: "u", Personas: []string{"a", "b"}},
		{PDFURL: "u", Name: "n", Personas: []string{"solo"}},
		{PDFURL: "u", Name: "n", Personas: []string{"a", "b", "c", "d", "e", "f", "g"}},
		{PDFURL: "u", Name: "n", Personas: []string{"a", "  "}},
	}
	for i, req := range cases {
		if _, err := svc.Generate(context.Background(), req, nil); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestGenerateExtractionFailure(t *testing.T) {
	svc, blobs, records := newTestService(&fakeExtractor{err: fmt.Errorf("boom")}, &fakeGenerator{})

	_, err := svc.Generate(context.Background(), validRequest(), nil)
	if !errors.Is(err, ErrSourceUnusable) {
		t.Fatalf("expected ErrSourceUnusable, got %v", err)
	}
	if keys, _ := blobs.List(context.Background()); len(keys) != 0 {
		t.Fatalf("nothing may be stored, found %v", keys)
	}
	if rows, _ := records.List(context.Background()); len(rows) != 0 {
		t.Fatalf("nothing may be recorded, found %d rows", len(rows))
	}
}

func TestGenerateGenerationFailure(t *testing.T) {
	svc, blobs, _ := newTestService(&fakeExtractor{text: "x"}, &fakeGenerator{err: fmt.Errorf("model down")})

	_, err := svc.Generate(context.Background(), validRequest(), nil)
	if !errors.Is(err, ErrSourceUnusable) {
		t.Fatalf("expected ErrSourceUnusable, got %v", err)
	}
	if keys, _ := blobs.List(context.Background()); len(keys) != 0 {
		t.Fatalf("nothing may be stored, found %v", keys)
	}
}

func TestGenerateTruncatedResultStoredAndFlagged(t *testing.T) {
	gen := &fakeGenerator{result: &dialogue.Result{
		Lines:     []dialogue.Line{{Persona: "Ana", Text: "partial"}},
		SSML:      []byte("<speak>partial</speak>"),
		Truncated: true,
	}}
	svc, _, records := newTestService(&fakeExtractor{text: "x"}, gen)

	out, err := svc.Generate(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !out.Truncated {
		t.Fatal("truncation must be surfaced to the caller")
	}
	if rows, _ := records.List(context.Background()); len(rows) != 1 {
		t.Fatal("partial script must still be stored")
	}
}

func TestContentRoundTrip(t *testing.T) {
	gen := &fakeGenerator{result: &dialogue.Result{
		Lines: []dialogue.Line{{Persona: "Ana", Text: "hi"}},
		SSML:  []byte("<speak>hi</speak>"),
	}}
	svc, _, _ := newTestService(&fakeExtractor{text: "x"}, gen)

	out, err := svc.Generate(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	data, err := svc.Content(context.Background(), out.Record.ID)
	if err != nil || string(data) != "<speak>hi</speak>" {
		t.Fatalf("content mismatch: %q err=%v", data, err)
	}
	if _, err := svc.Content(context.Background(), out.Record.ID+99); !errors.Is(err, script.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
