package scripts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"podscript/internal/dialogue"
	"podscript/internal/gateway/repository/blob"
	"podscript/internal/gateway/repository/record"
	"podscript/internal/pdftext"
	"podscript/internal/script"
)

const (
	minPersonas = 2
	maxPersonas = 6

	defaultTextBudget = 24000
)

var (
	// ErrInvalidRequest marks caller mistakes (missing url, bad persona
	// count); mapped to 400 by the handler.
	ErrInvalidRequest = errors.New("scripts: invalid request")
	// ErrSourceUnusable marks extraction or generation failures on an
	// otherwise valid request; mapped to 422 by the handler.
	ErrSourceUnusable = errors.New("scripts: source unusable")
)

// Extractor turns a PDF URL into plain text.
type Extractor interface {
	ExtractURL(ctx context.Context, rawURL string) (string, error)
}

// Generator produces a persona dialogue over a source text.
type Generator interface {
	Generate(ctx context.Context, sourceText string, personas []string, onProgress dialogue.Progress) (*dialogue.Result, error)
}

// Service runs the full pipeline: download and extract the PDF, generate the
// dialogue, then commit the script through the dual-write coordinator.
type Service struct {
	extractor  Extractor
	generator  Generator
	committer  *script.Committer
	records    record.Store
	blobs      blob.Store
	textBudget int
	now        func() time.Time
}

func NewService(extractor Extractor, generator Generator, blobs blob.Store, records record.Store, textBudget int) *Service {
	if textBudget <= 0 {
		textBudget = defaultTextBudget
	}
	return &Service{
		extractor:  extractor,
		generator:  generator,
		committer:  script.NewCommitter(blobs, records),
		records:    records,
		blobs:      blobs,
		textBudget: textBudget,
		now:        time.Now,
	}
}

// GenerateRequest is the caller's input for a new script.
type GenerateRequest struct {
	PDFURL   string   `json:"pdf_url"`
	Name     string   `json:"name"`
	Personas []string `json:"personas"`
}

// GenerateOutput pairs the stored record with the truncation flag: a
// mid-conversation model failure keeps the partial script but is surfaced.
type GenerateOutput struct {
	Record    *script.Record
	Truncated bool
}

func (r *GenerateRequest) validate() error {
	if strings.TrimSpace(r.PDFURL) == "" {
		return fmt.Errorf("%w: pdf_url is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if len(r.Personas) < minPersonas || len(r.Personas) > maxPersonas {
		return fmt.Errorf("%w: between %d and %d personas required, got %d",
			ErrInvalidRequest, minPersonas, maxPersonas, len(r.Personas))
	}
	for i, p := range r.Personas {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: persona %d is empty", ErrInvalidRequest, i+1)
		}
	}
	return nil
}

// Generate runs the pipeline for one request. onProgress (optional) receives
// each completed dialogue turn.
func (s *Service) Generate(ctx context.Context, req GenerateRequest, onProgress dialogue.Progress) (*GenerateOutput, error) {
	if s == nil || s.extractor == nil || s.generator == nil {
		return nil, fmt.Errorf("scripts: service is not configured")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	text, err := s.extractor.ExtractURL(ctx, req.PDFURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnusable, err)
	}
	text = pdftext.Truncate(text, s.textBudget)

	personas := make([]string, 0, len(req.Personas))
	for _, p := range req.Personas {
		personas = append(personas, strings.TrimSpace(p))
	}
	res, err := s.generator.Generate(ctx, text, personas, onProgress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnusable, err)
	}

	key := script.StorageKey(req.Name, s.now())
	rec, err := s.committer.Commit(ctx, key, res.SSML, script.Metadata{
		Name:       strings.TrimSpace(req.Name),
		StorageKey: key,
		Personas:   personas,
	})
	if err != nil {
		return nil, err
	}
	return &GenerateOutput{Record: rec, Truncated: res.Truncated}, nil
}

func (s *Service) List(ctx context.Context) ([]script.Record, error) {
	if s == nil || s.records == nil {
		return nil, fmt.Errorf("scripts: service is not configured")
	}
	return s.records.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*script.Record, error) {
	if s == nil || s.records == nil {
		return nil, fmt.Errorf("scripts: service is not configured")
	}
	return s.records.Get(ctx, id)
}

// Content returns the stored SSML for a record id.
func (s *Service) Content(ctx context.Context, id int64) ([]byte, error) {
	if s == nil || s.records == nil || s.blobs == nil {
		return nil, fmt.Errorf("scripts: service is not configured")
	}
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Get(ctx, rec.StorageKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, script.ErrNotFound
	}
	return data, err
}
