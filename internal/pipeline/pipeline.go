// Package pipeline sequences the text-anomaly stages: fetch the image, store
// it, detect text, evaluate confidences, and, only when anomalies exist,
// generate a PDF report and mint a time-limited download link.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/text-anomaly-reporter/internal/detect"
	"github.com/fpang/text-anomaly-reporter/internal/fetch"
	"github.com/fpang/text-anomaly-reporter/internal/report"
	"github.com/fpang/text-anomaly-reporter/internal/storage"
)

// Fetcher retrieves raw image bytes from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Image, error)
}

// Storage uploads objects and mints read-only time-limited access links. Ref
// resolves a key to the full coordinates of the backing bucket.
type Storage interface {
	Ref(key string) storage.ObjectRef
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (storage.AccessLink, error)
}

// Detector runs text detection on a stored image.
type Detector interface {
	DetectText(ctx context.Context, ref storage.ObjectRef) ([]detect.Word, error)
}

// Generator renders the PDF report from the prepared payload.
type Generator interface {
	Generate(ctx context.Context, req report.GeneratorRequest) (report.GenerateResult, error)
}

// Config is the immutable per-process pipeline configuration. It is built
// once at startup and injected here; no stage reads ambient globals.
type Config struct {
	KeyPrefix   string
	TemplateKey string
	FontKey     string
	Threshold   float64       // zero means report.DefaultThreshold
	LinkTTL     time.Duration // zero means one hour
}

// Pipeline owns the stage sequence and the anomaly decision point. Each
// invocation is fully sequential; invocations share nothing but this
// read-only configuration, so concurrent runs are safe.
type Pipeline struct {
	cfg       Config
	fetcher   Fetcher
	storage   Storage
	detector  Detector
	generator Generator
}

// New creates a Pipeline with its collaborators injected.
func New(cfg Config, fetcher Fetcher, store Storage, detector Detector, generator Generator) *Pipeline {
	if cfg.Threshold == 0 {
		cfg.Threshold = report.DefaultThreshold
	}
	if cfg.LinkTTL == 0 {
		cfg.LinkTTL = time.Hour
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		storage:   store,
		detector:  detector,
		generator: generator,
	}
}

// Run executes one pipeline invocation. Anticipated stage failures come back
// as a 400-style Result; a non-nil error means an unanticipated fault
// (detection call failure, malformed upstream response) that the caller must
// surface as an invocation failure, not convert into a structured response.
// No stage is retried; every external call happens at most once.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	u, err := url.Parse(req.URL)
	if req.URL == "" || err != nil || !u.IsAbs() {
		return failure(StageInput, "A valid absolute image URL is required"), nil
	}

	img, err := p.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return Result{}, err
	}
	if img.Status != http.StatusOK {
		return failure(StageFetch, "Failed to retrieve the file from '%s'. Status code: %d", req.URL, img.Status), nil
	}
	if img.ContentType == "" {
		return failure(StageFetch, "Failed to retrieve a jpeg or png image from '%s'.", req.URL), nil
	}

	key := storage.NewObjectKey(p.cfg.KeyPrefix, img.FileName)
	ref := p.storage.Ref(key)

	if err := p.storage.Put(ctx, key, img.Bytes, img.ContentType); err != nil {
		return failure(StageStore, "Image %s storing in bucket %s failed: %v", key, ref.Bucket, err), nil
	}

	// Detection faults surface as invocation errors, never as structured 400s.
	words, err := p.detector.DetectText(ctx, ref)
	if err != nil {
		log.Error().Str("stage", StageDetect).Err(err).Msg("Text detection failed")
		return Result{}, err
	}

	if report.Evaluate(words, p.cfg.Threshold) {
		msg := fmt.Sprintf("All words are clear in image %q from bucket %q in namespace %q", key, ref.Bucket, ref.Namespace)
		log.Info().Str("key", key).Int("words", len(words)).Msg("No anomalies found, processing complete")
		return noAnomaly(msg), nil
	}
	log.Info().Str("key", key).Msg("Anomalies found, generating PDF report")

	data, err := report.BuildData(words, ref)
	if err != nil {
		return Result{}, err
	}

	genRes, err := p.generator.Generate(ctx, report.NewGeneratorRequest(data, ref, p.cfg.TemplateKey, p.cfg.FontKey))
	if err != nil {
		return Result{}, err
	}
	if genRes.TransportStatus != http.StatusOK {
		return failure(StageGenerate, "Document generation failed with status %d", genRes.TransportStatus), nil
	}
	if genRes.Code != http.StatusOK {
		return failure(StageGenerate, "Document generation failure: '%d'. See application log", genRes.Code), nil
	}

	link, err := p.storage.PresignGet(ctx, report.OutputPDFKey(key), p.cfg.LinkTTL)
	if err != nil {
		return failure(StageLink, "Report link creation failed: %v", err), nil
	}
	log.Info().Str("url", link.URL).Time("expiresAt", link.ExpiresAt).Msg("Report access link created")

	return reportReady(req.URL, link), nil
}
