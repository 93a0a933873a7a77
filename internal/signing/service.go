package signing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
)

// Mode selects how a signature was produced.
type Mode string

const (
	ModeDrawn    Mode = "drawn"
	ModeTyped    Mode = "typed"
	ModeUploaded Mode = "uploaded"
)

// Service applies captured signatures to stored documents. Concurrent
// placements on the same document serialize through a per-key lock so the
// read-compose-write cycle never loses an update; placements on different
// documents proceed in parallel.
type Service struct {
	blobs    storage.System
	engine   *Engine
	capturer *Capturer
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a signing service over the given blob storage.
func NewService(blobs storage.System, engine *Engine, capturer *Capturer, logger *slog.Logger) *Service {
	return &Service{
		blobs:    blobs,
		engine:   engine,
		capturer: capturer,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Capture normalizes a signature according to its mode. Drawn and uploaded
// signatures arrive as data URIs; typed signatures arrive as a name plus an
// optional ink color.
func (s *Service) Capture(mode Mode, payload, color string) (SignatureImage, error) {
	switch mode {
	case ModeDrawn:
		return s.capturer.CaptureDrawn(payload)
	case ModeTyped:
		return s.capturer.CaptureTyped(payload, color)
	case ModeUploaded:
		sig, err := ParseDataURI(payload)
		if err != nil {
			return SignatureImage{}, err
		}
		return s.capturer.CaptureUploaded(sig)
	default:
		return SignatureImage{}, fmt.Errorf("unknown signature mode %q", mode)
	}
}

// Apply composites the signature onto the document stored under key and
// writes the result back under the same key.
func (s *Service) Apply(ctx context.Context, key string, sig SignatureImage, placement Placement) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	pdfData, err := s.blobs.Retrieve(ctx, key)
	if err != nil {
		return fmt.Errorf("retrieve document: %w", err)
	}

	signed, err := s.engine.Compose(pdfData, sig, placement)
	if err != nil {
		return err
	}

	if err := s.blobs.Store(ctx, key, signed); err != nil {
		return fmt.Errorf("store signed document: %w", err)
	}

	s.logger.Info("signature applied",
		"key", key,
		"page", placement.Page,
		"x", placement.X,
		"y", placement.Y,
	)

	return nil
}

func (s *Service) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}

	return lock
}
