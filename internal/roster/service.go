package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ImageUploader hosts a base64-encoded image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, imageBase64 string) (string, error)
}

// NewMember holds the caller-supplied fields of a member being added.
type NewMember struct {
	Name        string
	Role        string
	Portfolio   string
	ImageBase64 string
	ImageURL    string
}

// Service implements roster operations on top of a Store. Mutations are
// serialized so that read-modify-write cycles issued through one Service never
// overwrite each other; the store's revision check covers other writers.
type Service struct {
	store       Store
	images      ImageUploader
	placeholder string
	now         func() time.Time

	mu sync.Mutex
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithImageUploader enables image uploads for members added with imageBase64.
func WithImageUploader(u ImageUploader) ServiceOption {
	return func(s *Service) {
		s.images = u
	}
}

// WithPlaceholder sets the image URL used when no photo is supplied.
func WithPlaceholder(url string) ServiceOption {
	return func(s *Service) {
		if url != "" {
			s.placeholder = url
		}
	}
}

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new roster Service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:       store,
		placeholder: defaultPlaceholder,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const defaultPlaceholder = "https://via.placeholder.com/300x300/667eea/ffffff?text=Team+Member"

// List returns the current team document.
func (s *Service) List(ctx context.Context) (*Document, error) {
	doc, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading team document: %w", err)
	}
	doc.normalize()
	return doc, nil
}

// Add appends a new member. Fields are trimmed; the portfolio must not
// already be on the roster (case-insensitive). Image upload is best effort:
// on failure the member gets in.ImageURL or the placeholder.
func (s *Service) Add(ctx context.Context, in NewMember) (*Member, error) {
	image := s.resolveImage(ctx, in)

	m := Member{
		Name:      strings.TrimSpace(in.Name),
		Role:      strings.TrimSpace(in.Role),
		Portfolio: strings.TrimSpace(in.Portfolio),
		Image:     image,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading team document: %w", err)
	}

	for _, existing := range doc.Members {
		if existing.Portfolio != "" && strings.EqualFold(strings.TrimSpace(existing.Portfolio), m.Portfolio) {
			return nil, ErrDuplicatePortfolio
		}
	}

	now := s.now()
	m.ID = nextID(doc.Members, now)
	m.AddedAt = FormatTimestamp(now)

	doc.Members = append(doc.Members, m)
	doc.touch(now)

	if err := s.store.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("writing team document: %w", err)
	}

	return &m, nil
}

// Delete removes every member whose id matches rawID. The document is written
// back even when nothing matched. It reports how many members were removed.
func (s *Service) Delete(ctx context.Context, rawID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading team document: %w", err)
	}

	kept := make([]Member, 0, len(doc.Members))
	for _, m := range doc.Members {
		if m.matchesID(rawID) {
			continue
		}
		kept = append(kept, m)
	}
	removed := len(doc.Members) - len(kept)

	doc.Members = kept
	doc.touch(s.now())

	if err := s.store.Put(ctx, doc); err != nil {
		return 0, fmt.Errorf("writing team document: %w", err)
	}

	return removed, nil
}

func (s *Service) resolveImage(ctx context.Context, in NewMember) string {
	image := strings.TrimSpace(in.ImageURL)
	if image == "" {
		image = s.placeholder
	}
	if in.ImageBase64 == "" || s.images == nil {
		return image
	}

	url, err := s.images.Upload(ctx, in.ImageBase64)
	if err != nil {
		slog.Warn("image upload failed; using fallback image", "error", err, "fallback", image)
		return image
	}
	return url
}

// nextID returns the current time in milliseconds, bumped past the largest
// existing id so ids stay unique and increasing within the document.
func nextID(members []Member, now time.Time) MemberID {
	id := MemberID(now.UnixMilli())
	for _, m := range members {
		if m.ID >= id {
			id = m.ID + 1
		}
	}
	return id
}
