package vendors

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrVendorNotFound = errors.New("vendor not found")
	ErrMissingName    = errors.New("vendor name is required")
	ErrInvalidGSTIN   = errors.New("gstin format is invalid")
)

var gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z]\dZ\d$`)

// Service manages the vendor master.
type Service struct {
	repo Repository
}

// NewService wires the vendor service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a vendor.
func (s *Service) Create(ctx context.Context, input CreateVendorInput) (Vendor, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Vendor{}, ErrMissingName
	}
	if input.GSTIN != nil {
		gstin := strings.ToUpper(strings.TrimSpace(*input.GSTIN))
		if !gstinPattern.MatchString(gstin) {
			return Vendor{}, ErrInvalidGSTIN
		}
		input.GSTIN = &gstin
	}
	return s.repo.Create(ctx, input)
}

// List returns all vendors ordered by name.
func (s *Service) List(ctx context.Context) ([]Vendor, error) {
	return s.repo.List(ctx)
}

// Resolve finds or creates the vendor for an extracted supplier. Without a
// GSTIN there is nothing stable to key on, so no vendor is linked.
func (s *Service) Resolve(ctx context.Context, name, gstin string) (*Vendor, error) {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if gstin == "" {
		return nil, nil
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Unknown Supplier"
	}
	v, err := s.repo.UpsertByGSTIN(ctx, name, gstin)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
