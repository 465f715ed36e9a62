// Package certificate renders donation certificates as PDF and uploads them
// to object storage.
package certificate

import (
	"context"
	"fmt"
	"time"

	"bloodlink/pkg/domain"
)

// Certificate is the data printed on a donor's thank-you certificate.
type Certificate struct {
	ProcessID    domain.ProcessID
	DonorName    string
	BloodGroup   string
	UnitCode     string
	VolumeMl     int
	DonationDate time.Time
	Facility     string
	IssuedAt     time.Time
}

// Issued is a rendered and stored certificate.
type Issued struct {
	URL      string
	Filename string
	PDF      []byte
}

// Uploader stores an object and returns a URL for it.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Issuer renders then uploads.
type Issuer struct {
	renderer *Renderer
	uploader Uploader
	prefix   string
}

func NewIssuer(renderer *Renderer, uploader Uploader, prefix string) *Issuer {
	return &Issuer{renderer: renderer, uploader: uploader, prefix: prefix}
}

func (i *Issuer) Issue(ctx context.Context, c Certificate) (*Issued, error) {
	pdf, err := i.renderer.Render(c)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("certificate-%s.pdf", c.ProcessID)
	url, err := i.uploader.Upload(ctx, i.prefix+filename, pdf, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}
	return &Issued{URL: url, Filename: filename, PDF: pdf}, nil
}
