package reports

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"time"

	"potholes/internal/utils"
	"potholes/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	FieldLocation = "location"
	FieldImages   = "images"
	FieldSeverity = "severity"
	FieldEmail    = "reporter_email"

	maxObjectNameLen = 100
	cleanupTimeout   = 30 * time.Second
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type Location struct {
	Latitude  float64
	Longitude float64
}

type Image struct {
	Name string
	Data []byte
}

// Submission is everything a citizen enters on the report form.
type Submission struct {
	Location      *Location
	Severity      types.Severity
	Description   string
	ReporterName  string
	ReporterEmail string
	Images        []Image
}

func (s *Service) validate(sub Submission) error {
	verr := new(ValidationError)

	if sub.Location == nil {
		verr.add(FieldLocation, "Please select a location on the map")
	}

	if !sub.Severity.Valid() {
		verr.add(FieldSeverity, "Please choose a severity")
	}

	switch {
	case len(sub.Images) == 0:
		verr.add(FieldImages, "Please upload at least one image")
	case s.config.MaxImages > 0 && len(sub.Images) > s.config.MaxImages:
		verr.add(FieldImages, fmt.Sprintf("Please upload at most %d images", s.config.MaxImages))
	}

	for _, img := range sub.Images {
		if _, ok := allowedImageTypes[sniff(img.Data)]; !ok {
			verr.add(FieldImages, fmt.Sprintf("%s is not a JPEG or PNG image", displayName(img.Name)))
			continue
		}
		if s.config.MaxImageBytes > 0 && int64(len(img.Data)) > s.config.MaxImageBytes {
			verr.add(FieldImages, fmt.Sprintf("%s is larger than %s", displayName(img.Name), formatSize(s.config.MaxImageBytes)))
		}
	}

	if email := strings.TrimSpace(sub.ReporterEmail); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			verr.add(FieldEmail, "Please enter a valid email address")
		}
	}

	return verr.errOrNil()
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

func sniff(data []byte) string {
	return http.DetectContentType(data)
}

// Submit validates the submission, uploads its images in order, and inserts
// a single report referencing them. Nothing is inserted unless every upload
// succeeds. Images uploaded by a failed attempt are removed best effort;
// whatever survives is left for the sweep.
func (s *Service) Submit(ctx context.Context, sub Submission) (*types.Report, error) {
	if err := s.validate(sub); err != nil {
		return nil, err
	}

	urls, uploaded, err := s.uploadImages(ctx, sub.Images)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	report := &types.Report{
		Latitude:      sub.Location.Latitude,
		Longitude:     sub.Location.Longitude,
		Severity:      sub.Severity,
		Description:   utils.NullableString(sub.Description),
		ReporterName:  utils.NullableString(sub.ReporterName),
		ReporterEmail: utils.NullableString(sub.ReporterEmail),
		ImageURLs:     urls,
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		s.discard(ctx, uploaded)
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"severity":  report.Severity,
		"images":    len(report.ImageURLs),
	}).Info("report created")

	if err := s.notifier.NotifyReportCreated(ctx, report.ID); err != nil {
		s.logger.WithError(err).WithField("report_id", report.ID).Warn("failed to notify about new report")
	}

	return report, nil
}

// uploadImages returns the public URLs in selection order along with the
// object names that made it into the bucket, even on failure.
func (s *Service) uploadImages(ctx context.Context, images []Image) ([]string, []string, error) {
	urls := make([]string, 0, len(images))
	names := make([]string, 0, len(images))

	for _, img := range images {
		contentType := sniff(img.Data)
		name := objectName(time.Now(), img.Name, allowedImageTypes[contentType])

		url, err := s.blobs.Upload(ctx, name, bytes.NewReader(img.Data), contentType)
		if err != nil {
			return urls, names, fmt.Errorf("failed to upload %s: %w", displayName(img.Name), err)
		}

		urls = append(urls, url)
		names = append(names, name)
	}

	return urls, names, nil
}

func (s *Service) discard(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, name := range names {
		if err := s.blobs.Delete(ctx, name); err != nil {
			s.logger.WithError(err).WithField("object", name).Warn("failed to remove image from aborted submission")
		}
	}
}

// objectName builds "<unix millis>-<token>-<name>" so that two citizens
// uploading IMG_0001.jpg in the same millisecond still get distinct objects.
func objectName(now time.Time, original, fallbackExt string) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), utils.Token(8), sanitizeName(original, fallbackExt))
}

func sanitizeName(name, fallbackExt string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		cleaned = "image" + fallbackExt
	}
	if len(cleaned) > maxObjectNameLen {
		cleaned = cleaned[len(cleaned)-maxObjectNameLen:]
	}

	return cleaned
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "image"
	}
	return name
}
