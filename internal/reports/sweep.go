package reports

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type URLSource interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

// Sweeper removes bucket objects that no report references. Those come from
// submissions that uploaded images and then failed to insert.
type Sweeper struct {
	logger *logrus.Logger
	urls   URLSource
	blobs  BlobStore
	now    func() time.Time
}

func NewSweeper(logger *logrus.Logger, urls URLSource, blobs BlobStore) *Sweeper {
	return &Sweeper{
		logger: logger,
		urls:   urls,
		blobs:  blobs,
		now:    time.Now,
	}
}

type SweepResult struct {
	Scanned  int
	Orphaned []string
	Deleted  int
	Failed   int
}

// Sweep only considers objects older than olderThan so that uploads belonging
// to a submission still in flight are left alone.
func (s *Sweeper) Sweep(ctx context.Context, olderThan time.Duration, dryRun bool) (*SweepResult, error) {
	objects, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket: %w", err)
	}

	urls, err := s.urls.ImageURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced images: %w", err)
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		name := objectNameFromURL(u)
		if name == "" {
			return nil, fmt.Errorf("failed to resolve object name for stored image url %q", u)
		}
		referenced[name] = struct{}{}
	}

	cutoff := s.now().Add(-olderThan)
	result := &SweepResult{Scanned: len(objects)}

	for _, obj := range objects {
		if _, ok := referenced[obj.Name]; ok {
			continue
		}
		if !obj.CreatedAt.IsZero() && obj.CreatedAt.After(cutoff) {
			continue
		}

		result.Orphaned = append(result.Orphaned, obj.Name)
		s.logger.WithFields(logrus.Fields{
			"object":     obj.Name,
			"created_at": obj.CreatedAt,
		}).Debug("orphaned image")
		if dryRun {
			continue
		}

		if err := s.blobs.Delete(ctx, obj.Name); err != nil {
			result.Failed++
			s.logger.WithError(err).WithField("object", obj.Name).Warn("failed to delete orphaned image")
			continue
		}
		result.Deleted++
	}

	s.logger.WithFields(logrus.Fields{
		"scanned":  result.Scanned,
		"orphaned": len(result.Orphaned),
		"deleted":  result.Deleted,
		"dry_run":  dryRun,
	}).Info("image sweep finished")

	return result, nil
}

// objectNameFromURL recovers the object name from a stored image URL. The
// host and prefix vary with the driver that wrote the URL, the name does not.
func objectNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
