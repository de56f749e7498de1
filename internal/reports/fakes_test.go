package reports_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"potholes/internal/reports"
	"potholes/internal/store"
	"potholes/pkg/types"

	"github.com/sirupsen/logrus"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

var errBucketDown = errors.New("bucket unavailable")

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string]types.StoredObject
	uploads []string
	deleted []string
	// failOn makes the nth upload (1-based) fail.
	failOn int
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string]types.StoredObject)}
}

func (f *fakeBlobs) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn > 0 && len(f.uploads)+1 == f.failOn {
		f.uploads = append(f.uploads, path)
		return "", errBucketDown
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	f.uploads = append(f.uploads, path)
	f.objects[path] = types.StoredObject{Name: path, Size: int64(len(data)), CreatedAt: time.Now()}
	return f.PublicURL(path), nil
}

func (f *fakeBlobs) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeBlobs) List(ctx context.Context) ([]types.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]types.StoredObject, 0, len(f.objects))
	for _, obj := range f.objects {
		out = append(out, obj)
	}
	return out, nil
}

func (f *fakeBlobs) PublicURL(path string) string {
	return "https://blobs.test/pothole-images/" + path
}

type fakeNotifier struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeNotifier) NotifyReportCreated(ctx context.Context, reportID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, reportID)
	return f.err
}

// countingStore wraps the in-memory store to observe create calls.
type countingStore struct {
	*store.Memory
	creates   int
	createErr error
}

func (c *countingStore) CreateReport(ctx context.Context, report *types.Report) error {
	c.creates++
	if c.createErr != nil {
		return c.createErr
	}
	return c.Memory.CreateReport(ctx, report)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	svc      *reports.Service
	store    *countingStore
	blobs    *fakeBlobs
	notifier *fakeNotifier
}

func newFixture(policy reports.TransitionPolicy) *fixture {
	mem := store.NewMemory()
	f := &fixture{
		store:    &countingStore{Memory: mem},
		blobs:    newFakeBlobs(),
		notifier: &fakeNotifier{},
	}
	f.svc = reports.NewService(quietLogger(), f.store, mem, f.blobs, f.notifier, reports.ServiceConfig{
		Policy:        policy,
		MaxImages:     3,
		MaxImageBytes: 1 << 10,
	})
	return f
}

func validSubmission() reports.Submission {
	return reports.Submission{
		Location: &reports.Location{Latitude: 40.71, Longitude: -74.00},
		Severity: types.SeveritySevere,
		Images:   []reports.Image{{Name: "IMG_0001.png", Data: pngBytes}},
	}
}
