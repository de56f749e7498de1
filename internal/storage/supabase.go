package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"potholes/pkg/types"
)

const supabaseListPageSize = 1000

// SupabaseStorage handles image objects in a Supabase Storage bucket
type SupabaseStorage struct {
	baseURL    string
	apiKey     string
	bucketName string
	httpClient *http.Client
}

// NewSupabaseStorage creates a new Supabase Storage client. baseURL is the
// project URL, e.g. https://<project>.supabase.co
func NewSupabaseStorage(baseURL, apiKey, bucketName string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bucketName: bucketName,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *SupabaseStorage) objectURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucketName, url.PathEscape(path))
}

func (s *SupabaseStorage) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("apikey", s.apiKey)
}

// Upload stores body under path and returns its public URL
func (s *SupabaseStorage) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	s.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return s.PublicURL(path), nil
}

// Delete removes a file from Supabase Storage
func (s *SupabaseStorage) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

type supabaseListRequest struct {
	Prefix string             `json:"prefix"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	SortBy supabaseListSortBy `json:"sortBy"`
}

type supabaseListSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type supabaseObject struct {
	ID        *string   `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Metadata  struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

// List returns every object at the root of the bucket
func (s *SupabaseStorage) List(ctx context.Context) ([]types.StoredObject, error) {
	objects := make([]types.StoredObject, 0)

	for offset := 0; ; offset += supabaseListPageSize {
		page, err := s.listPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, obj := range page {
			// folders come back without an id
			if obj.ID == nil {
				continue
			}
			objects = append(objects, types.StoredObject{
				Name:      obj.Name,
				Size:      obj.Metadata.Size,
				CreatedAt: obj.CreatedAt,
			})
		}

		if len(page) < supabaseListPageSize {
			return objects, nil
		}
	}
}

func (s *SupabaseStorage) listPage(ctx context.Context, offset int) ([]supabaseObject, error) {
	payload, err := json.Marshal(supabaseListRequest{
		Limit:  supabaseListPageSize,
		Offset: offset,
		SortBy: supabaseListSortBy{Column: "name", Order: "asc"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	listURL := fmt.Sprintf("%s/storage/v1/object/list/%s", s.baseURL, s.bucketName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, listURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list failed with status %d: %s", resp.StatusCode, string(body))
	}

	var page []supabaseObject
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	return page, nil
}

// PublicURL returns the public URL for a file
func (s *SupabaseStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucketName, url.PathEscape(path))
}
