package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"rentfleet/internal/core"
	"rentfleet/internal/utils"
	"rentfleet/internal/validators"
	"rentfleet/pkg/logger"
	"rentfleet/pkg/resilience"
	"rentfleet/pkg/storage"

	"github.com/google/uuid"
)

// MediaResult is the outcome of reconciling a desired image list against
// what blob storage currently holds.
type MediaResult struct {
	// Images is the final ordered reference list to persist; the first
	// entry is the primary image.
	Images []string
	// Uploaded are the URLs created during this reconciliation, kept so a
	// failed operation can roll its own uploads back.
	Uploaded []string
	// Failures maps per-item labels to the reason that item was dropped.
	Failures map[string]string
}

// MediaService reconciles a vehicle's desired image list against blob
// storage. Uploads are individually fallible; one bad image never aborts an
// otherwise-successful batch.
type MediaService interface {
	Reconcile(ctx context.Context, namespace string, current []string, desired []validators.ImageEntry, allowEmpty bool) (*MediaResult, error)
	DeleteRefs(ctx context.Context, refs []string)
}

type mediaService struct {
	storage     storage.StorageProvider
	logger      *logger.Logger
	uploadPause time.Duration
}

func NewMediaService(provider storage.StorageProvider, log *logger.Logger) MediaService {
	return &mediaService{
		storage:     provider,
		logger:      log,
		uploadPause: utils.ImageUploadPause,
	}
}

// Reconcile partitions desired entries into keeps and uploads, uploads new
// payloads sequentially with a fixed inter-upload pause, merges survivors in
// desired order and best-effort deletes references no longer used. It fails
// only when zero usable images remain and the caller did not explicitly ask
// for image removal.
func (s *mediaService) Reconcile(ctx context.Context, namespace string, current []string, desired []validators.ImageEntry, allowEmpty bool) (*MediaResult, error) {
	result := &MediaResult{Failures: map[string]string{}}

	// An empty desired list without an explicit removal request means
	// "leave the images alone", not "delete everything".
	if len(desired) == 0 && !allowEmpty {
		result.Images = append(result.Images, current...)
		return result, nil
	}

	firstUpload := true
	for i, entry := range desired {
		label := entry.FileName
		if label == "" {
			label = fmt.Sprintf("image[%d]", i+1)
		}

		if !entry.IsUpload() {
			if entry.URL == "" {
				result.Failures[label] = "entry has neither a payload nor a reference"
				continue
			}
			result.Images = append(result.Images, entry.URL)
			continue
		}

		if !firstUpload {
			if err := s.pause(ctx); err != nil {
				result.Failures[label] = "cancelled before upload"
				continue
			}
		}
		firstUpload = false

		url, err := s.uploadEntry(ctx, namespace, &entry)
		if err != nil {
			s.logger.WithError(err).WithField("image", label).Warn("Image upload failed, continuing batch")
			result.Failures[label] = err.Error()
			continue
		}

		result.Images = append(result.Images, url)
		result.Uploaded = append(result.Uploaded, url)
	}

	if len(result.Images) == 0 && !allowEmpty {
		return nil, &core.MediaError{Failures: result.Failures}
	}

	// Everything previously stored but no longer referenced gets a
	// best-effort delete. Orphaned blobs are an acceptable degraded
	// state; data loss is not.
	final := make(map[string]struct{}, len(result.Images))
	for _, url := range result.Images {
		final[url] = struct{}{}
	}
	var stale []string
	for _, url := range current {
		if _, kept := final[url]; !kept {
			stale = append(stale, url)
		}
	}
	s.DeleteRefs(ctx, stale)

	return result, nil
}

// DeleteRefs issues best-effort deletes for the given blob URLs. Failures
// are logged, never returned: the caller's operation must not fail because
// cleanup did.
func (s *mediaService) DeleteRefs(ctx context.Context, refs []string) {
	for _, url := range refs {
		key, ok := s.storage.KeyFromURL(url)
		if !ok {
			s.logger.WithField("url", url).Warn("Cannot derive storage key from URL, leaving blob in place")
			continue
		}

		err := resilience.Do(ctx, "storage.delete", utils.StorageDeleteTimeout, utils.MsgDeleteTimeout,
			func(ctx context.Context) error {
				return s.storage.Delete(ctx, key)
			})
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to delete stale image blob")
		}
	}
}

func (s *mediaService) uploadEntry(ctx context.Context, namespace string, entry *validators.ImageEntry) (string, error) {
	data, contentType, err := utils.DecodeImagePayload(entry.Data)
	if err != nil {
		return "", err
	}
	if entry.ContentType != "" && utils.IsImageContentType(entry.ContentType) {
		contentType = entry.ContentType
	}

	if int64(len(data)) > utils.MaxImageSize {
		return "", utils.ErrImageTooBig
	}

	data, err = utils.NormalizeImage(data, contentType, utils.MaxImageWidth, utils.MaxImageHeight)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", namespace, uuid.New().String(), utils.ExtensionForContentType(contentType))

	var response *storage.UploadResponse
	err = resilience.Do(ctx, "storage.upload", utils.StorageUploadTimeout, utils.MsgUploadTimeout,
		func(ctx context.Context) error {
			return resilience.Retry(ctx, utils.ImageUploadRetries, utils.ImageUploadBackoff, func() error {
				var uploadErr error
				response, uploadErr = s.storage.Upload(ctx, &storage.UploadRequest{
					Key:         key,
					Reader:      bytes.NewReader(data),
					ContentType: contentType,
					Size:        int64(len(data)),
				})
				return uploadErr
			})
		})
	if err != nil {
		return "", err
	}

	return response.URL, nil
}

func (s *mediaService) pause(ctx context.Context) error {
	timer := time.NewTimer(s.uploadPause)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
