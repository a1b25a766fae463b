package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"rentfleet/internal/core"
	"rentfleet/internal/validators"
	"rentfleet/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngPayload(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestReconcileEmptyDesiredKeepsCurrent(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())
	current := []string{fakeCDNPrefix + "a.png", fakeCDNPrefix + "b.png"}

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", current, nil, false)
	require.NoError(t, err)
	assert.Equal(t, current, result.Images)
	assert.Empty(t, result.Uploaded)
	assert.Empty(t, store.deletedKeys)
}

func TestReconcileEmptyDesiredWithRemovalDeletesCurrent(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())
	current := []string{fakeCDNPrefix + "a.png"}

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", current, nil, true)
	require.NoError(t, err)
	assert.Empty(t, result.Images)
	assert.Equal(t, []string{"a.png"}, store.deletedKeys)
}

func TestReconcileUploadsAndKeepsInDesiredOrder(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())
	kept := fakeCDNPrefix + "existing.png"

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", []string{kept}, []validators.ImageEntry{
		{Data: pngPayload(t), FileName: "front.png"},
		{URL: kept},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.Images, 2)
	assert.True(t, strings.HasPrefix(result.Images[0], fakeCDNPrefix+"vehicles/x/y/"))
	assert.Equal(t, kept, result.Images[1])
	assert.Equal(t, []string{result.Images[0]}, result.Uploaded)
	assert.Empty(t, store.deletedKeys)
}

func TestReconcilePartialFailureKeepsBatch(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", nil, []validators.ImageEntry{
		{Data: "%%%not-base64%%%", FileName: "broken.png"},
		{Data: pngPayload(t), FileName: "good.png"},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Contains(t, result.Failures, "broken.png")
	assert.NotContains(t, result.Failures, "good.png")
}

func TestReconcileTotalLossFails(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())

	_, err := media.Reconcile(context.Background(), "vehicles/x/y", nil, []validators.ImageEntry{
		{Data: "%%%not-base64%%%", FileName: "one.png"},
		{Data: "also not base64!", FileName: "two.png"},
	}, false)
	var mediaErr *core.MediaError
	require.ErrorAs(t, err, &mediaErr)
	assert.Len(t, mediaErr.Failures, 2)
}

func TestReconcileTotalLossToleratedWhenEmptyAllowed(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", nil, []validators.ImageEntry{
		{Data: "%%%not-base64%%%", FileName: "one.png"},
	}, true)
	require.NoError(t, err)
	assert.Empty(t, result.Images)
	assert.Len(t, result.Failures, 1)
}

func TestReconcileDeletesStaleReferences(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())
	kept := fakeCDNPrefix + "keep.png"
	stale := fakeCDNPrefix + "stale.png"

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", []string{kept, stale}, []validators.ImageEntry{
		{URL: kept},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{kept}, result.Images)
	assert.Equal(t, []string{"stale.png"}, store.deletedKeys)
}

func TestReconcileRetriesTransientUploadFailures(t *testing.T) {
	store := newFakeStorage()
	store.failUploads = 2
	media := NewMediaService(store, logger.NewNop())

	result, err := media.Reconcile(context.Background(), "vehicles/x/y", nil, []validators.ImageEntry{
		{Data: pngPayload(t), FileName: "front.png"},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, 3, store.uploadCalls)
}

func TestDeleteRefsSkipsForeignURLs(t *testing.T) {
	store := newFakeStorage()
	media := NewMediaService(store, logger.NewNop())

	media.DeleteRefs(context.Background(), []string{
		"https://other-cdn.example.org/foreign.png",
		fakeCDNPrefix + "ours.png",
	})
	assert.Equal(t, []string{"ours.png"}, store.deletedKeys)
}
