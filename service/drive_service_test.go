package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"catalogo-armazones/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newDriveTestServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"nextPageToken":"p2","files":[
				{"id":"a1","name":"VLE41684-1.jpg","mimeType":"image/jpeg"},
				{"id":"a2","name":"vle41684-2.webp","mimeType":"image/webp"},
				{"id":"n1","name":"notas.txt","mimeType":"text/plain"},
				{"id":"dup","name":"VLE41684-1.png","mimeType":"image/png"}
			]}`)
			return
		}
		fmt.Fprint(w, `{"files":[
			{"id":"r3","name":"RB2398_3.png","mimeType":"image/png"},
			{"id":"bad","name":"portada.png","mimeType":"image/png"}
		]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDriveService(t *testing.T, srv *httptest.Server) *DriveService {
	t.Helper()
	ds, err := NewDriveServiceWithOptions(context.Background(), "folder-123", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return ds
}

func TestDriveService_ListProductImages(t *testing.T) {
	var calls atomic.Int32
	ds := newTestDriveService(t, newDriveTestServer(t, &calls))

	images, err := ds.ListProductImages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, map[string][models.ImageSlots]string{
		"VLE41684": {"https://drive.google.com/uc?id=a1", "https://drive.google.com/uc?id=a2", ""},
		"RB2398":   {"", "", "https://drive.google.com/uc?id=r3"},
	}, images)
}

func TestDriveService_ProductImagesCachesListing(t *testing.T) {
	var calls atomic.Int32
	ds := newTestDriveService(t, newDriveTestServer(t, &calls))
	ctx := context.Background()

	imgs, err := ds.ProductImages(ctx, " vle41684 ")
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/uc?id=a1", imgs[0])

	_, err = ds.ProductImages(ctx, "RB2398")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	ds.Refresh()
	_, err = ds.ProductImages(ctx, "RB2398")
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestNewDriveServiceWithOptions_RequiresFolder(t *testing.T) {
	_, err := NewDriveServiceWithOptions(context.Background(), "", nil, option.WithoutAuthentication())
	assert.Error(t, err)
}
