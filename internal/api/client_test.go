package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"group-gallery-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMediaCurrentShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/G1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"media": []models.MediaItem{
				{Filename: "a.jpg", Metadata: models.MediaMetadata{ItemID: "i1", MediaType: "image"}},
			},
			"hasMore": true,
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	result, err := client.ListMedia(context.Background(), "G1", 2)
	require.NoError(t, err)
	require.Len(t, result.Media, 1)
	assert.Equal(t, "a.jpg", result.Media[0].Filename)
	assert.True(t, result.HasMore)
}

func TestListMediaLegacyShape(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		count   int
		hasMore bool
	}{
		{
			name:    "non-empty page infers more",
			body:    `[{"filename":"a.jpg","metadata":{"itemId":"i1","mediaType":"image"}}]`,
			count:   1,
			hasMore: true,
		},
		{
			name:    "empty page infers end",
			body:    `[]`,
			count:   0,
			hasMore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(srv.URL, "")
			result, err := client.ListMedia(context.Background(), "G1", 1)
			require.NoError(t, err)
			assert.Len(t, result.Media, tt.count)
			assert.Equal(t, tt.hasMore, result.HasMore)
		})
	}
}

func TestListMediaRejectsUnknownMediaType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"filename":"a.bin","metadata":{"itemId":"i1","mediaType":"audio"}}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	_, err := client.ListMedia(context.Background(), "G1", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.bin")
}

func TestReactionRequestBody(t *testing.T) {
	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/G1/post/P1/reactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	require.NoError(t, client.ReactToPost(context.Background(), "G1", "P1", "u1", "❤️"))
	assert.Equal(t, map[string]string{"userId": "u1", "reaction": "❤️"}, captured)
}

func TestErrorBodyMessagePreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"reaction not allowed"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	err := client.ReactToItem(context.Background(), "G1", "a.jpg", "u1", "❤️")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.Contains(t, err.Error(), "reaction not allowed")
}

func TestUploadMediaMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "G1", r.FormValue("group"))
		assert.Equal(t, "u1", r.FormValue("uploaderId"))
		files := r.MultipartForm.File["media[]"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.jpg", files[0].Filename)
		assert.Equal(t, "b.mp4", files[1].Filename)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	err := client.UploadMedia(context.Background(), "G1", "u1", []Upload{
		{Filename: "a.jpg", Data: []byte("img")},
		{Filename: "b.mp4", Data: []byte("vid")},
	})
	require.NoError(t, err)
}

func TestUploadCommentMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/G1/post/P1/comment-media", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "u1", r.FormValue("userId"))
		require.Len(t, r.MultipartForm.File["media"], 1)

		json.NewEncoder(w).Encode(models.CommentMedia{
			MediaID:    "m-1",
			MediaType:  "image",
			Dimensions: models.Dimensions{Width: 640, Height: 480},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	media, err := client.UploadCommentMedia(context.Background(), "G1", "P1", "u1", Upload{
		Filename: "cat.jpg",
		Data:     []byte("img"),
	})
	require.NoError(t, err)
	assert.Equal(t, "m-1", media.MediaID)
	assert.Equal(t, 640, media.Dimensions.Width)
}

func TestUploadCommentMediaRejectsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(models.CommentMedia{MediaID: "m-1", MediaType: "audio"})
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	_, err := client.UploadCommentMedia(context.Background(), "G1", "P1", "u1", Upload{Filename: "x"})
	require.Error(t, err, "unknown media types are a validation error, not a default")
}

func TestAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, "tok-123")
	_, err := client.ListMedia(context.Background(), "G1", 1)
	require.NoError(t, err)
}

func TestCheckReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "")
	assert.NoError(t, client.CheckReachable(context.Background()))

	srv.Close()
	assert.Error(t, client.CheckReachable(context.Background()))
}
