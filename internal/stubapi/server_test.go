package stubapi

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"group-gallery-client/internal/api"
	"group-gallery-client/internal/comments"
	"group-gallery-client/internal/feed"
	"group-gallery-client/internal/models"
	"group-gallery-client/internal/reactions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItems(s *Server, groupID string, n int) {
	for i := 0; i < n; i++ {
		s.SeedItem(groupID, models.MediaItem{
			Filename: fmt.Sprintf("photo-%03d.jpg", i),
			Uploader: models.User{ID: "u9", Name: "Uploader"},
			Metadata: models.MediaMetadata{
				ItemID:     fmt.Sprintf("item-%03d", i),
				UploadDate: time.Now(),
				Dimensions: models.Dimensions{Width: 100, Height: 100},
				MediaType:  models.MediaTypeImage,
			},
		})
	}
}

func TestFeedPaginationEndToEnd(t *testing.T) {
	stub := New(WithPageSize(20))
	seedItems(stub, "G1", 25)

	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	pager := feed.NewPager(client)
	ctx := context.Background()

	require.NoError(t, pager.Load(ctx, "G1"))
	snap := pager.Snapshot()
	assert.Len(t, snap.Items, 20)
	assert.True(t, snap.HasMore)

	started, err := pager.LoadMore(ctx, "G1")
	require.NoError(t, err)
	assert.True(t, started)

	snap = pager.Snapshot()
	assert.Len(t, snap.Items, 25)
	assert.False(t, snap.HasMore)

	started, err = pager.LoadMore(ctx, "G1")
	require.NoError(t, err)
	assert.False(t, started)
}

func TestLegacyPaginationEndToEnd(t *testing.T) {
	stub := New(WithPageSize(20), WithLegacyPages())
	seedItems(stub, "G1", 20)

	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	pager := feed.NewPager(client)
	ctx := context.Background()

	require.NoError(t, pager.Load(ctx, "G1"))
	snap := pager.Snapshot()
	assert.Len(t, snap.Items, 20)
	// The bare-array shape cannot signal the true end: a full last page
	// still infers more, costing one extra empty fetch.
	assert.True(t, snap.HasMore)

	_, err := pager.LoadMore(ctx, "G1")
	require.NoError(t, err)
	snap = pager.Snapshot()
	assert.Len(t, snap.Items, 20)
	assert.False(t, snap.HasMore)
}

func TestPostReactionToggleEndToEnd(t *testing.T) {
	stub := New()
	stub.SeedPost("G1", models.Post{PostID: "P1", Uploader: models.User{ID: "u9"}})

	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	user := models.User{ID: "u1", Name: "Alice"}
	sync := reactions.NewSynchronizer(func(ctx context.Context, userID, emoji string) error {
		return client.ReactToPost(ctx, "G1", "P1", userID, emoji)
	})

	ctx := context.Background()
	require.NoError(t, sync.Toggle(ctx, user, "❤️"))

	post, ok := stub.Post("G1", "P1")
	require.True(t, ok)
	require.Len(t, post.Reactions, 1)
	assert.Equal(t, "❤️", post.Reactions[0].Emoji)

	// Replacing keeps one reaction per user, server side too.
	require.NoError(t, sync.Toggle(ctx, user, "😂"))
	post, _ = stub.Post("G1", "P1")
	require.Len(t, post.Reactions, 1)
	assert.Equal(t, "😂", post.Reactions[0].Emoji)

	// Toggling the same emoji removes it on both ends.
	require.NoError(t, sync.Toggle(ctx, user, "😂"))
	post, _ = stub.Post("G1", "P1")
	assert.Empty(t, post.Reactions)
	assert.Empty(t, sync.Committed())
}

func TestItemReactionEndToEnd(t *testing.T) {
	stub := New()
	seedItems(stub, "G1", 1)

	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	ctx := context.Background()
	require.NoError(t, client.ReactToItem(ctx, "G1", "photo-000.jpg", "u1", "🔥"))

	page, err := client.ListMedia(ctx, "G1", 1)
	require.NoError(t, err)
	require.Len(t, page.Media, 1)
	require.Len(t, page.Media[0].Reactions, 1)
	assert.Equal(t, "🔥", page.Media[0].Reactions[0].Emoji)
}

func TestReactionRollbackOnServerError(t *testing.T) {
	stub := New()
	// No post seeded: the reaction endpoint answers 404.
	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	sync := reactions.NewSynchronizer(func(ctx context.Context, userID, emoji string) error {
		return client.ReactToPost(ctx, "G1", "missing", userID, emoji)
	})

	err := sync.Toggle(context.Background(), models.User{ID: "u1"}, "❤️")
	require.Error(t, err)
	assert.Empty(t, sync.Committed())
	assert.False(t, sync.IsPendingAny())
}

func TestCommentFlowEndToEnd(t *testing.T) {
	stub := New()
	stub.SeedPost("G1", models.Post{PostID: "P1", Uploader: models.User{ID: "u9"}})

	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	user := models.User{ID: "u1", Name: "Alice"}
	composer := comments.NewComposer(client, "G1", "P1", user)
	ctx := context.Background()

	att := &comments.Attachment{
		Filename:  "cat.jpg",
		MediaType: models.MediaTypeImage,
		Data:      []byte("jpeg-bytes"),
		LocalURL:  "file:///tmp/cat.jpg",
	}
	require.NoError(t, composer.Submit(ctx, "look at this", att))

	views := composer.Views()
	require.Len(t, views, 1)
	assert.False(t, views[0].IsPending)
	require.NotNil(t, views[0].Media)
	assert.NotEmpty(t, views[0].Media.MediaID)
	assert.Equal(t, "file:///tmp/cat.jpg", views[0].Media.LocalURL)

	post, ok := stub.Post("G1", "P1")
	require.True(t, ok)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "look at this", post.Comments[0].Comment)
	require.NotNil(t, post.Comments[0].Media)
	assert.Equal(t, views[0].Media.MediaID, post.Comments[0].Media.MediaID)

	// React to the comment through the index-addressed legacy endpoint,
	// resolved from the stable id.
	require.NoError(t, composer.ToggleReaction(ctx, views[0].ID, user, "❤️"))
	post, _ = stub.Post("G1", "P1")
	require.Len(t, post.Comments[0].Reactions, 1)
	assert.Equal(t, "❤️", post.Comments[0].Reactions[0].Emoji)
}

func TestUploadRejectsUnknownMediaType(t *testing.T) {
	stub := New()
	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	err := client.UploadMedia(context.Background(), "G1", "u1", []api.Upload{
		{Filename: "track.mp3", Data: []byte("audio")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "track.mp3")
}

func TestUploadThenRefreshShowsNewItems(t *testing.T) {
	stub := New(WithPageSize(20))
	seedItems(stub, "G1", 20)

	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	client := api.New(srv.URL, "")
	pager := feed.NewPager(client)
	ctx := context.Background()

	require.NoError(t, pager.Load(ctx, "G1"))

	require.NoError(t, client.UploadMedia(ctx, "G1", "u1", []api.Upload{
		{Filename: "new.jpg", Data: []byte("img")},
	}))

	require.NoError(t, pager.Refresh(ctx, "G1"))
	snap := pager.Snapshot()
	require.NotEmpty(t, snap.Items)
	assert.Equal(t, "new.jpg", snap.Items[0].Filename)
}
