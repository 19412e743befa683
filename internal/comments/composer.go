package comments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"group-gallery-client/internal/api"
	"group-gallery-client/internal/models"
	"group-gallery-client/internal/reactions"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service is the slice of the API the composer needs
type Service interface {
	UploadCommentMedia(ctx context.Context, groupID, postID, userID string, file api.Upload) (models.CommentMedia, error)
	CommentOnPost(ctx context.Context, groupID, postID string, req api.CommentRequest) error
	ReactToComment(ctx context.Context, groupID, postID string, index int, userID, emoji string) error
}

// Attachment is a local file selected for a comment
type Attachment struct {
	Filename    string
	ContentType string
	MediaType   string
	Data        []byte
	LocalURL    string
}

// View is a comment as it should be rendered. DisplayTimestamp is the
// sentinel "new" while the comment awaits server confirmation, which the
// UI renders as a spinner in place of a timestamp.
type View struct {
	ID               string
	Comment          string
	DisplayTimestamp string
	User             models.User
	Reactions        []models.ReactionView
	Media            *models.CommentMedia
	IsPending        bool
}

type pendingComment struct {
	id        string
	text      string
	createdAt time.Time
	user      models.User
	media     *models.CommentMedia
}

// Composer manages the comment thread of a single post: it accepts new
// submissions, shows them immediately in a local-only pending list,
// uploads attached media, and reconciles with the confirmed list once
// the server has persisted the comment.
//
// Every comment carries a stable client-generated id from the moment it
// exists, and reactions are keyed by that id. The legacy reaction
// endpoint still addresses comments by position, so the index is
// computed from the id at call time, after any pending entries have
// shifted around.
type Composer struct {
	mu      sync.Mutex
	svc     Service
	groupID string
	postID  string
	user    models.User

	confirmed *Collection
	pending   []*pendingComment

	syncs map[string]*reactions.Synchronizer

	// assigned maps a server comment's (user id, timestamp) pair to the
	// client id it was given on first ingestion, so ids survive refreshes.
	assigned map[string]string
}

// NewComposer creates a composer for one post
func NewComposer(svc Service, groupID, postID string, user models.User) *Composer {
	return &Composer{
		svc:       svc,
		groupID:   groupID,
		postID:    postID,
		user:      user,
		confirmed: NewCollection(),
		syncs:     make(map[string]*reactions.Synchronizer),
		assigned:  make(map[string]string),
	}
}

// SetComments ingests the server-confirmed comment list, assigning stable
// client ids and reseeding the per-comment reaction state.
func (c *Composer) SetComments(serverComments []models.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ingested := make([]models.Comment, 0, len(serverComments))
	for _, sc := range serverComments {
		key := sc.User.ID + "|" + sc.Timestamp.UTC().Format(time.RFC3339Nano)
		id, ok := c.assigned[key]
		if !ok {
			id = uuid.New().String()
			c.assigned[key] = id
		}
		sc.ID = id
		ingested = append(ingested, sc)
		c.syncFor(id).SetCommitted(sc.Reactions)
	}

	c.confirmed.Replace(ingested)
}

// Submit posts a new comment with optional attached media. The comment is
// visible through Views before any network call happens; on any failure
// the pending entry is removed entirely and the error returned so the
// caller can alert the user; no partial comment is left behind.
//
// Submission with empty trimmed text and no attachment is a no-op.
func (c *Composer) Submit(ctx context.Context, text string, attachment *Attachment) error {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return nil
	}

	p := &pendingComment{
		id:        uuid.New().String(),
		text:      text,
		createdAt: time.Now(),
		user:      c.user,
	}
	if attachment != nil {
		p.media = &models.CommentMedia{
			MediaType: attachment.MediaType,
			LocalURL:  attachment.LocalURL,
		}
	}

	c.mu.Lock()
	c.pending = append(c.pending, p)
	c.mu.Unlock()

	var descriptor *models.CommentMedia

	if attachment != nil {
		uploaded, err := c.svc.UploadCommentMedia(ctx, c.groupID, c.postID, c.user.ID, api.Upload{
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Data:        attachment.Data,
		})
		if err != nil {
			c.removePending(p.id)
			return fmt.Errorf("failed to upload comment media: %w", err)
		}

		uploaded.LocalURL = attachment.LocalURL
		uploaded.IsDoneUploading = true

		c.mu.Lock()
		p.media = &uploaded
		c.mu.Unlock()

		descriptor = &uploaded
	}

	err := c.svc.CommentOnPost(ctx, c.groupID, c.postID, api.CommentRequest{
		UserID:  c.user.ID,
		Comment: text,
		Media:   descriptor,
	})
	if err != nil {
		c.removePending(p.id)
		return fmt.Errorf("failed to submit comment: %w", err)
	}

	c.mu.Lock()
	confirmed := models.Comment{
		ID:        p.id,
		Comment:   text,
		Timestamp: p.createdAt,
		User:      c.user,
		Media:     p.media,
	}
	c.assigned[c.user.ID+"|"+p.createdAt.UTC().Format(time.RFC3339Nano)] = p.id
	c.confirmed.Append(confirmed)
	c.dropPendingLocked(p.id)
	c.syncFor(p.id)
	c.mu.Unlock()

	log.Info().
		Str("post_id", c.postID).
		Str("comment_id", p.id).
		Msg("Comment confirmed")
	return nil
}

// ToggleReaction toggles the user's reaction on the comment with the
// given stable id. Reaction failures roll back silently like any other
// reaction; a missing comment id is an error.
func (c *Composer) ToggleReaction(ctx context.Context, commentID string, user models.User, emoji string) error {
	c.mu.Lock()
	if _, ok := c.indexOfLocked(commentID); !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown comment %q", commentID)
	}
	s := c.syncFor(commentID)
	c.mu.Unlock()

	return s.Toggle(ctx, user, emoji)
}

// IsPendingReaction reports whether the comment has a reaction toggle in
// flight, for gating the reaction affordance.
func (c *Composer) IsPendingReaction(commentID string) bool {
	c.mu.Lock()
	s, ok := c.syncs[commentID]
	c.mu.Unlock()
	return ok && s.IsPendingAny()
}

// Views returns the combined comment list for rendering: confirmed
// comments in server order, then pending ones in submission order.
func (c *Composer) Views() []View {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.confirmed.Snapshot()
	views := make([]View, 0, len(snap.Comments)+len(c.pending))

	for _, cm := range snap.Comments {
		views = append(views, View{
			ID:               cm.ID,
			Comment:          cm.Comment,
			DisplayTimestamp: cm.Timestamp.Format(time.RFC3339),
			User:             cm.User,
			Reactions:        c.syncFor(cm.ID).View(),
			Media:            cm.Media,
		})
	}

	for _, p := range c.pending {
		views = append(views, View{
			ID:               p.id,
			Comment:          p.text,
			DisplayTimestamp: models.TimestampNew,
			User:             p.user,
			Reactions:        c.syncFor(p.id).View(),
			Media:            p.media,
			IsPending:        true,
		})
	}

	return views
}

// syncFor returns the reaction synchronizer for a comment id, creating it
// on first use. Callers must hold c.mu.
func (c *Composer) syncFor(commentID string) *reactions.Synchronizer {
	if s, ok := c.syncs[commentID]; ok {
		return s
	}
	s := reactions.NewSynchronizer(func(ctx context.Context, userID, emoji string) error {
		c.mu.Lock()
		index, ok := c.indexOfLocked(commentID)
		c.mu.Unlock()
		if !ok {
			return fmt.Errorf("comment %q is no longer present", commentID)
		}
		return c.svc.ReactToComment(ctx, c.groupID, c.postID, index, userID, emoji)
	})
	c.syncs[commentID] = s
	return s
}

// indexOfLocked resolves a stable comment id to its current position in
// the combined (confirmed then pending) list.
func (c *Composer) indexOfLocked(commentID string) (int, bool) {
	snap := c.confirmed.Snapshot()
	for i, cm := range snap.Comments {
		if cm.ID == commentID {
			return i, true
		}
	}
	for i, p := range c.pending {
		if p.id == commentID {
			return len(snap.Comments) + i, true
		}
	}
	return 0, false
}

func (c *Composer) removePending(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropPendingLocked(id)
}

func (c *Composer) dropPendingLocked(id string) {
	for i, p := range c.pending {
		if p.id == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}
