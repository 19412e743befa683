package stubapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"group-gallery-client/internal/models"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server is an in-memory implementation of the media service contract,
// used as a development target and as the fixture for integration tests.
// It is deliberately not a production backend: no persistence, no auth.
type Server struct {
	mu          sync.Mutex
	pageSize    int
	legacyPages bool
	groups      map[string]*groupState

	hub *hub
}

type groupState struct {
	items []models.MediaItem
	posts map[string]*postState
}

type postState struct {
	post models.Post
}

// Option configures the stub server
type Option func(*Server)

// WithPageSize sets how many items one feed page carries
func WithPageSize(n int) Option {
	return func(s *Server) { s.pageSize = n }
}

// WithLegacyPages makes the feed endpoint answer with the legacy bare
// array shape instead of {media, hasMore}.
func WithLegacyPages() Option {
	return func(s *Server) { s.legacyPages = true }
}

// New creates an empty stub server
func New(opts ...Option) *Server {
	s := &Server{
		pageSize: 20,
		groups:   make(map[string]*groupState),
		hub:      newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler for the full endpoint contract
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/upload", s.uploadMedia)

	r.Route("/media/{groupID}", func(r chi.Router) {
		r.Get("/", s.listMedia)
		r.Route("/post/{postID}", func(r chi.Router) {
			r.Post("/reactions", s.reactToPost)
			r.Post("/comment", s.commentOnPost)
			r.Post("/comment/{index}/reactions", s.reactToComment)
			r.Post("/comment-media", s.uploadCommentMedia)
		})
		r.Post("/{itemKey}/reactions", s.reactToItem)
		r.Post("/{itemKey}/comment", s.commentOnItem)
	})

	r.Get("/ws", s.hub.handle)

	return r
}

// SeedItem adds a media item to a group's feed
func (s *Server) SeedItem(groupID string, item models.MediaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group(groupID).items = append(s.group(groupID).items, item)
}

// SeedPost adds a post to a group
func (s *Server) SeedPost(groupID string, p models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group(groupID).posts[p.PostID] = &postState{post: p}
}

// Post returns a copy of a seeded post's current state
func (s *Server) Post(groupID, postID string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return models.Post{}, false
	}
	ps, ok := g.posts[postID]
	if !ok {
		return models.Post{}, false
	}
	return ps.post, true
}

func (s *Server) group(groupID string) *groupState {
	g, ok := s.groups[groupID]
	if !ok {
		g = &groupState{posts: make(map[string]*postState)}
		s.groups[groupID] = g
	}
	return g
}

func (s *Server) listMedia(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}

	s.mu.Lock()
	g := s.group(groupID)
	start := (page - 1) * s.pageSize
	end := start + s.pageSize
	if start > len(g.items) {
		start = len(g.items)
	}
	if end > len(g.items) {
		end = len(g.items)
	}
	media := append([]models.MediaItem(nil), g.items[start:end]...)
	hasMore := end < len(g.items)
	legacy := s.legacyPages
	s.mu.Unlock()

	if media == nil {
		media = []models.MediaItem{}
	}

	if legacy {
		respondJSON(w, http.StatusOK, media)
		return
	}
	respondJSON(w, http.StatusOK, models.PageResult{Media: media, HasMore: hasMore})
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	groupID := r.FormValue("group")
	uploaderID := r.FormValue("uploaderId")
	if groupID == "" || uploaderID == "" {
		respondError(w, "group and uploaderId are required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["media[]"]
	if len(files) == 0 {
		respondError(w, "no media files", http.StatusBadRequest)
		return
	}

	var items []models.MediaItem
	for _, fh := range files {
		mediaType, err := mediaTypeFor(fh.Filename)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(w, "failed to read file", http.StatusBadRequest)
			return
		}
		io.Copy(io.Discard, f)
		f.Close()

		items = append(items, models.MediaItem{
			Filename: fh.Filename,
			Uploader: models.User{ID: uploaderID},
			Metadata: models.MediaMetadata{
				ItemID:     uuid.New().String(),
				UploadDate: time.Now(),
				Dimensions: models.Dimensions{Width: 1024, Height: 768},
				MediaType:  mediaType,
			},
		})
	}

	s.mu.Lock()
	g := s.group(groupID)
	// Newest first, like the real feed.
	g.items = append(items, g.items...)
	s.mu.Unlock()

	s.hub.broadcast(map[string]interface{}{
		"type":      "media_uploaded",
		"group":     groupID,
		"user_id":   uploaderID,
		"timestamp": time.Now().UnixMilli(),
	})

	log.Info().Str("group", groupID).Int("files", len(files)).Msg("Stub upload accepted")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) reactToItem(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	filename := chi.URLParam(r, "itemKey")

	req, ok := decodeReaction(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.groups[groupID]
	if !exists {
		respondError(w, "group not found", http.StatusNotFound)
		return
	}
	for i := range g.items {
		if g.items[i].Filename == filename {
			g.items[i].Reactions = toggleReaction(g.items[i].Reactions, req)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	respondError(w, "media item not found", http.StatusNotFound)
}

func (s *Server) reactToPost(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReaction(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.findPost(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	ps.post.Reactions = toggleReaction(ps.post.Reactions, req)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) reactToComment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, "invalid comment index", http.StatusBadRequest)
		return
	}

	req, ok := decodeReaction(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ps, findErr := s.findPost(r)
	if findErr != nil {
		respondError(w, findErr.Error(), http.StatusNotFound)
		return
	}
	if index >= len(ps.post.Comments) {
		respondError(w, "comment not found", http.StatusNotFound)
		return
	}
	ps.post.Comments[index].Reactions = toggleReaction(ps.post.Comments[index].Reactions, req)
	w.WriteHeader(http.StatusOK)
}

type commentRequest struct {
	UserID  string               `json:"userId"`
	Comment string               `json:"comment"`
	Media   *models.CommentMedia `json:"media,omitempty"`
}

func (s *Server) commentOnPost(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		respondError(w, "userId is required", http.StatusBadRequest)
		return
	}
	if req.Media != nil {
		if err := req.Media.Validate(); err != nil {
			respondError(w, fmt.Sprintf("invalid media: %v", err), http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.findPost(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	ps.post.Comments = append(ps.post.Comments, models.Comment{
		Comment:   req.Comment,
		Timestamp: time.Now(),
		User:      models.User{ID: req.UserID},
		Media:     req.Media,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) commentOnItem(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	itemID := chi.URLParam(r, "itemKey")

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.groups[groupID]
	if !exists {
		respondError(w, "group not found", http.StatusNotFound)
		return
	}
	for i := range g.items {
		if g.items[i].Metadata.ItemID == itemID || g.items[i].Filename == itemID {
			g.items[i].Comments = append(g.items[i].Comments, models.Comment{
				Comment:   req.Comment,
				Timestamp: time.Now(),
				User:      models.User{ID: req.UserID},
				Media:     req.Media,
			})
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	respondError(w, "media item not found", http.StatusNotFound)
}

func (s *Server) uploadCommentMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	if r.FormValue("userId") == "" {
		respondError(w, "userId is required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["media"]
	if len(files) != 1 {
		respondError(w, "exactly one media file is required", http.StatusBadRequest)
		return
	}

	mediaType, err := mediaTypeFor(files[0].Filename)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, models.CommentMedia{
		MediaID:    uuid.New().String(),
		MediaType:  mediaType,
		Dimensions: models.Dimensions{Width: 800, Height: 600},
	})
}

// findPost resolves the group and post URL params. Callers must hold s.mu.
func (s *Server) findPost(r *http.Request) (*postState, error) {
	groupID := chi.URLParam(r, "groupID")
	postID := chi.URLParam(r, "postID")

	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group not found")
	}
	ps, ok := g.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post not found")
	}
	return ps, nil
}

type reactionRequest struct {
	UserID   string `json:"userId"`
	Reaction string `json:"reaction"`
}

func decodeReaction(w http.ResponseWriter, r *http.Request) (reactionRequest, bool) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.UserID == "" || req.Reaction == "" {
		respondError(w, "userId and reaction are required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// toggleReaction applies the one-reaction-per-user rule: posting the
// emoji a user already has removes it, anything else replaces their
// previous reaction.
func toggleReaction(reactions []models.Reaction, req reactionRequest) []models.Reaction {
	for i, existing := range reactions {
		if existing.User.ID == req.UserID {
			out := append(append([]models.Reaction(nil), reactions[:i]...), reactions[i+1:]...)
			if existing.Emoji == req.Reaction {
				return out
			}
			return append(out, models.Reaction{User: existing.User, Emoji: req.Reaction})
		}
	}
	return append(reactions, models.Reaction{
		User:  models.User{ID: req.UserID},
		Emoji: req.Reaction,
	})
}

// mediaTypeFor derives the media type from a filename. Unknown
// extensions are a validation error, never a silent default.
func mediaTypeFor(filename string) (string, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return models.MediaTypeImage, nil
	case ".mp4", ".mov", ".webm":
		return models.MediaTypeVideo, nil
	default:
		return "", fmt.Errorf("unsupported media type for %q", filename)
	}
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// hub tracks websocket subscribers and broadcasts service events to them
type hub struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	conns    map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *hub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Drain reads so close frames are processed; drop the connection on
	// any read error.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.conns, conn)
				h.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

func (h *hub) broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}
