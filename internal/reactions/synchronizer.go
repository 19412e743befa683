package reactions

import (
	"context"
	"sync"

	"group-gallery-client/internal/models"

	"github.com/rs/zerolog/log"
)

// Sender posts the new reaction state for the entity this synchronizer
// manages. Implementations wrap one of the API reaction endpoints.
type Sender func(ctx context.Context, userID, emoji string) error

// PopHook is called after a reaction add is confirmed by the server.
// It drives the transient pop animation and is purely cosmetic.
type PopHook func(emoji string)

type operation struct {
	seq      uint64
	user     models.User
	emoji    string
	removing bool
}

// Synchronizer manages reaction state for a single entity (media item,
// post, or comment) with optimistic updates.
//
// Committed state holds only what the server has confirmed. In-flight
// toggles live in a separate operation set; View joins the two, so a
// failed operation rolls back by simply being dropped. Each toggle
// carries a sequence number and a settling response older than the
// newest issued one is discarded, so a stale response can never
// overwrite newer state.
//
// Overlapping toggles on different emojis by the same user still race at
// the network layer with last-write-wins; the sequence check only
// protects the client's view of the outcome.
type Synchronizer struct {
	mu        sync.Mutex
	committed []models.Reaction
	ops       []*operation
	seq       uint64

	send  Sender
	onPop PopHook
}

// NewSynchronizer creates a synchronizer for one entity
func NewSynchronizer(send Sender) *Synchronizer {
	return &Synchronizer{send: send}
}

// OnPop registers the pop-animation hook
func (s *Synchronizer) OnPop(hook PopHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPop = hook
}

// SetCommitted replaces the committed reaction set with server state,
// e.g. after a feed refresh.
func (s *Synchronizer) SetCommitted(reactions []models.Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append([]models.Reaction(nil), reactions...)
}

// Committed returns a copy of the server-confirmed reaction set
func (s *Synchronizer) Committed() []models.Reaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Reaction(nil), s.committed...)
}

// IsPendingAny reports whether any toggle is still in flight. Callers are
// expected to disable the reaction affordance while this is true; toggles
// themselves are not de-duplicated.
func (s *Synchronizer) IsPendingAny() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops) > 0
}

// View returns the reaction set as it should be rendered: committed
// reactions with the in-flight operations applied in issue order, each
// optimistic entry flagged pending.
func (s *Synchronizer) View() []models.ReactionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Synchronizer) viewLocked() []models.ReactionView {
	view := make([]models.ReactionView, 0, len(s.committed)+len(s.ops))
	for _, r := range s.committed {
		view = append(view, models.ReactionView{User: r.User, Emoji: r.Emoji})
	}

	for _, op := range s.ops {
		if op.removing {
			for i := range view {
				if view[i].User.ID == op.user.ID && view[i].Emoji == op.emoji {
					view[i].IsPending = true
				}
			}
			continue
		}

		// Adding or replacing: at most one reaction per user, so any
		// existing entry for this user goes away first.
		kept := view[:0]
		for _, v := range view {
			if v.User.ID != op.user.ID {
				kept = append(kept, v)
			}
		}
		view = append(kept, models.ReactionView{User: op.user, Emoji: op.emoji, IsPending: true})
	}

	return view
}

// Toggle adds, replaces, or removes the user's reaction on the entity.
// The optimistic effect is visible through View before the network call
// is made; the committed set only changes once the server confirms. On
// failure the in-flight entry is dropped, which restores the
// pre-optimistic view, and the error is returned for logging only;
// reaction failures are never surfaced as blocking errors.
func (s *Synchronizer) Toggle(ctx context.Context, user models.User, emoji string) error {
	s.mu.Lock()

	removing := false
	for _, v := range s.viewLocked() {
		if v.User.ID == user.ID && v.Emoji == emoji && !v.IsPending {
			removing = true
			break
		}
	}

	s.seq++
	op := &operation{seq: s.seq, user: user, emoji: emoji, removing: removing}
	s.ops = append(s.ops, op)
	s.mu.Unlock()

	err := s.send(ctx, user.ID, emoji)

	s.mu.Lock()
	s.dropOp(op)

	if op.seq != s.seq {
		// A newer toggle was issued for this entity while this one was in
		// flight; its outcome supersedes ours either way.
		latest := s.seq
		s.mu.Unlock()
		log.Debug().
			Uint64("seq", op.seq).
			Uint64("latest", latest).
			Str("user_id", user.ID).
			Msg("Discarding stale reaction response")
		return err
	}

	if err != nil {
		s.mu.Unlock()
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Str("reaction", emoji).
			Msg("Reaction toggle failed, rolled back")
		return err
	}

	s.applyLocked(op)
	pop := s.onPop
	s.mu.Unlock()

	if !removing && pop != nil {
		pop(emoji)
	}

	return nil
}

func (s *Synchronizer) dropOp(op *operation) {
	for i, o := range s.ops {
		if o == op {
			s.ops = append(s.ops[:i], s.ops[i+1:]...)
			return
		}
	}
}

// applyLocked folds a confirmed operation into the committed set
func (s *Synchronizer) applyLocked(op *operation) {
	kept := s.committed[:0]
	for _, r := range s.committed {
		if r.User.ID != op.user.ID {
			kept = append(kept, r)
		}
	}
	s.committed = kept

	if !op.removing {
		s.committed = append(s.committed, models.Reaction{User: op.user, Emoji: op.emoji})
	}
}
