package account

import (
	"context"
	"errors"
	"sync"

	"github.com/templui/magicprofile/internal/model"
)

// SessionResolver returns the active session for a session id, or
// model.ErrUnauthenticated when there is none.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*model.Session, error)
}

// ProfileStore reads and writes the single profile row of a user.
// Fetch returns model.ErrProfileNotFound when the row does not exist.
type ProfileStore interface {
	Fetch(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) error
}

// Signer ends a server-side session.
type Signer interface {
	SignOut(ctx context.Context, sessionID string) error
}

// Controller drives the profile editor of one session.
//
// Every Load and Update takes a new generation. Its outcome is applied to the
// view only if no later call or session change has superseded it, and only the
// owner of the current generation clears the loading flag.
type Controller struct {
	sessions SessionResolver
	profiles ProfileStore
	signer   Signer
	clock    Clock

	mu        sync.Mutex
	sessionID string
	gen       uint64
	loading   bool
	view      View
}

func NewController(sessionID string, sessions SessionResolver, profiles ProfileStore, signer Signer, clock Clock) *Controller {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &Controller{
		sessions:  sessions,
		profiles:  profiles,
		signer:    signer,
		clock:     clock,
		sessionID: sessionID,
	}
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// SetSession switches the controller to another session. Results of calls
// still in flight for the previous session are discarded. It reports whether
// the session actually changed; the caller is expected to Load afterwards.
func (c *Controller) SetSession(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sessionID == c.sessionID {
		return false
	}
	c.sessionID = sessionID
	c.gen++
	c.loading = false
	c.view = View{}
	return true
}

// Load resolves the session and fetches the profile row.
// A missing row is not an error: the view ends Ready with blank fields.
func (c *Controller) Load(ctx context.Context) Result {
	c.mu.Lock()
	gen := c.begin()
	sessionID := c.sessionID
	c.view.Phase = PhaseLoading
	c.mu.Unlock()
	defer c.release(gen)

	session, err := c.resolve(ctx, sessionID)
	if err != nil {
		return c.finishLoad(gen, nil, "", err)
	}

	profile, err := c.profiles.Fetch(ctx, session.UserID)
	if errors.Is(err, model.ErrProfileNotFound) {
		return c.finishLoad(gen, nil, session.UserID, nil)
	}
	if err != nil {
		return c.finishLoad(gen, nil, session.UserID, &ServiceError{Op: "fetch profile", Err: err})
	}

	return c.finishLoad(gen, profile, session.UserID, nil)
}

func (c *Controller) finishLoad(gen uint64, profile *model.Profile, userID string, err error) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return Result{Status: StatusStale, View: c.snapshot()}
	}

	c.loading = false
	c.view = View{Phase: PhaseReady, UserID: userID}
	switch {
	case err != nil:
		return Result{Status: StatusFailed, View: c.snapshot(), Err: err}
	case profile == nil:
		return Result{Status: StatusEmpty, View: c.snapshot()}
	}

	c.view.Username = model.Value(profile.Username)
	c.view.Website = model.Value(profile.Website)
	c.view.AvatarURL = model.Value(profile.AvatarURL)
	return Result{Status: StatusLoaded, View: c.snapshot()}
}

// Update writes the full profile record: the displayed values overridden by
// fields, the user id of the re-resolved session and a fresh updated_at.
// A controller that has not loaded the session's profile yet merges fields
// into the stored row instead. No write happens if the session cannot be
// resolved.
func (c *Controller) Update(ctx context.Context, fields Fields) Result {
	return c.update(ctx, fields, nil)
}

// AvatarUploaded shows ref right away and persists it with one Update.
// If the write is refused or fails, the previous reference is shown again.
func (c *Controller) AvatarUploaded(ctx context.Context, ref string) Result {
	c.mu.Lock()
	previous := c.view.AvatarURL
	c.view.AvatarURL = ref
	c.mu.Unlock()

	res := c.update(ctx, Fields{AvatarURL: &ref}, &previous)
	if res.Status != StatusBusy && res.Status != StatusFailed {
		return res
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.AvatarURL == ref {
		c.view.AvatarURL = previous
	}
	res.View = c.snapshot()
	return res
}

// update is Update with the avatar reference shown before an optimistic
// change, so the replaced reference can be reported.
func (c *Controller) update(ctx context.Context, fields Fields, shownAvatar *string) Result {
	c.mu.Lock()
	if c.loading {
		defer c.mu.Unlock()
		return Result{Status: StatusBusy, View: c.snapshot(), Err: ErrBusy}
	}
	gen := c.begin()
	sessionID := c.sessionID
	base := c.view
	c.mu.Unlock()
	defer c.release(gen)

	if shownAvatar != nil {
		base.AvatarURL = *shownAvatar
	}

	session, err := c.resolve(ctx, sessionID)
	if err != nil {
		return c.failed(gen, err)
	}

	if base.Phase != PhaseReady || base.UserID != session.UserID {
		stored, err := c.profiles.Fetch(ctx, session.UserID)
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			base = View{}
		case err != nil:
			return c.failed(gen, &ServiceError{Op: "fetch profile", Err: err})
		default:
			base = View{
				Username:  model.Value(stored.Username),
				Website:   model.Value(stored.Website),
				AvatarURL: model.Value(stored.AvatarURL),
			}
		}
	}

	next := base
	if fields.Username != nil {
		next.Username = *fields.Username
	}
	if fields.Website != nil {
		next.Website = *fields.Website
	}
	if fields.AvatarURL != nil {
		next.AvatarURL = *fields.AvatarURL
	}

	profile := &model.Profile{
		ID:        session.UserID,
		Username:  model.Nullable(next.Username),
		Website:   model.Nullable(next.Website),
		AvatarURL: model.Nullable(next.AvatarURL),
		UpdatedAt: c.clock.Now(),
	}
	if err := c.profiles.Upsert(ctx, profile); err != nil {
		return c.failed(gen, &ServiceError{Op: "update profile", Err: err})
	}

	var replaced string
	if base.AvatarURL != next.AvatarURL {
		replaced = base.AvatarURL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return Result{Status: StatusStale, View: c.snapshot(), Written: true, Replaced: replaced}
	}
	c.loading = false
	c.view = View{
		Phase:     PhaseReady,
		UserID:    profile.ID,
		Username:  model.Value(profile.Username),
		Website:   model.Value(profile.Website),
		AvatarURL: model.Value(profile.AvatarURL),
	}
	return Result{Status: StatusSaved, View: c.snapshot(), Written: true, Replaced: replaced}
}

// SignOut ends the session and resets the controller to Idle.
func (c *Controller) SignOut(ctx context.Context) Result {
	c.mu.Lock()
	if c.loading {
		defer c.mu.Unlock()
		return Result{Status: StatusBusy, View: c.snapshot(), Err: ErrBusy}
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	if err := c.signer.SignOut(ctx, sessionID); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return Result{Status: StatusFailed, View: c.snapshot(), Err: &ServiceError{Op: "sign out", Err: err}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = ""
	c.gen++
	c.loading = false
	c.view = View{}
	return Result{Status: StatusSignedOut, View: c.snapshot()}
}

func (c *Controller) resolve(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, model.ErrUnauthenticated
	}
	session, err := c.sessions.ResolveSession(ctx, sessionID)
	if errors.Is(err, model.ErrUnauthenticated) {
		return nil, model.ErrUnauthenticated
	}
	if err != nil {
		return nil, &ServiceError{Op: "resolve session", Err: err}
	}
	if session == nil {
		return nil, model.ErrUnauthenticated
	}
	return session, nil
}

func (c *Controller) failed(gen uint64, err error) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return Result{Status: StatusStale, View: c.snapshot()}
	}
	c.loading = false
	return Result{Status: StatusFailed, View: c.snapshot(), Err: err}
}

// begin must be called with mu held.
func (c *Controller) begin() uint64 {
	c.gen++
	c.loading = true
	return c.gen
}

func (c *Controller) release(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.loading = false
	if c.view.Phase == PhaseLoading {
		c.view.Phase = PhaseReady
	}
}

// snapshot must be called with mu held.
func (c *Controller) snapshot() View {
	v := c.view
	v.Loading = c.loading
	return v
}
