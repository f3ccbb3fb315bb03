package apt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/joshuapare/aptkit/engine"
	"github.com/joshuapare/aptkit/engine/dpkg"
)

// Cache is a handle to a package-cache engine. All access to the engine is
// serialized by an exclusive lock that is held for as long as a Session or a
// root cursor is open.
type Cache struct {
	opener      engine.Opener
	log         *slog.Logger
	lockTimeout time.Duration

	lock     *semaphore.Weighted
	poisoned atomic.Bool

	// guarded by lock
	eng    engine.Cache
	gen    uint64
	closed bool
}

// DefaultLockTimeout is how long lock-taking methods wait when neither their
// context nor WithLockTimeout sets a limit.
const DefaultLockTimeout = 30 * time.Second

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for lock and engine lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLockTimeout bounds how long lock-taking methods wait when their
// context carries no deadline of its own. The default is DefaultLockTimeout;
// zero waits for as long as the context allows.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Cache) { c.lockTimeout = d }
}

// New returns a cache over the engine built by opener. The engine is created
// lazily, on first checkout.
func New(opener engine.Opener, opts ...Option) *Cache {
	c := &Cache{
		opener:      opener,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		lockTimeout: DefaultLockTimeout,
		lock:        semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var singleton = sync.OnceValue(func() *Cache {
	return New(func() (engine.Cache, error) {
		cfg, err := dpkg.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		return cfg.Opener()()
	})
})

// Singleton returns the process-wide cache over this system's package
// databases, configured from APTKIT_* environment variables. It does not
// take the lock or open the engine.
func Singleton() *Cache { return singleton() }

// Poisoned reports whether a panic has made the cache unusable.
func (c *Cache) Poisoned() bool { return c.poisoned.Load() }

// Begin checks the cache out: it waits for the lock, opens the engine if
// needed and returns the session that owns the lock until Close.
//
// Calling Begin again from the goroutine that already holds a session can
// never succeed; it returns ErrLockTimeout once ctx (or the configured lock
// timeout) expires.
func (c *Cache) Begin(ctx context.Context) (*Session, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	return c.checkout()
}

// TryBegin is Begin without waiting: it fails with ErrBusy when the lock is
// held.
func (c *Cache) TryBegin() (*Session, error) {
	if c.Poisoned() {
		return nil, ErrPoisoned
	}
	if !c.lock.TryAcquire(1) {
		return nil, ErrBusy
	}
	return c.checkout()
}

// Do runs fn in a session. A panic escaping fn poisons the cache, since the
// engine may have been left mid-operation.
func (c *Cache) Do(ctx context.Context, fn func(*Session) error) error {
	s, err := c.Begin(ctx)
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			c.poison("panic inside session")
		}
		_ = s.Close()
	}()
	err = fn(s)
	ok = true
	return err
}

// Iter opens a cursor over every package. The cursor owns a private session:
// the lock is held until it is exhausted or closed.
func (c *Cache) Iter(ctx context.Context) (*PkgIter, error) {
	return c.rootIter(ctx, func(eng engine.Cache) engine.PkgIter { return eng.PkgBegin() })
}

// FindByName opens a cursor at the package called name (see
// Session.FindByName). Like Iter, the cursor holds the lock until closed.
func (c *Cache) FindByName(ctx context.Context, name string) (*PkgIter, error) {
	if err := checkArg("package name", name); err != nil {
		return nil, err
	}
	return c.rootIter(ctx, func(eng engine.Cache) engine.PkgIter { return eng.FindPkg(name) })
}

// FindByNameArch opens a cursor at name for arch.
func (c *Cache) FindByNameArch(ctx context.Context, name, arch string) (*PkgIter, error) {
	if err := checkArg("package name", name); err != nil {
		return nil, err
	}
	if err := checkArg("architecture", arch); err != nil {
		return nil, err
	}
	return c.rootIter(ctx, func(eng engine.Cache) engine.PkgIter { return eng.FindPkgArch(name, arch) })
}

// rootIter opens a package cursor that owns a fresh session.
func (c *Cache) rootIter(ctx context.Context, f func(engine.Cache) engine.PkgIter) (*PkgIter, error) {
	s, err := c.Begin(ctx)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			_ = s.Close()
		}
	}()
	it := s.pkgIter(s.root, true, func() engine.PkgIter { return f(s.eng) })
	ok = true
	return it, nil
}

// CompareVersions orders a and b with the engine's version rules, returning
// -1, 0 or +1. It takes the lock for the duration of the call.
func (c *Cache) CompareVersions(ctx context.Context, a, b string) (int, error) {
	if err := checkArg("version", a); err != nil {
		return 0, err
	}
	if err := checkArg("version", b); err != nil {
		return 0, err
	}
	s, err := c.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return s.CompareVersions(a, b)
}

// Compare is CompareVersions for sort functions. It panics if the
// comparison cannot be made.
func (c *Cache) Compare(a, b string) int {
	n, err := c.CompareVersions(context.Background(), a, b)
	if err != nil {
		panic(err)
	}
	return n
}

// Reload replaces the engine with a freshly opened one, picking up changes to
// the package databases. It waits until every session and root cursor has
// been closed.
func (c *Cache) Reload(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.lock.Release(1)

	start := time.Now()
	if err := c.closeEngine(); err != nil {
		c.log.Warn("closing engine for reload", "error", err)
	}
	if err := c.openEngine(); err != nil {
		return err
	}
	c.log.Info("cache reloaded", "generation", c.gen, "elapsed", time.Since(start))
	return nil
}

// Close waits for open sessions to finish and shuts the engine down. The
// cache cannot be used afterwards.
func (c *Cache) Close() error {
	if err := c.lock.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer c.lock.Release(1)
	if c.closed {
		return nil
	}
	c.closed = true
	if c.Poisoned() {
		c.eng = nil
		return ErrPoisoned
	}
	return c.closeEngine()
}

func (c *Cache) acquire(ctx context.Context) error {
	if c.Poisoned() {
		return ErrPoisoned
	}
	if _, ok := ctx.Deadline(); !ok && c.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lockTimeout)
		defer cancel()
	}
	if err := c.lock.Acquire(ctx, 1); err != nil {
		return &Error{Kind: ErrKindLockTimeout, Msg: "waiting for the cache lock", Err: err}
	}
	switch {
	case c.Poisoned():
		c.lock.Release(1)
		return ErrPoisoned
	case c.closed:
		c.lock.Release(1)
		return ErrClosed
	}
	return nil
}

// checkout runs with the lock held and hands it over to the new session.
func (c *Cache) checkout() (*Session, error) {
	if c.closed {
		c.lock.Release(1)
		return nil, ErrClosed
	}
	if c.eng == nil {
		if err := c.openEngine(); err != nil {
			c.lock.Release(1)
			return nil, err
		}
	}
	c.log.Debug("cache checked out", "generation", c.gen)
	return newSession(c, c.eng), nil
}

func (c *Cache) checkin() {
	c.log.Debug("cache checked in", "generation", c.gen)
	c.lock.Release(1)
}

func (c *Cache) openEngine() error {
	var (
		eng engine.Cache
		err error
	)
	c.guard("open engine", func() { eng, err = c.opener() })
	if err != nil {
		return &Error{Kind: ErrKindEngine, Msg: "open engine", Err: err}
	}
	if eng == nil {
		return &Error{Kind: ErrKindEngine, Msg: "open engine", Err: errors.New("opener returned no cache")}
	}
	c.eng = eng
	c.gen++
	c.log.Debug("engine opened", "generation", c.gen)
	return nil
}

func (c *Cache) closeEngine() error {
	if c.eng == nil {
		return nil
	}
	eng := c.eng
	c.eng = nil
	var err error
	c.guard("close engine", func() { err = eng.Close() })
	if err != nil {
		return &Error{Kind: ErrKindEngine, Msg: "close engine", Err: err}
	}
	c.log.Debug("engine closed", "generation", c.gen)
	return nil
}

// guard runs an engine call. If it does not return normally the engine may
// be half way through a mutation, so the cache is poisoned.
func (c *Cache) guard(op string, fn func()) {
	ok := false
	defer func() {
		if !ok {
			c.poison(op)
		}
	}()
	fn()
	ok = true
}

func (c *Cache) poison(op string) {
	if c.poisoned.CompareAndSwap(false, true) {
		c.log.Error("cache poisoned", "operation", op)
	}
}
