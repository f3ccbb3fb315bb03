// Package apt is a safe interface to a package-cache engine such as the one
// APT builds from /var/lib/dpkg/status and /var/lib/apt/lists.
//
// # Lock as lifetime
//
// The engine is single threaded, so a Cache serializes all access through one
// exclusive lock. The lock is held by a Session, from Begin until Close, or
// by a root cursor returned from Cache.Iter, Cache.FindByName or
// Cache.FindByNameArch, until the cursor is exhausted or closed:
//
//	cache := apt.Singleton()
//	it, err := cache.FindByName(ctx, "apt")
//	if err != nil {
//	    return err
//	}
//	defer it.Close()
//	if pkg, ok := it.Peek(); ok {
//	    fmt.Println(pkg.PrettyPrint())
//	}
//
// While a cursor is open, every other lock-taking call waits, including calls
// from the same goroutine, for at most DefaultLockTimeout unless the context
// or WithLockTimeout says otherwise; then the call fails with ErrLockTimeout.
//
// # Cursors and views
//
// Cursors follow the engine's hierarchy: package, version, version file
// (origin) and package file, plus dependencies. Cursors opened from a view
// are released when the cursor that produced the view moves on. Views are
// only valid while their cursor stays put; reading a stale view panics with
// ErrStaleView. Text is decoded when read, and undecodable engine text is
// reported through Err rather than returned.
//
// # Poisoning
//
// A panic that unwinds through an engine call, a range loop over a cursor,
// or Cache.Do leaves the engine in an unknown state. The cache is then
// poisoned: every later call fails with ErrPoisoned, and Reload does not
// clear it.
package apt
