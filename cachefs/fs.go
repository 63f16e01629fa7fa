/*
Package cachefs puts an optional, time-bounded read cache in front of the
served file system, using github.com/ancientlore/cachefs and groupcache.

	// Setup groupcache (with no peers)
	groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })

	// Cache up to 10MB of directory reads and file contents for ten seconds
	fsys := cachefs.New(os.DirFS("."), &cachefs.Config{SizeInBytes: 10*1024*1024, Duration: 10*time.Second})

groupcache does not support expiration; cachefs quantizes keys so that entries
turn over around the duration given. Unlike the underlying package, a zero
Duration here means no caching at all: the inner file system is returned as is,
so every read reflects the current state of the disk.
*/
package cachefs

import (
	"io/fs"

	cfs "github.com/ancientlore/cachefs"
	"github.com/google/uuid"
)

// Config stores the configuration settings of your cache.
type Config = cfs.Config

// New wraps innerFS with a read-only cache. If config is nil or its Duration
// is zero, innerFS is returned unchanged. An empty GroupName is replaced by a
// random one, since groupcache refuses to register the same group twice.
func New(innerFS fs.FS, config *Config) fs.FS {
	if config == nil || config.Duration <= 0 {
		return innerFS
	}
	c := *config
	if c.GroupName == "" {
		c.GroupName = "htmlroulette-" + uuid.NewString()
	}
	return cfs.New(innerFS, &c)
}
