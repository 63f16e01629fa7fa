package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"

	"github.com/ancientlore/htmlroulette/cachefs"
	"github.com/ancientlore/htmlroulette/resolve"
	"github.com/ancientlore/htmlroulette/site"
	"github.com/ancientlore/htmlroulette/web"
)

// main is where it all begins. 🎲
func main() {
	// Setup flags
	var (
		fBase              = flag.String("base", ".", "Base directory containing subdirectories of HTML files.")
		fHost              = flag.String("host", "0.0.0.0", "Host/interface to bind.")
		fPort              = flag.Int("port", 8000, "Port to listen on.")
		fReadTimeout       = flag.Duration("readtimeout", 10*time.Second, "HTTP server read timeout.")
		fReadHeaderTimeout = flag.Duration("readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
		fWriteTimeout      = flag.Duration("writetimeout", 30*time.Second, "HTTP server write timeout.")
		fGzip              = flag.Bool("gzip", false, "Compress responses for clients that accept gzip.")
		fCacheDuration     = flag.Duration("cacheduration", 0, "How long directory reads and file contents may be cached; 0 disables the cache.")
		fCacheSize         = flag.Int64("cachesize", 10*1024*1024, "Size of the read cache in bytes.")
		fTemplates         = flag.String("templates", "", "Directory of templates overriding the built-in pages.")
	)
	flag.Parse()
	flagenv.Prefix = "ROULETTE_"
	flagenv.Parse()

	// Setup groupcache (with no peers)
	groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })

	// Resolve the base folder
	res, err := resolve.New(*fBase, func(inner fs.FS) fs.FS {
		return cachefs.New(inner, &cachefs.Config{SizeInBytes: *fCacheSize, Duration: *fCacheDuration})
	})
	if err != nil {
		log.Printf("Base path is not a usable directory: %s", err)
		os.Exit(1)
	}
	log.Printf("Serving HTML from %q", res.Base())
	if *fCacheDuration > 0 {
		log.Printf("Caching reads for %s", *fCacheDuration)
	}

	// Read site configuration
	cfg, err := site.Load(os.DirFS(res.Base()))
	if err != nil {
		log.Printf("Cannot load %s: %s", site.ConfigFile, err)
		os.Exit(2)
	}
	if *fTemplates != "" {
		cfg.Templates = *fTemplates
	}

	// Setup handlers
	s, err := web.New(res, cfg)
	if err != nil {
		log.Printf("Cannot parse templates: %s", err)
		os.Exit(3)
	}
	log.Printf("Loaded templates: %s", s.DefinedTemplates())
	var handler http.Handler = web.NewRouter(s)
	if *fGzip {
		handler = gziphandler.GzipHandler(handler)
	}
	handler = web.HeaderHandler(handler, cfg.Headers)

	// Create HTTP server
	addr := net.JoinHostPort(*fHost, strconv.Itoa(*fPort))
	var srv = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       *fReadTimeout,
		WriteTimeout:      *fWriteTimeout,
		ReadHeaderTimeout: *fReadHeaderTimeout,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Cannot listen on %s: %s", addr, err)
		os.Exit(4)
	}

	// Create signal handler for graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)

		// interrupt signal sent from terminal
		signal.Notify(sigint, os.Interrupt)
		// sigterm signal sent from kubernetes
		signal.Notify(sigint, syscall.SIGTERM)

		<-sigint

		// We received an interrupt signal, shut down.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Printf("HTTP server Shutdown: %v", err)
		}
	}()

	// Listen for requests
	printBanner(os.Stdout, res.Base(), ln.Addr().String())
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server: %v", err)
		os.Exit(5)
	}
	log.Print("Goodbye.")
}
