// Package docs provides a development server with watch mode for the
// documentation site.
package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/fieldlens-labs/fieldlens/internal/engine"
)

// DevServer serves the documentation site with watch mode and live reload.
// Workbook changes trigger re-discovery and a rebuild of the in-memory
// catalog; connected browsers reload over SSE.
type DevServer struct {
	eng          *engine.Engine
	generator    *Generator
	workbooksDir string
	port         int
	logger       *slog.Logger

	mu           sync.RWMutex
	catalogJSON  []byte
	manifestJSON []byte

	clients   map[chan struct{}]struct{}
	clientsMu sync.Mutex
}

// DevConfig holds configuration for the development server.
type DevConfig struct {
	Engine       *engine.Engine
	ProjectName  string
	WorkbooksDir string
	Port         int
	Logger       *slog.Logger
}

// NewDevServer creates a new development server.
func NewDevServer(cfg DevConfig) *DevServer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &DevServer{
		eng:          cfg.Engine,
		generator:    NewGenerator(cfg.Engine.Store(), cfg.ProjectName),
		workbooksDir: cfg.WorkbooksDir,
		port:         cfg.Port,
		logger:       logger,
		clients:      make(map[chan struct{}]struct{}),
	}
}

// Serve starts the development server and blocks until the context is
// cancelled.
func (s *DevServer) Serve(ctx context.Context) error {
	// Initial discovery and build
	if _, err := s.eng.Discover(engine.DiscoveryOptions{WorkbooksDir: s.workbooksDir}); err != nil {
		return fmt.Errorf("initial discovery failed: %w", err)
	}
	if err := s.rebuild(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting docs dev server",
		"addr", fmt.Sprintf("http://localhost:%d", s.port),
		"workbooks_dir", s.workbooksDir)

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	r.Get("/", s.handleIndex)
	r.Get("/data/catalog.json", s.handleCatalog)
	r.Get("/data/manifest.json", s.handleManifest)
	r.Get("/__reload", s.handleSSE)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher
	eg.Go(func() error {
		return s.watchFiles(egctx)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down docs dev server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchFiles watches for workbook changes and triggers rebuilds.
func (s *DevServer) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.workbooksDir); err != nil {
		s.logger.Error("failed to watch workbooks directory", "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			ext := filepath.Ext(event.Name)
			if ext != ".twb" && ext != ".twbx" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("workbook changed, re-discovering", "file", event.Name)

				if _, err := s.eng.Discover(engine.DiscoveryOptions{WorkbooksDir: s.workbooksDir}); err != nil {
					s.logger.Error("discover failed", "error", err)
					return
				}
				if err := s.rebuild(); err != nil {
					s.logger.Error("rebuild failed", "error", err)
					return
				}
				s.notifyClients()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// rebuild regenerates the in-memory catalog and manifest payloads.
func (s *DevServer) rebuild() error {
	cat, err := s.generator.GenerateCatalog()
	if err != nil {
		return fmt.Errorf("failed to generate catalog: %w", err)
	}

	catalogJSON, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	manifestJSON, err := json.Marshal(GenerateManifest(cat))
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	s.mu.Lock()
	s.catalogJSON = catalogJSON
	s.manifestJSON = manifestJSON
	s.mu.Unlock()

	s.logger.Debug("docs rebuilt", "workbooks", len(cat.Workbooks))
	return nil
}

// handleIndex serves the embedded shell page with the reload script injected.
func (s *DevServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index not available", http.StatusInternalServerError)
		return
	}

	script := []byte("<script>" + liveReloadScript + "</script></body>")
	page = bytes.Replace(page, []byte("</body>"), script, 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(page)
}

// handleCatalog serves the current catalog JSON.
func (s *DevServer) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	payload := s.catalogJSON
	s.mu.RUnlock()

	writeDevJSON(w, payload)
}

// handleManifest serves the current manifest JSON.
func (s *DevServer) handleManifest(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	payload := s.manifestJSON
	s.mu.RUnlock()

	writeDevJSON(w, payload)
}

func writeDevJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(payload)
}

// handleSSE streams reload events to a browser over Server-Sent Events.
func (s *DevServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// subscribe registers a reload channel for one connected browser. The
// channel has capacity 1 so a pending reload never blocks the notifier.
func (s *DevServer) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	s.clientsMu.Lock()
	s.clients[ch] = struct{}{}
	s.clientsMu.Unlock()
	return ch
}

func (s *DevServer) unsubscribe(ch chan struct{}) {
	s.clientsMu.Lock()
	delete(s.clients, ch)
	s.clientsMu.Unlock()
	close(ch)
}

// notifyClients signals every connected client to reload. A client whose
// channel already holds a pending signal is skipped.
func (s *DevServer) notifyClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories
			if len(info.Name()) > 1 && info.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// liveReloadScript is injected into the page for dev mode.
const liveReloadScript = `
;(function() {
  var es = new EventSource('/__reload');
  es.onmessage = function(e) {
    if (e.data === 'reload') {
      console.log('[dev] Reloading...');
      window.location.reload();
    }
  };
  es.onerror = function() {
    console.log('[dev] Connection lost, reconnecting...');
    setTimeout(function() { window.location.reload(); }, 1000);
  };
})();
`

// ServeDev is a convenience function to start the dev server with signal
// handling.
func ServeDev(cfg DevConfig) error {
	server := NewDevServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return server.Serve(ctx)
}
