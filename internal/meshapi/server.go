// Package meshapi exposes PLY header and statistics inspection over
// HTTP. The server publishes a directory of .ply files read-only; each
// request is tagged with a scan ID and throttled by a shared limiter.
package meshapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/plykit/internal/logger"
	"github.com/samcharles93/plykit/internal/meshinfo"
)

const scanIDHeader = "X-Scan-ID"

type Server struct {
	root    string
	log     logger.Logger
	limiter *rate.Limiter
}

// NewServer serves the .ply files under root. rps bounds the accepted
// request rate across all clients; rps <= 0 disables throttling.
func NewServer(root string, log logger.Logger, rps float64) *Server {
	if log == nil {
		log = logger.Default()
	}
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
	return &Server{root: root, log: log, limiter: lim}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(s.scanID)
	e.Use(s.throttle)
	e.GET("/v1/meshes", s.handleList)
	e.GET("/v1/meshes/:name", s.handleHeader)
	e.GET("/v1/meshes/:name/stats", s.handleStats)
}

func (s *Server) scanID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := "scan-" + uuid.NewString()
		c.Response().Header().Set(scanIDHeader, id)
		s.log.Debug("scan request", "id", id, "path", c.Request().URL.Path)
		return next(c)
	}
}

func (s *Server) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			return writeError(c, http.StatusTooManyRequests, "scan rate limit exceeded")
		}
		return next(c)
	}
}

type meshEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size_bytes"`
}

func (s *Server) handleList(c *echo.Context) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "list meshes: "+err.Error())
	}
	meshes := make([]meshEntry, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(strings.ToLower(ent.Name()), ".ply") {
			continue
		}
		fi, err := ent.Info()
		if err != nil {
			continue
		}
		meshes = append(meshes, meshEntry{Name: ent.Name(), Size: fi.Size()})
	}
	sort.Slice(meshes, func(i, j int) bool { return meshes[i].Name < meshes[j].Name })
	return writeJSON(c, http.StatusOK, map[string]any{"meshes": meshes})
}

func (s *Server) handleHeader(c *echo.Context) error {
	path, err := s.meshPath(c.Param("name"))
	if err != nil {
		return writeError(c, http.StatusNotFound, err.Error())
	}
	info, err := meshinfo.Load(path)
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, "parse header: "+err.Error())
	}
	return writeJSON(c, http.StatusOK, info)
}

func (s *Server) handleStats(c *echo.Context) error {
	path, err := s.meshPath(c.Param("name"))
	if err != nil {
		return writeError(c, http.StatusNotFound, err.Error())
	}
	stats, err := meshinfo.CollectStats(path)
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, "collect stats: "+err.Error())
	}
	return writeJSON(c, http.StatusOK, stats)
}

// meshPath resolves a request name against the served directory. Names
// containing path separators or dot segments are rejected.
func (s *Server) meshPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("no such mesh: %s", name)
	}
	path := filepath.Join(s.root, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no such mesh: %s", name)
	}
	return path, nil
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeError(c *echo.Context, status int, msg string) error {
	b, err := json.Marshal(map[string]any{"error": msg})
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}
