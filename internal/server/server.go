package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/speech-corpus/internal/storage"
	"github.com/codebuildervaibhav/speech-corpus/internal/validate"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Server exposes a read-only status API over the running pipeline: corpus
// stats, recent videos, per-video similarity reports and a live log tail.
// It never mutates pipeline state.
type Server struct {
	app     *fiber.App
	db      *storage.CorpusDB
	logs    *LogBuffer
	dataDir string
}

// New creates the status server.
func New(db *storage.CorpusDB, logs *LogBuffer, dataDir string) *Server {
	s := &Server{
		db:      db,
		logs:    logs,
		dataDir: dataDir,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	app.Get("/stats", s.handleStats)
	app.Get("/videos", s.handleVideos)
	app.Get("/videos/:id/report", s.handleReport)

	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"logs": s.logs.Lines()})
	})
	app.Get("/ws/logs", websocket.New(s.handleLogTail))

	s.app = app
	return s
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	urls, videos, err := s.db.Stats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"urls_seen":        urls,
		"videos_validated": videos,
	})
}

func (s *Server) handleVideos(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	videos, err := s.db.ListVideos(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(videos)
}

// handleReport serves a persisted text_similarity.json. Reports live per
// variant; ?variant=auto selects the auto-generated track, default manual.
func (s *Server) handleReport(c *fiber.Ctx) error {
	videoID := c.Params("id")
	if !videoIDPattern.MatchString(videoID) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid video id"})
	}
	variant := c.Query("variant", "manual")
	if variant != "manual" && variant != "auto" {
		return c.Status(400).JSON(fiber.Map{"error": "invalid variant"})
	}

	path := filepath.Join(s.dataDir, videoID, variant, validate.ReportFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c.Status(404).JSON(fiber.Map{"error": "no report for this video"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Send(data)
}

func (s *Server) handleLogTail(c *websocket.Conn) {
	defer c.Close()

	lines, cancel := s.logs.Subscribe()
	defer cancel()

	for line := range lines {
		if err := c.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
}

// Listen blocks serving the API.
func (s *Server) Listen(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Status server listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
