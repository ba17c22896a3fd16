// Package httpapi exposes upload, job status, clip listing and download over HTTP.
package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/internal/usecase"
)

type Jobs interface {
	Submit(ctx context.Context, in usecase.Input) (types.Job, error)
}

type Store interface {
	LoadStatus(ctx context.Context, jobID string) (types.JobStatus, error)
	LoadBundle(ctx context.Context, jobID string) (types.Bundle, error)
	ListClips(ctx context.Context, jobID string) ([]string, error)
	FilePath(jobID, name string) (string, error)
}

type Deps struct {
	Jobs    Jobs
	Store   Store
	Content ports.ContentGenerator
	Log     logrus.FieldLogger

	UploadDir      string
	MaxUploadBytes int64
	// NewJobID derives a job ID from the uploaded file name.
	NewJobID func(fileName string) string
}

type Server struct {
	d        Deps
	app      *fiber.App
	validate *validator.Validate
}

// bodySlack covers multipart framing and text fields around the video part.
const bodySlack = 1 << 20

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	s := &Server{d: d, validate: validator.New()}

	app := fiber.New(fiber.Config{
		AppName:               "reelcut",
		BodyLimit:             int(d.MaxUploadBytes) + bodySlack,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(RequestLogger(d.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/upload", s.upload)
	api.Get("/status/:videoId", s.status)
	api.Get("/clips/:videoId", s.clips)
	api.Get("/download/:videoId/:filename", s.download)
	api.Post("/ai/preview", s.preview)

	s.app = app
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func respondError(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
