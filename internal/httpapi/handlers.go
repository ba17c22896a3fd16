package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/forPelevin/reelcut/internal/jobs"
	"github.com/forPelevin/reelcut/internal/ports/adapters/filestore"
	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/internal/usecase"
)

const defaultClipSeconds = 15

var allowedExts = map[string]struct{}{".mp4": {}, ".mov": {}}

type uploadForm struct {
	Duration    int    `json:"duration" validate:"gt=0,lte=600"`
	Hashtags    bool   `json:"hashtags"`
	Title       string `json:"title" validate:"required,max=300"`
	Description string `json:"description" validate:"required,max=5000"`
	ContentPlan bool   `json:"generateContentPlan"`
}

func (s *Server) upload(c *fiber.Ctx) error {
	log := requestLog(c, s.d.Log)

	file, err := c.FormFile("video")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "video file is required")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExts[ext]; !ok {
		return respondError(c, fiber.StatusBadRequest, "unsupported file type, only MP4 and MOV are allowed")
	}
	if s.d.MaxUploadBytes > 0 && file.Size > s.d.MaxUploadBytes {
		return respondError(c, fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.d.MaxUploadBytes))
	}

	form := uploadForm{
		Duration:    defaultClipSeconds,
		Hashtags:    formBool(c, "hashtags"),
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: strings.TrimSpace(c.FormValue("description")),
		ContentPlan: formBool(c, "generateContentPlan"),
	}
	if v := strings.TrimSpace(c.FormValue("duration")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "duration must be an integer number of seconds")
		}
		form.Duration = n
	}
	if err := s.validate.Struct(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid upload fields",
			"details": formatValidationErrors(err),
		})
	}

	in := usecase.Input{
		JobID:       s.d.NewJobID(file.Filename),
		DurationSec: form.Duration,
		Hashtags:    form.Hashtags,
		ContentPlan: form.ContentPlan,
		Title:       form.Title,
		Description: form.Description,
	}
	if raw := c.FormValue("aiGeneratedHashtags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.PresetHashtags); err != nil {
			log.WithError(err).Warn("ignoring malformed pre-generated hashtags")
			in.PresetHashtags = nil
		}
	}
	if raw := c.FormValue("aiGeneratedContentPlan"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.PresetPlan); err != nil {
			log.WithError(err).Warn("ignoring malformed pre-generated content plan")
			in.PresetPlan = nil
		}
	}

	if err := os.MkdirAll(s.d.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	in.InputMP4 = filepath.Join(s.d.UploadDir, in.JobID+ext)
	if err := c.SaveFile(file, in.InputMP4); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}

	job, err := s.d.Jobs.Submit(c.UserContext(), in)
	switch {
	case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, filestore.ErrInvalidJobID):
		_ = os.Remove(in.InputMP4)
		return respondError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, jobs.ErrQueueFull):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error(), "videoId": job.ID})
	case errors.Is(err, jobs.ErrStopped):
		_ = os.Remove(in.InputMP4)
		return respondError(c, fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		_ = os.Remove(in.InputMP4)
		return fmt.Errorf("submit job: %w", err)
	}

	log.WithField("job_id", job.ID).Info("upload accepted")
	return c.JSON(fiber.Map{
		"message":  "video uploaded",
		"videoId":  job.ID,
		"settings": form,
	})
}

func (s *Server) status(c *fiber.Ctx) error {
	st, err := s.d.Store.LoadStatus(c.UserContext(), c.Params("videoId"))
	if err != nil {
		return storeError(c, err, "job not found")
	}
	return c.JSON(st)
}

func (s *Server) clips(c *fiber.Ctx) error {
	id := c.Params("videoId")
	names, err := s.d.Store.ListClips(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, "clips not found")
	}
	urls := make([]string, 0, len(names))
	for _, n := range names {
		urls = append(urls, "/api/download/"+id+"/"+n)
	}

	bundle, err := s.d.Store.LoadBundle(c.UserContext(), id)
	if err != nil && !errors.Is(err, filestore.ErrNotFound) {
		return fmt.Errorf("load bundle: %w", err)
	}
	return c.JSON(fiber.Map{"clips": urls, "metadata": bundle})
}

func (s *Server) download(c *fiber.Ctx) error {
	name := c.Params("filename")
	p, err := s.d.Store.FilePath(c.Params("videoId"), name)
	if err != nil {
		return storeError(c, err, "file not found")
	}
	return c.Download(p, name)
}

type previewRequest struct {
	Title       string `json:"title" validate:"required,max=300"`
	Description string `json:"description" validate:"max=5000"`
	Hashtags    bool   `json:"hashtags"`
	ContentPlan bool   `json:"contentPlan"`
}

type previewResponse struct {
	Hashtags    []string          `json:"hashtags,omitempty"`
	ContentPlan []types.PlanEntry `json:"contentPlan,omitempty"`
}

// preview generates enrichment ahead of upload so clients can review it and
// send it back as pre-generated content.
func (s *Server) preview(c *fiber.Ctx) error {
	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid preview fields",
			"details": formatValidationErrors(err),
		})
	}
	var resp previewResponse
	if req.Hashtags {
		resp.Hashtags = s.d.Content.Hashtags(c.UserContext(), req.Title, req.Description)
	}
	if req.ContentPlan {
		resp.ContentPlan = s.d.Content.Plan(c.UserContext(), req.Title, req.Description)
	}
	return c.JSON(resp)
}

func storeError(c *fiber.Ctx, err error, notFound string) error {
	switch {
	case errors.Is(err, filestore.ErrInvalidJobID):
		return respondError(c, fiber.StatusBadRequest, "invalid video id")
	case errors.Is(err, filestore.ErrNotFound):
		return respondError(c, fiber.StatusNotFound, notFound)
	default:
		return err
	}
}

func formBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.FormValue(key)))
	return err == nil && v
}

func formatValidationErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		out = append(out, msg)
	}
	return out
}
