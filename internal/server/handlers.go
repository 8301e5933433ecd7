// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/mangabridge/internal/backup"
	"github.com/pdiddy/mangabridge/internal/suwatte"
	"github.com/pdiddy/mangabridge/pkg/types"
)

const uploadField = "backup"

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse is the body of a failed conversion.
type ErrorResponse struct {
	Error string             `json:"error"`
	Log   []types.Diagnostic `json:"log,omitempty"`
}

// ReportResponse is the body of POST /api/convert/report.
type ReportResponse struct {
	Success  bool               `json:"success"`
	FileName string             `json:"fileName,omitempty"`
	Shape    string             `json:"shape,omitempty"`
	Counts   types.Counts       `json:"counts"`
	Warnings int                `json:"warnings"`
	Log      []types.Diagnostic `json:"log"`
	Error    string             `json:"error,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Time:    s.now().UTC().Format(time.RFC3339),
		Version: s.version,
	})
}

// convert answers with the encoded backup as an attachment.
func (s *Server) convert(c *gin.Context) {
	raw, name, err := s.readUpload(c)
	if err != nil {
		c.JSON(uploadStatus(err), ErrorResponse{Error: err.Error()})
		return
	}

	res, err := s.run(c, raw, name)
	if err != nil {
		c.JSON(errorStatus(err), ErrorResponse{Error: err.Error(), Log: res.Log})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.FileName))
	c.Header("X-Conversion-Warnings", fmt.Sprint(res.Warnings()))
	c.Data(http.StatusOK, "application/octet-stream", res.Data)
}

// report converts the upload and answers with the log and counts only.
func (s *Server) report(c *gin.Context) {
	raw, name, err := s.readUpload(c)
	if err != nil {
		c.JSON(uploadStatus(err), ErrorResponse{Error: err.Error()})
		return
	}

	res, err := s.run(c, raw, name)
	resp := ReportResponse{
		Success:  err == nil,
		Warnings: res.Warnings(),
		Log:      res.Log,
	}
	if resp.Log == nil {
		resp.Log = []types.Diagnostic{}
	}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.FileName = res.FileName
		resp.Shape = res.Shape.String()
		resp.Counts = res.Backup.Counts()
	}
	c.IndentedJSON(http.StatusOK, resp)
}

// run converts raw with a fresh pipeline and records the outcome.
func (s *Server) run(c *gin.Context, raw []byte, name string) (*backup.Result, error) {
	ctx := c.Request.Context()
	started := time.Now()
	p := backup.New(backup.Options{Now: s.now, NativeDates: s.cfg.NativeDates})
	res, err := p.Run(raw)

	sum := sha256.Sum256(raw)
	run := types.Run{
		ID:          uuid.NewString(),
		Input:       name,
		InputSHA256: hex.EncodeToString(sum[:]),
		Origin:      OriginHTTP,
		Status:      types.ConversionDone,
		Warnings:    res.Warnings(),
		StartedAt:   started.UTC(),
		Duration:    time.Since(started),
	}
	if err != nil {
		run.Status = types.ConversionFailed
		run.Error = err.Error()
		slog.WarnContext(ctx, "conversion failed", "input", name, "error", err)
	} else {
		run.Output = res.FileName
		run.Counts = res.Backup.Counts()
		slog.InfoContext(ctx, "converted", "input", name, "output", res.FileName,
			"library", run.Counts.Library, "warnings", run.Warnings)
	}

	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, run); rerr != nil {
			slog.ErrorContext(ctx, "recording run failed", "run", run.ID, "error", rerr)
		}
	}
	return res, err
}

// readUpload returns the backup bytes from the multipart field "backup" or,
// for any other content type, the raw request body.
func (s *Server) readUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile(uploadField)
		if err != nil {
			return nil, "", fmt.Errorf("reading form field %q: %w", uploadField, err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", fmt.Errorf("opening upload: %w", err)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fmt.Errorf("reading upload: %w", err)
		}
		return raw, fh.Filename, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", errors.New("empty request body")
	}
	return raw, "upload", nil
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func errorStatus(err error) int {
	var (
		parseErr *suwatte.ParseError
		valErr   *backup.ValidationError
	)
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
