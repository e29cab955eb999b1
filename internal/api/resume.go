package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonathan/hiredoor/internal/types"
)

// MaxResumeSize is the largest resume file accepted for upload.
const MaxResumeSize = 5 * 1024 * 1024

// acceptedResumeTypes lists the detected content types accepted for upload.
var acceptedResumeTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
	"application/x-ole-storage",
	"text/plain",
}

// UnsupportedFileError is returned for resume files of an unaccepted type or size.
type UnsupportedFileError struct {
	Filename string
	Reason   string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("cannot upload %s: %s", e.Filename, e.Reason)
}

// GetResume sends GET /api/resume.
func (c *Client) GetResume(ctx context.Context) (*types.ResumeResponse, error) {
	var result types.ResumeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/resume", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadResume sends the file as multipart field "file" to POST /api/resume.
// The content type is detected from the file contents, not the extension.
func (c *Client) UploadResume(ctx context.Context, filename string, r io.Reader) (*types.ResumeUploadResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxResumeSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	if len(data) > MaxResumeSize {
		return nil, &UnsupportedFileError{Filename: filename, Reason: "file size must be under 5MB"}
	}
	if len(data) == 0 {
		return nil, &UnsupportedFileError{Filename: filename, Reason: "file is empty"}
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), acceptedResumeTypes...) {
		return nil, &UnsupportedFileError{
			Filename: filename,
			Reason:   fmt.Sprintf("unsupported file type %s (accepted: .pdf, .docx, .doc, .txt)", detected.String()),
		}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", detected.String())
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/resume", nil, writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var result types.ResumeUploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse resume upload response: %w", err)
	}
	return &result, nil
}

// UploadResumeText sends pasted resume text to POST /api/resume.
func (c *Client) UploadResumeText(ctx context.Context, req types.ResumeTextRequest) (*types.ResumeUploadResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resume text: %w", err)
	}
	var result types.ResumeUploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/resume", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteResume sends DELETE /api/resume.
func (c *Client) DeleteResume(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/resume", nil, nil, nil)
}
