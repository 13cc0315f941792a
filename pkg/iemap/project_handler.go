package iemap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

// AllowedFileExtensions lists the file extensions the platform accepts for
// project attachments.
var AllowedFileExtensions = []string{
	"pdf", "doc", "docs", "xls", "xlsx", "rt", "cif", "dat", "csv", "png", "jpg", "tif",
}

// IsAllowedFile reports whether path has an accepted extension. The check is
// case-insensitive.
func IsAllowedFile(path string) bool {
	ext := fileExtension(path)
	for _, allowed := range AllowedFileExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func fileExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ProjectHandler lists, creates and attaches files to projects.
type ProjectHandler struct {
	api    *apiClient
	fs     afero.Fs
	logger hclog.Logger
}

var positiveInt = []validation.Rule{
	validation.NilOrNotEmpty.Error("must be a positive integer"),
	validation.Min(1).Error("must be a positive integer"),
}

// List returns one page of the projects visible to the session. Both
// arguments start at 1; totals and page arithmetic come from the platform.
func (h *ProjectHandler) List(ctx context.Context, pageSize, pageNumber int) (*models.ProjectResponse, error) {
	if err := models.ValidationErrorFrom(validation.Errors{
		"page_size":   validation.Validate(pageSize, positiveInt...),
		"page_number": validation.Validate(pageNumber, positiveInt...),
	}.Filter()); err != nil {
		return nil, err
	}

	var page models.ProjectResponse
	err := h.api.do(ctx, request{
		method: http.MethodGet,
		path:   projectListPath,
		query: url.Values{
			"page_size":   {strconv.Itoa(pageSize)},
			"page_number": {strconv.Itoa(pageNumber)},
		},
	}, &page)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("listed projects",
		"page_number", page.PageNumber,
		"page_tot", page.PageTotal,
		"returned", len(page.Data),
	)
	return &page, nil
}

// Create submits a project. The request is checked locally first; the
// platform validates it again and may still reject it.
func (h *ProjectHandler) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.CreateProjectResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("create project request is required")
	}
	if err := models.ValidationErrorFrom(req.Validate()); err != nil {
		return nil, err
	}

	var resp models.CreateProjectResponse
	err := h.api.do(ctx, request{
		method: http.MethodPost,
		path:   projectAddPath,
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}

	h.logger.Info("created project", "inserted_id", resp.InsertedID, "name", req.Project.Name)
	return &resp, nil
}

// AddFile uploads filePath as an attachment of projectID. fileName is the
// name stored on the platform and defaults to the base name of filePath.
//
// A file whose extension is not in AllowedFileExtensions is rejected with an
// *UnsupportedFileTypeError before any request is made. The file is streamed,
// not buffered.
func (h *ProjectHandler) AddFile(ctx context.Context, projectID, filePath, fileName string) (models.FileUploadResponse, error) {
	if !IsAllowedFile(filePath) {
		return nil, &UnsupportedFileTypeError{Path: filePath, Extension: fileExtension(filePath)}
	}
	if err := models.ValidationErrorFrom(validation.Errors{
		"project_id": validation.Validate(projectID, validation.Required),
	}.Filter()); err != nil {
		return nil, err
	}
	if fileName == "" {
		fileName = filepath.Base(filePath)
	}

	f, err := h.fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	// Sniff the content type from the head of the file, then stream the
	// whole file through a pipe into the multipart body.
	br := bufio.NewReaderSize(f, 3072)
	head, err := br.Peek(3072)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	contentType := mimetype.Detect(head).String()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeFilePart(mw, fileName, contentType, br))
	}()
	// Closing the reader unblocks the writer if the request fails before the
	// body is drained; the file is closed only after the writer is done.
	defer func() {
		pr.Close()
		<-done
	}()

	h.logger.Debug("uploading file",
		"project_id", projectID,
		"file_name", fileName,
		"content_type", contentType,
	)

	var resp models.FileUploadResponse
	err = h.api.do(ctx, request{
		method: http.MethodPost,
		path:   projectFilePath,
		query: url.Values{
			"project_id": {projectID},
			"file_name":  {fileName},
		},
		body:        pr,
		contentType: mw.FormDataContentType(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	h.logger.Info("uploaded file", "project_id", projectID, "file_name", fileName)
	return resp, nil
}

func writeFilePart(mw *multipart.Writer, fileName, contentType string, r io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}
