package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"clauselens-backend/models"
	"clauselens-backend/service"
	"clauselens-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultMaxFileSize = 10 * 1024 * 1024 // 10MB

var errFileTooLarge = errors.New("stored file exceeds the upload size limit")

// TextExtractor turns stored bytes into plain text
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// Analyzer scores extracted document text
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// AnalysisHandler handles document upload and analysis
type AnalysisHandler struct {
	storage     storage.Storage
	extractor   TextExtractor
	analyzer    Analyzer
	maxFileSize int64
	keepUploads bool
}

// AnalysisHandlerOption is a functional option for AnalysisHandler
type AnalysisHandlerOption func(*AnalysisHandler)

// WithMaxFileSize sets the upload size cap in bytes
func WithMaxFileSize(n int64) AnalysisHandlerOption {
	return func(h *AnalysisHandler) {
		if n > 0 {
			h.maxFileSize = n
		}
	}
}

// WithKeepUploads controls whether stored copies survive the request
func WithKeepUploads(keep bool) AnalysisHandlerOption {
	return func(h *AnalysisHandler) {
		h.keepUploads = keep
	}
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(store storage.Storage, x TextExtractor, analyzer Analyzer, opts ...AnalysisHandlerOption) *AnalysisHandler {
	h := &AnalysisHandler{
		storage:     store,
		extractor:   x,
		analyzer:    analyzer,
		maxFileSize: defaultMaxFileSize,
		keepUploads: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the handler on r
func (h *AnalysisHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/status", h.Status)
	r.POST("/upload", h.Upload)
}

// Status handles GET /status
func (h *AnalysisHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is running"})
}

// Upload handles POST /upload
func (h *AnalysisHandler) Upload(c *gin.Context) {
	requestID := uuid.New()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		// a part with an empty filename is parsed as a plain value: no file selected
		if form := c.Request.MultipartForm; form != nil && len(form.Value["file"]) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	if !storage.AllowedFile(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[%s] Failed to open upload %q: %v", requestID, fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()

	storagePath, err := h.storage.Save(ctx, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
			return
		}
		log.Printf("[%s] Failed to save %q: %v", requestID, fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	if !h.keepUploads {
		defer h.discard(context.WithoutCancel(ctx), requestID, storagePath)
	}

	upload := models.UploadedFile{
		Filename:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		StoragePath: storagePath,
	}
	log.Printf("[%s] Stored %s (%s, %d bytes) as %s", requestID, upload.Filename, storage.Extension(upload.Filename), upload.Size, upload.StoragePath)

	data, err := h.readStored(ctx, storagePath)
	if errors.Is(err, errFileTooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}
	if err != nil {
		log.Printf("[%s] Failed to read back %s: %v", requestID, storagePath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	// dispatch on the validated client name; sanitizing may drop the extension
	text, err := h.extractor.Extract(upload.Filename, data)
	if err != nil {
		log.Printf("[%s] Extraction failed for %s: %v", requestID, upload.Filename, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := h.analyzer.Analyze(ctx, text)
	if err != nil {
		h.writeAnalysisError(c, requestID, err)
		return
	}

	log.Printf("[%s] Analyzed %s: overall score %.1f, %d fine print clauses", requestID, upload.Filename, result.OverallScore, len(result.FinePrint))
	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

func (h *AnalysisHandler) writeAnalysisError(c *gin.Context, requestID uuid.UUID, err error) {
	log.Printf("[%s] Analysis failed: %v", requestID, err)

	var upstream *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrEmptyDocument):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No text could be extracted from the document"})
	case errors.Is(err, service.ErrMalformedAnalysis):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Model returned a malformed analysis"})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Analysis failed: " + upstream.Err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Analysis failed: " + err.Error()})
	}
}

func (h *AnalysisHandler) readStored(ctx context.Context, storagePath string) ([]byte, error) {
	rc, err := h.storage.Open(ctx, storagePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, h.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, errFileTooLarge
	}
	return data, nil
}

func (h *AnalysisHandler) discard(ctx context.Context, requestID uuid.UUID, storagePath string) {
	if err := h.storage.Delete(ctx, storagePath); err != nil {
		log.Printf("[%s] Warning: failed to delete upload %s: %v", requestID, storagePath, err)
	}
}
