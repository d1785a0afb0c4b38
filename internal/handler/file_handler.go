package handler

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa/internal/pkg/errcode"
	"docqa/internal/pkg/response"
	"docqa/internal/service"
)

type FileHandler struct {
	files *service.FileService
}

func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload accepts a multipart batch under the "files" field scoped to
// one session.
func (h *FileHandler) Upload(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session_id is required")
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "invalid multipart form")
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		response.Error(c, errcode.ErrInvalidFile, "files are required")
		return
	}
	items := make([]*service.UploadItem, 0, len(uploads))
	for _, upload := range uploads {
		data, err := readMultipartFile(upload)
		if err != nil {
			response.Error(c, errcode.ErrInvalidFile, "failed to read "+upload.Filename)
			return
		}
		items = append(items, &service.UploadItem{
			Filename: upload.Filename,
			Data:     data,
		})
	}
	result, err := h.files.Upload(c.Request.Context(), sessionID, items)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id":  sessionID,
		"results":     result.Results,
		"suggestions": result.Suggestions,
	})
}

type fileDeleteRequest struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

func (h *FileHandler) Delete(c *gin.Context) {
	var req fileDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.SessionID == "" || req.Filename == "" {
		response.Error(c, errcode.ErrInvalid, "session_id and filename are required")
		return
	}
	if err := h.files.Delete(c.Request.Context(), req.SessionID, req.Filename); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id": req.SessionID,
		"filename":   req.Filename,
		"status":     "deleted",
	})
}

// Get streams a stored original back by key.
func (h *FileHandler) Get(c *gin.Context) {
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.files.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	_, _ = file.Seek(0, 0)
	_, _ = io.Copy(c.Writer, file)
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
