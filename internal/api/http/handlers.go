package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/filevault/backend/internal/api/middleware"
	"github.com/filevault/backend/internal/domain/session"
	"github.com/filevault/backend/internal/domain/user"
	"github.com/filevault/backend/internal/infrastructure/logging"
	"github.com/filevault/backend/internal/infrastructure/monitoring"
	"github.com/filevault/backend/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// cookieMaxAge matches the session TTL surfaced to browsers.
const cookieMaxAge = 24 * 60 * 60

// Handlers contains all HTTP handlers.
type Handlers struct {
	store    *store.Store
	users    *user.Manager
	sessions *session.Manager
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(
	st *store.Store,
	users *user.Manager,
	sessions *session.Manager,
	metrics *monitoring.Metrics,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		store:    st,
		users:    users,
		sessions: sessions,
		metrics:  metrics,
		log:      logger,
	}
}

// Root reports service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "File Server",
		"version": "1.0.0",
	})
}

// Health reports component liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"active_sessions": h.sessions.ActiveCount(),
	})
}

// ---------------------------------------------------------------------------
// Auth endpoints
// ---------------------------------------------------------------------------

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account.
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid registration request")
		return
	}

	if _, err := h.users.Register(req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, user.ErrExists) {
			fail(c, http.StatusConflict, "User already exists")
			return
		}
		h.log.Error("Registration failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User registered successfully",
	})
}

// Login verifies credentials and issues a session cookie.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid login request")
		return
	}

	u, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLogin("failure")
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	sess, err := h.sessions.Create(u.Email)
	if err != nil {
		h.log.Error("Session creation failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Login failed")
		return
	}

	h.metrics.RecordLogin("success")
	h.metrics.SetSessionsActive(h.sessions.ActiveCount())

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, sess.Token, cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"name":  u.Name,
			"email": u.Email,
		},
	})
}

// Logout revokes the current session and clears the cookie.
func (h *Handlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		h.sessions.Revoke(token)
		h.metrics.SetSessionsActive(h.sessions.ActiveCount())
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuthStatus reports whether the caller holds a valid session.
func (h *Handlers) AuthStatus(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "user": nil})
		return
	}

	email, ok := h.sessions.Resolve(token)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "user": nil})
		return
	}

	var name string
	if u, found := h.users.Lookup(email); found {
		name = u.Name
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          gin.H{"name": name, "email": email},
	})
}

// ---------------------------------------------------------------------------
// File endpoints (behind RequireSession)
// ---------------------------------------------------------------------------

type transferRequest struct {
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination"`
}

type deleteRequest struct {
	Path string `json:"path" binding:"required"`
}

// UploadFile stores one multipart file under the "path" form field.
func (h *Handlers) UploadFile(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "upload")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		timer.Stop("error")
		fail(c, http.StatusBadRequest, "Missing file")
		return
	}
	dir := c.DefaultPostForm("path", "/")

	f, err := fileHeader.Open()
	if err != nil {
		timer.Stop("error")
		fail(c, http.StatusBadRequest, "Unreadable file")
		return
	}
	content, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		timer.Stop("error")
		fail(c, http.StatusBadRequest, "Unreadable file")
		return
	}

	rel, err := h.store.Upload(c.Request.Context(), dir, fileHeader.Filename, content)
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "upload", err, "Upload target not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "File uploaded successfully",
		"filename": fileHeader.Filename,
		"path":     rel,
	})
}

// ListFiles lists the direct child files of the "path" query parameter.
func (h *Handlers) ListFiles(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "list")

	files, err := h.store.List(c.Request.Context(), c.DefaultQuery("path", "/"))
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "list", err, "Directory not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   files,
	})
}

// DownloadFile streams a stored file as an opaque binary attachment.
func (h *Handlers) DownloadFile(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "download")

	dl, err := h.store.Open(c.Request.Context(), c.Query("path"))
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "download", err, "File not found")
		return
	}
	defer dl.Close()

	timer.Stop("ok")
	c.DataFromReader(http.StatusOK, dl.Size, "application/octet-stream", dl, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", dl.Name),
	})
}

// MoveFile relocates source into the destination directory.
func (h *Handlers) MoveFile(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid move request")
		return
	}

	timer := monitoring.NewTimer(h.metrics, "move")
	rel, err := h.store.Move(c.Request.Context(), req.Source, req.Destination)
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "move", err, "Source file not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File moved successfully",
		"path":    rel,
	})
}

// CopyFile duplicates source into the destination directory.
func (h *Handlers) CopyFile(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid copy request")
		return
	}

	timer := monitoring.NewTimer(h.metrics, "copy")
	rel, err := h.store.Copy(c.Request.Context(), req.Source, req.Destination)
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "copy", err, "Source file not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File copied successfully",
		"path":    rel,
	})
}

// DeleteFile removes a single file.
func (h *Handlers) DeleteFile(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid delete request")
		return
	}

	timer := monitoring.NewTimer(h.metrics, "delete")
	if err := h.store.Delete(c.Request.Context(), req.Path); err != nil {
		timer.Stop("error")
		h.storeFail(c, "delete", err, "File not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File deleted successfully",
	})
}

// ---------------------------------------------------------------------------
// Folder endpoints (behind RequireSession)
// ---------------------------------------------------------------------------

type folderCreateRequest struct {
	Name string `json:"name" binding:"required"`
	Path string `json:"path"`
}

// CreateFolder creates a new folder under the given parent path.
func (h *Handlers) CreateFolder(c *gin.Context) {
	var req folderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid folder request")
		return
	}

	timer := monitoring.NewTimer(h.metrics, "create_folder")
	rel, err := h.store.CreateFolder(c.Request.Context(), req.Path, req.Name)
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "create_folder", err, "Parent folder not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Folder created successfully",
		"path":    rel,
	})
}

// ListFolders lists every folder in the store, including the synthetic Root.
func (h *Handlers) ListFolders(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "list_folders")

	folders, err := h.store.ListFolders(c.Request.Context())
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "list_folders", err, "Folders not found")
		return
	}

	timer.Stop("ok")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"folders": folders,
	})
}

// ---------------------------------------------------------------------------
// Server status
// ---------------------------------------------------------------------------

// ServerStatus reports storage usage, health signal and session counts.
func (h *Handlers) ServerStatus(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "stats")

	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		timer.Stop("error")
		h.storeFail(c, "stats", err, "Storage not found")
		return
	}

	timer.Stop("ok")
	h.metrics.SetStorageUsage(stats.TotalBytes, stats.FileCount)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"status":       stats.Status,
		"storageUsed":  fmt.Sprintf("%.1f%%", stats.UsedPercent),
		"activeUsers":  h.sessions.ActiveCount(),
		"totalFiles":   stats.FileCount,
		"uptime":       int64(time.Since(h.metrics.StartTime()).Seconds()),
		"totalStorage": formatSize(h.store.CapacityBytes()),
		"usedStorage":  formatSize(stats.TotalBytes),
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// storeFail translates typed store outcomes into transport responses. The
// unknown-error branch logs the wrapped cause but sends a fixed message, so
// raw filesystem errors and absolute paths never reach the client.
func (h *Handlers) storeFail(c *gin.Context, op string, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrPathEscape):
		fail(c, http.StatusBadRequest, "Invalid path")
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrAlreadyExists):
		fail(c, http.StatusConflict, "Folder already exists")
	case errors.Is(err, store.ErrUnsupportedType):
		fail(c, http.StatusBadRequest, "File type is not supported")
	default:
		h.log.Error("Store operation failed", zap.String("operation", op), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Storage operation failed")
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// formatSize renders a byte count as a human-readable string.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), []string{"KB", "MB", "GB", "TB"}[exp])
}
