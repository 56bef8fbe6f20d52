package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/desktop"
	"github.com/morroware/retrosv2-sub000/internal/domain/persistence"
	"github.com/morroware/retrosv2-sub000/internal/domain/snapshot"
	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

// Deps are the collaborators the handlers serve.
type Deps struct {
	Store     *state.Store
	Desktop   *desktop.Desktop
	Snapshots *snapshot.Service
	Bridge    *persistence.Bridge
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	writeMu   sync.Mutex // one logical writer
	store     *state.Store
	desktop   *desktop.Desktop
	snapshots *snapshot.Service
	bridge    *persistence.Bridge
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	started   time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:     deps.Store,
		desktop:   deps.Desktop,
		snapshots: deps.Snapshots,
		bridge:    deps.Bridge,
		metrics:   deps.Metrics,
		logger:    logger,
		started:   time.Now(),
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	r.GET("/state", h.GetState)
	r.PUT("/state", h.SetState)

	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.AddWindow)
	r.PATCH("/windows/:id", h.UpdateWindow)
	r.DELETE("/windows/:id", h.RemoveWindow)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.POST("/windows/:id/minimize", h.MinimizeWindow)
	r.POST("/windows/:id/maximize", h.ToggleMaximize)

	r.GET("/icons", h.ListIcons)
	r.POST("/icons", h.AddIcon)
	r.DELETE("/icons/:id", h.RemoveIcon)
	r.POST("/icons/:id/move", h.MoveIcon)
	r.POST("/icons/:id/recycle", h.RecycleIcon)
	r.PUT("/file-positions", h.SetFilePosition)

	r.GET("/recycle", h.ListRecycled)
	r.POST("/recycle/:index/restore", h.RestoreIcon)
	r.DELETE("/recycle", h.EmptyRecycleBin)

	r.GET("/achievements", h.ListAchievements)
	r.POST("/achievements/:id", h.UnlockAchievement)

	r.GET("/snapshot", h.ExportSnapshot)
	r.POST("/snapshot", h.ImportSnapshot)
	r.GET("/snapshot/legacy", h.ExportLegacy)
	r.POST("/snapshot/legacy", h.ImportLegacy)

	r.POST("/reset", h.Reset)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	durable := gin.H{}
	if h.bridge != nil {
		durable["breaker"] = h.bridge.KV().BreakerState().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"version":        h.store.Version(),
		"uptime_seconds": time.Since(h.started).Seconds(),
		"durable":        durable,
	})
}

// write runs fn as the only writer.
func (h *Handlers) write(fn func()) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	fn()
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, state.ErrEmptyPath),
		errors.Is(err, state.ErrNotContainer),
		errors.Is(err, state.ErrIndexOutOfRange),
		errors.Is(err, desktop.ErrInvalidIcon):
		status = http.StatusBadRequest
	case errors.Is(err, state.ErrCascadeTooDeep),
		errors.Is(err, desktop.ErrDuplicateIcon),
		errors.Is(err, desktop.ErrNotList):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, what, id string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found", "id": id})
}

// GetState returns the value at ?path=, or the whole tree without one.
func (h *Handlers) GetState(c *gin.Context) {
	path := c.Query("path")
	value, found := h.store.GetCopy(path)
	c.JSON(http.StatusOK, types.StateResponse{Path: path, Value: value, Found: found})
}

// SetState writes one path.
func (h *Handlers) SetState(c *gin.Context) {
	var req types.SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	var err error
	h.write(func() {
		err = h.store.Set(req.Path, req.Value, req.Persist)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}

// Reset clears durable state and rebuilds the tree from defaults.
func (h *Handlers) Reset(c *gin.Context) {
	h.write(func() {
		h.bridge.Reset(h.store)
	})
	h.logger.Warn("state reset over HTTP", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, types.ResetResponse{Success: true})
}
