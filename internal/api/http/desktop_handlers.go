package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/morroware/retrosv2-sub000/internal/shared/types"
)

// ListWindows lists open windows in list order
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"windows": h.desktop.Windows()})
}

// AddWindow opens a window and returns the stamped record
func (h *Handlers) AddWindow(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, "Invalid window format")
		return
	}

	var (
		w   types.Window
		err error
	)
	h.write(func() {
		w, err = h.desktop.AddWindow(data)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// UpdateWindow merges app-supplied fields into a window
func (h *Handlers) UpdateWindow(c *gin.Context) {
	windowID := c.Param("id")
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid window patch")
		return
	}

	var (
		w   types.Window
		ok  bool
		err error
	)
	h.write(func() {
		w, ok, err = h.desktop.UpdateWindow(windowID, patch)
	})
	switch {
	case err != nil:
		h.fail(c, err)
	case !ok:
		notFound(c, "window", windowID)
	default:
		c.JSON(http.StatusOK, w)
	}
}

// RemoveWindow closes a window
func (h *Handlers) RemoveWindow(c *gin.Context) {
	h.windowAction(c, h.desktop.RemoveWindow)
}

// FocusWindow raises a window
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowAction(c, h.desktop.FocusWindow)
}

// MinimizeWindow minimizes a window
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowAction(c, h.desktop.MinimizeWindow)
}

// ToggleMaximize flips a window's maximized flag
func (h *Handlers) ToggleMaximize(c *gin.Context) {
	h.windowAction(c, h.desktop.ToggleMaximize)
}

func (h *Handlers) windowAction(c *gin.Context, action func(id string) (bool, error)) {
	windowID := c.Param("id")

	var (
		ok  bool
		err error
	)
	h.write(func() {
		ok, err = action(windowID)
	})
	switch {
	case err != nil:
		h.fail(c, err)
	case !ok:
		notFound(c, "window", windowID)
	default:
		w, _ := h.desktop.Window(windowID)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": windowID, "window": w})
	}
}

// ListIcons lists desktop icons
func (h *Handlers) ListIcons(c *gin.Context) {
	v, _ := h.store.GetCopy("icons")
	c.JSON(http.StatusOK, gin.H{"icons": v})
}

// AddIcon places a new icon on the desktop
func (h *Handlers) AddIcon(c *gin.Context) {
	var icon types.Icon
	if err := c.ShouldBindJSON(&icon); err != nil {
		badRequest(c, "Invalid icon format")
		return
	}

	var err error
	h.write(func() {
		err = h.desktop.AddIcon(icon)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, icon)
}

// RemoveIcon deletes an icon without recycling it
func (h *Handlers) RemoveIcon(c *gin.Context) {
	h.iconAction(c, h.desktop.RemoveIcon)
}

// RecycleIcon moves an icon to the recycle bin
func (h *Handlers) RecycleIcon(c *gin.Context) {
	h.iconAction(c, h.desktop.RecycleIcon)
}

// MoveIcon places an icon at new coordinates
func (h *Handlers) MoveIcon(c *gin.Context) {
	var req types.MoveIconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid position")
		return
	}
	h.iconAction(c, func(iconID string) (bool, error) {
		return h.desktop.MoveIcon(iconID, req.X, req.Y)
	})
}

func (h *Handlers) iconAction(c *gin.Context, action func(id string) (bool, error)) {
	iconID := c.Param("id")

	var (
		ok  bool
		err error
	)
	h.write(func() {
		ok, err = action(iconID)
	})
	switch {
	case err != nil:
		h.fail(c, err)
	case !ok:
		notFound(c, "icon", iconID)
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "id": iconID})
	}
}

// SetFilePosition records a file icon layout override
func (h *Handlers) SetFilePosition(c *gin.Context) {
	var req types.FilePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid file position")
		return
	}

	var err error
	h.write(func() {
		err = h.desktop.SetFilePosition(req.Path, req.X, req.Y)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}

// ListRecycled lists the recycle bin
func (h *Handlers) ListRecycled(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.desktop.RecycledItems()})
}

// RestoreIcon restores the recycle bin entry at :index
func (h *Handlers) RestoreIcon(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "index must be an integer")
		return
	}

	var ok bool
	h.write(func() {
		ok, err = h.desktop.RestoreIcon(index)
	})
	switch {
	case err != nil:
		h.fail(c, err)
	case !ok:
		notFound(c, "recycled item", c.Param("index"))
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "index": index})
	}
}

// EmptyRecycleBin drops every recycled entry
func (h *Handlers) EmptyRecycleBin(c *gin.Context) {
	var (
		n   int
		err error
	)
	h.write(func() {
		n, err = h.desktop.EmptyRecycleBin()
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": n})
}

// ListAchievements lists unlocked achievement ids
func (h *Handlers) ListAchievements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": h.desktop.Achievements()})
}

// UnlockAchievement unlocks :id once
func (h *Handlers) UnlockAchievement(c *gin.Context) {
	achievementID := c.Param("id")

	var (
		unlocked bool
		err      error
	)
	h.write(func() {
		unlocked, err = h.desktop.UnlockAchievement(achievementID)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": achievementID, "unlocked": unlocked})
}
