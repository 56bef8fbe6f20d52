package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/morroware/retrosv2-sub000/internal/domain/snapshot"
	"github.com/morroware/retrosv2-sub000/internal/shared/utils"
)

// ExportSnapshot returns a complete snapshot
func (h *Handlers) ExportSnapshot(c *gin.Context) {
	snap, err := h.snapshots.ExportComplete()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ImportSnapshot restores a snapshot. The body is the snapshot document;
// the response is the import result, with 400 when it failed.
func (h *Handlers) ImportSnapshot(c *gin.Context) {
	h.importWith(c, h.snapshots.ImportCompleteJSON)
}

// ExportLegacy returns the legacy export shape
func (h *Handlers) ExportLegacy(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshots.ExportState())
}

// ImportLegacy restores the legacy export shape
func (h *Handlers) ImportLegacy(c *gin.Context) {
	h.importWith(c, h.snapshots.ImportStateJSON)
}

func (h *Handlers) importWith(c *gin.Context, importFn func(raw []byte) snapshot.ImportResult) {
	// One byte over the limit lets the validator see the document is too large.
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, utils.MaxDocumentSize+1))
	if err != nil {
		badRequest(c, "could not read body")
		return
	}

	var result snapshot.ImportResult
	h.write(func() {
		result = importFn(raw)
	})

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}
