package handlers

import (
	"errors"
	"net/http"
	"time"

	"customer_registry_backend/internal/flash"
	"customer_registry_backend/internal/services"
	"customer_registry_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ImportExportHandler holds the import/export service and the flash store
// that carries import summaries across a redirect.
type ImportExportHandler struct {
	importExportService services.ImportExportService
	flashStore          *flash.Store
}

// NewImportExportHandler creates a new ImportExportHandler.
func NewImportExportHandler(ies services.ImportExportService, fs *flash.Store) *ImportExportHandler {
	return &ImportExportHandler{importExportService: ies, flashStore: fs}
}

// ImportCustomers consumes a multipart CSV upload. The route is gated behind
// the Admin role before this handler runs, so a caller lacking the privilege
// never reaches the file.
func (h *ImportExportHandler) ImportCustomers(c *gin.Context) {
	fileHeader, err := c.FormFile("customers_file")
	if err != nil {
		h.respondImportFailure(c, services.ErrNoFileProvided)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "ImportCustomers: Failed to open uploaded file")
		h.respondImportFailure(c, services.ErrFileUnreadable)
		return
	}
	defer file.Close()

	report, err := h.importExportService.ImportCustomers(file)
	if err != nil {
		if errors.Is(err, services.ErrFileUnreadable) {
			h.respondImportFailure(c, err)
			return
		}
		utils.LogError(err, "ImportCustomers: Error from importExportService.ImportCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Import failed.", "Internal error"))
		return
	}

	key := h.flashStore.Put(report.Summary(), flash.ImportTTL)
	c.JSON(http.StatusOK, gin.H{
		"imported":  report.Imported,
		"skipped":   report.Skipped,
		"messages":  report.Summary(),
		"flash_key": key,
	})
}

func (h *ImportExportHandler) respondImportFailure(c *gin.Context, err error) {
	key := h.flashStore.Put([]string{err.Error()}, flash.DefaultTTL)
	c.JSON(http.StatusBadRequest, gin.H{
		"code":      utils.ErrCodeBadRequest,
		"errors":    []string{err.Error()},
		"flash_key": key,
	})
}

// ExportCustomers streams the full registry as a CSV attachment, ending the
// response cycle with the file itself instead of a redirect.
func (h *ImportExportHandler) ExportCustomers(c *gin.Context) {
	filename := "customers-" + time.Now().Format("20060102-150405") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.importExportService.ExportCustomers(c.Writer); err != nil {
		// Headers are already on the wire; all we can do is log.
		utils.LogError(err, "ExportCustomers: Error while streaming export")
	}
}
