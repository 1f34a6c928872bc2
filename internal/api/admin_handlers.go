package api

import (
	"net/http"

	"storefront-backend/internal/models"
	"storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandlers serves the generic table editors and the dashboard
type AdminHandlers struct {
	editor    *services.EditorService
	dashboard *services.DashboardService
}

// NewAdminHandlers creates a new admin handlers instance
func NewAdminHandlers(editor *services.EditorService, dashboard *services.DashboardService) *AdminHandlers {
	return &AdminHandlers{editor: editor, dashboard: dashboard}
}

// ListTables names the editable tables
func (h *AdminHandlers) ListTables(c *gin.Context) {
	names := services.TableNames()
	c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Data:    names,
		Count:   len(names),
	})
}

// GetTable returns the header line and rows of a table
func (h *AdminHandlers) GetTable(c *gin.Context) {
	table, spec, err := h.editor.Table(c.Param("table"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"table":    spec.Name,
			"fileName": spec.FileName,
			"idColumn": spec.IDColumn,
			"headers":  table.Headers,
			"rows":     table.Rows,
		},
		"count": len(table.Rows),
	})
}

// NewRow seeds a row with the next id and the table defaults
func (h *AdminHandlers) NewRow(c *gin.Context) {
	row, err := h.editor.NewRow(c.Param("table"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    row,
	})
}

// SaveRow appends or replaces a row and rewrites the table
func (h *AdminHandlers) SaveRow(c *gin.Context) {
	var req models.SaveRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	row, result, err := h.editor.Save(c.Param("table"), req.Row, req.IsNew)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if req.IsNew {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": result.FileName + " saved successfully",
		"backup":  result.Backup,
		"data":    row,
	})
}

// DeleteRow removes a row by id and rewrites the table
func (h *AdminHandlers) DeleteRow(c *gin.Context) {
	result, err := h.editor.Delete(c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Row deleted successfully",
		"backup":  result.Backup,
	})
}

// Dashboard returns the catalog and order counts
func (h *AdminHandlers) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
