package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// TableHandler exposes table management and QR rendering endpoints.
type TableHandler struct {
	tableService services.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(tableService services.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

// Create handles POST /restaurants/:id/tables.
func (h *TableHandler) Create(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	table, err := h.tableService.Create(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "CreateTable")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, table, "Table created")
}

// List handles GET /restaurants/:id/tables.
func (h *TableHandler) List(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	activeOnly := c.DefaultQuery("active_only", "false") == "true"

	tables, total, err := h.tableService.List(middleware.GetActor(c), restaurantID, activeOnly, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListTables")
		return
	}
	utils.RespondWithData(c, http.StatusOK, paginated(tables, total, page, pageSize), "")
}

// Get handles GET /tables/:id.
func (h *TableHandler) Get(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	table, err := h.tableService.GetByID(middleware.GetActor(c), tableID)
	if err != nil {
		respondServiceError(c, err, "GetTable")
		return
	}
	utils.RespondWithData(c, http.StatusOK, table, "")
}

// Update handles PATCH /tables/:id.
func (h *TableHandler) Update(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	table, err := h.tableService.Update(middleware.GetActor(c), tableID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateTable")
		return
	}
	utils.RespondWithData(c, http.StatusOK, table, "Table updated")
}

// Delete handles DELETE /tables/:id. Refused while the table still has
// open orders.
func (h *TableHandler) Delete(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tableService.Delete(middleware.GetActor(c), tableID); err != nil {
		respondServiceError(c, err, "DeleteTable")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Table deleted")
}

// ResolveQR handles GET /public/tables/qr/:code: the first call a guest's
// browser makes after scanning a printed code.
func (h *TableHandler) ResolveQR(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		utils.RespondValidationFailed(c, "QR code is required")
		return
	}

	table, restaurant, err := h.tableService.ResolveQR(code)
	if err != nil {
		respondServiceError(c, err, "ResolveQR")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"table":      table,
		"restaurant": restaurant,
	}, "")
}

// QRCode handles GET /tables/:id/qrcode and streams a printable PNG.
func (h *TableHandler) QRCode(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	size := 256
	if sizeStr := c.Query("size"); sizeStr != "" {
		if v, err := strconv.Atoi(sizeStr); err == nil && v >= 64 && v <= 2048 {
			size = v
		}
	}

	png, err := h.tableService.RenderQRCode(middleware.GetActor(c), tableID, size)
	if err != nil {
		respondServiceError(c, err, "TableQRCode")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
