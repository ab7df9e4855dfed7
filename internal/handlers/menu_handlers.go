package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/models"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// MenuHandler exposes catalog management and the public menu read.
type MenuHandler struct {
	menuService    services.MenuService
	specialService services.SpecialService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(menuService services.MenuService, specialService services.SpecialService) *MenuHandler {
	return &MenuHandler{menuService: menuService, specialService: specialService}
}

// --- Categories ---

// CreateCategory handles POST /restaurants/:id/menu/categories.
func (h *MenuHandler) CreateCategory(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	category, err := h.menuService.CreateCategory(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "CreateCategory")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, category, "Category created")
}

// ListCategories handles GET /restaurants/:id/menu/categories.
func (h *MenuHandler) ListCategories(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	activeOnly := c.DefaultQuery("active_only", "false") == "true"
	categories, err := h.menuService.ListCategories(restaurantID, activeOnly)
	if err != nil {
		respondServiceError(c, err, "ListCategories")
		return
	}
	utils.RespondWithData(c, http.StatusOK, categories, "")
}

// UpdateCategory handles PATCH /menu/categories/:id.
func (h *MenuHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	category, err := h.menuService.UpdateCategory(middleware.GetActor(c), categoryID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateCategory")
		return
	}
	utils.RespondWithData(c, http.StatusOK, category, "Category updated")
}

// DeleteCategory handles DELETE /menu/categories/:id.
func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.menuService.DeleteCategory(middleware.GetActor(c), categoryID); err != nil {
		respondServiceError(c, err, "DeleteCategory")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Category deleted")
}

// --- Items ---

// CreateItem handles POST /restaurants/:id/menu/items.
func (h *MenuHandler) CreateItem(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.menuService.CreateItem(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "CreateItem")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, item, "Menu item created")
}

// GetItem handles GET /menu/items/:id.
func (h *MenuHandler) GetItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.menuService.GetItem(itemID)
	if err != nil {
		respondServiceError(c, err, "GetItem")
		return
	}
	utils.RespondWithData(c, http.StatusOK, item, "")
}

// ListItems handles GET /restaurants/:id/menu/items with filters.
func (h *MenuHandler) ListItems(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filters := models.MenuItemFilters{RestaurantID: restaurantID}
	filters.Page, filters.PageSize = parsePagination(c)
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil {
			utils.RespondValidationFailed(c, "category_id must be an integer")
			return
		}
		filters.CategoryID = &categoryID
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	filters.AvailableOnly = c.DefaultQuery("available_only", "false") == "true"

	items, total, err := h.menuService.ListItems(filters)
	if err != nil {
		respondServiceError(c, err, "ListItems")
		return
	}
	utils.RespondWithData(c, http.StatusOK, paginated(items, total, filters.Page, filters.PageSize), "")
}

// UpdateItem handles PATCH /menu/items/:id.
func (h *MenuHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.menuService.UpdateItem(middleware.GetActor(c), itemID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateItem")
		return
	}
	utils.RespondWithData(c, http.StatusOK, item, "Menu item updated")
}

// DeleteItem handles DELETE /menu/items/:id.
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.menuService.DeleteItem(middleware.GetActor(c), itemID); err != nil {
		respondServiceError(c, err, "DeleteItem")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Menu item deleted")
}

// --- Options ---

// CreateOption handles POST /menu/items/:id/options.
func (h *MenuHandler) CreateOption(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	option, err := h.menuService.CreateOption(middleware.GetActor(c), itemID, req)
	if err != nil {
		respondServiceError(c, err, "CreateOption")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, option, "Option created")
}

// UpdateOption handles PATCH /menu/items/:id/options/:optionId.
func (h *MenuHandler) UpdateOption(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	optionID, ok := parseIDParam(c, "optionId")
	if !ok {
		return
	}

	var req services.UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	option, err := h.menuService.UpdateOption(middleware.GetActor(c), itemID, optionID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateOption")
		return
	}
	utils.RespondWithData(c, http.StatusOK, option, "Option updated")
}

// DeleteOption handles DELETE /menu/items/:id/options/:optionId.
func (h *MenuHandler) DeleteOption(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	optionID, ok := parseIDParam(c, "optionId")
	if !ok {
		return
	}

	if err := h.menuService.DeleteOption(middleware.GetActor(c), itemID, optionID); err != nil {
		respondServiceError(c, err, "DeleteOption")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Option deleted")
}

// --- Public menu ---

// PublicMenu handles GET /public/restaurants/:id/menu. Unauthenticated:
// serves only active categories, available items and current specials.
func (h *MenuHandler) PublicMenu(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	categories, err := h.menuService.ListCategories(restaurantID, true)
	if err != nil {
		respondServiceError(c, err, "PublicMenu categories")
		return
	}

	items, _, err := h.menuService.ListItems(models.MenuItemFilters{
		RestaurantID:  restaurantID,
		AvailableOnly: true,
	})
	if err != nil {
		respondServiceError(c, err, "PublicMenu items")
		return
	}

	specials, err := h.specialService.ListApplicable(restaurantID, timeNow())
	if err != nil {
		respondServiceError(c, err, "PublicMenu specials")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"categories": categories,
		"items":      items,
		"specials":   specials,
	}, "")
}
