package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD and archiving.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type categoryReq struct {
	Name      string `json:"name" binding:"required,max=64"`
	Type      string `json:"type" binding:"required,oneof=income expense"`
	IsHolding bool   `json:"is_holding"`
}

type categoryResp struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsArchived bool   `json:"is_archived"`
	IsHolding  bool   `json:"is_holding"`
}

func toCategoryResp(cat *models.Category) categoryResp {
	return categoryResp{
		ID:         cat.ID,
		Name:       cat.Name,
		Type:       cat.Type,
		IsArchived: cat.IsArchived,
		IsHolding:  cat.IsHolding,
	}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.FieldError(c, "name", "name is required")
		return
	}

	category, outcome, err := findOrCreateCategory(h.DB, user.ID, req.Name, req.Type, req.IsHolding)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}
	if outcome == "DUPLICATE" {
		util.Error(c, http.StatusConflict, util.CodeConflict, "category already exists")
		return
	}

	util.Success(c, util.Response{"category": toCategoryResp(category)})
}

// findOrCreateCategory inserts first and treats a duplicate-key error as
// "already exists", re-fetching the winner. Two concurrent requests both
// seeing no category cannot both insert; a pre-check would race (TOCTOU).
func findOrCreateCategory(db *gorm.DB, userID uint, name, catType string, isHolding bool) (*models.Category, string, error) {
	category := models.Category{
		UserID:    userID,
		Name:      name,
		Type:      catType,
		IsHolding: isHolding,
	}
	err := db.Create(&category).Error
	if err == nil {
		return &category, "CREATED", nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, "", err
	}

	var existing models.Category
	if ferr := db.Where("user_id = ? AND name = ? AND type = ?", userID, name, catType).
		First(&existing).Error; ferr != nil {
		return nil, "", ferr
	}
	return &existing, "DUPLICATE", nil
}

func (h *CategoryHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := h.DB.Where("user_id = ?", user.ID)
	if c.DefaultQuery("include_archived", "false") != "true" {
		q = q.Where("is_archived = ?", false)
	}
	if t := c.Query("type"); t == models.TypeIncome || t == models.TypeExpense {
		q = q.Where("type = ?", t)
	}

	var categories []models.Category
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}

	items := make([]categoryResp, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResp(&categories[i]))
	}
	util.Success(c, util.Response{"categories": items})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	category, err := ownedCategory(h.DB, user.ID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	category.Name = req.Name
	category.Type = req.Type
	category.IsHolding = req.IsHolding
	if err := h.DB.Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "category already exists")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update category")
		return
	}

	util.Success(c, util.Response{"category": toCategoryResp(category)})
}

// Archive soft-disables a category without deleting transaction history.
func (h *CategoryHandler) Archive(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	category, err := ownedCategory(h.DB, user.ID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	if err := h.DB.Model(category).Update("is_archived", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to archive category")
		return
	}

	util.Success(c, util.Response{"message": "category archived"})
}
