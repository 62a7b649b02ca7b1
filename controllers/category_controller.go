package controllers

import (
	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/categories
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch categories", err.Error())
		return
	}
	utils.Success(c, "Categories retrieved successfully", categories)
}

// POST /v1/admin/categories
func CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. name is required", err.Error())
		return
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        utils.Slugify(req.Name),
		Description: req.Description,
	}
	if err := config.DB.Create(&category).Error; err != nil {
		utils.LogError("Failed to create category: %v", err)
		utils.InternalServerError(c, "Failed to create category", err.Error())
		return
	}

	utils.Created(c, "Category created successfully", category)
}
