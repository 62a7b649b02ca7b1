package controllers

import (
	"strconv"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	SKU           string          `json:"sku"`
	CategoryID    uint            `json:"category_id"`
	StockQuantity int             `json:"stock_quantity"`
}

// GET /v1/products
func ListProducts(c *gin.Context) {
	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Product{})

	if vendorID := c.Query("vendor_id"); vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if approved := c.Query("approved"); approved != "" {
		query = query.Where("approved = ?", approved == "true")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&products).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch products", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Products retrieved successfully", products, total, pagination.Page, pagination.Limit)
}

// GET /v1/products/:id
func GetProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid product ID", nil)
		return
	}

	var product models.Product
	if err := config.DB.First(&product, productID).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	config.DB.Model(&product).Update("views", gorm.Expr("views + 1"))

	utils.Success(c, "Product retrieved successfully", product)
}

// POST /v1/products (vendor)
func CreateProduct(c *gin.Context) {
	utils.LogInfo("CreateProduct called")
	userVal, _ := c.Get("user")
	user := userVal.(models.User)

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. name and price are required", err.Error())
		return
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		utils.BadRequest(c, "Price must be greater than zero", gin.H{"field": "price"})
		return
	}

	product := models.Product{
		Name:          req.Name,
		Slug:          utils.Slugify(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		SKU:           req.SKU,
		VendorID:      user.ID,
		CategoryID:    req.CategoryID,
		StockQuantity: req.StockQuantity,
		Status:        models.ProductStatusPending,
	}
	if err := config.DB.Create(&product).Error; err != nil {
		utils.LogError("Failed to create product: %v", err)
		utils.InternalServerError(c, "Failed to create product", err.Error())
		return
	}

	utils.Created(c, "Product created successfully", product)
}

// PUT /v1/products/:id (vendor)
func UpdateProduct(c *gin.Context) {
	userVal, _ := c.Get("user")
	user := userVal.(models.User)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid product ID", nil)
		return
	}

	var product models.Product
	query := config.DB
	if user.Role != models.RoleAdmin {
		query = query.Where("vendor_id = ?", user.ID)
	}
	if err := query.First(&product, productID).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	updates := map[string]interface{}{
		"name":           req.Name,
		"description":    req.Description,
		"price":          req.Price,
		"sku":            req.SKU,
		"category_id":    req.CategoryID,
		"stock_quantity": req.StockQuantity,
	}
	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update product", err.Error())
		return
	}

	utils.Success(c, "Product updated successfully", product)
}

// POST /v1/admin/products/:id/approve
func AdminApproveProduct(c *gin.Context) {
	userVal, _ := c.Get("user")
	admin := userVal.(models.User)

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid product ID", nil)
		return
	}

	var product models.Product
	if err := config.DB.First(&product, productID).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	if err := config.DB.Model(&product).Updates(map[string]interface{}{
		"approved":    true,
		"status":      models.ProductStatusApproved,
		"approved_by": admin.ID,
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to approve product", err.Error())
		return
	}

	utils.LogInfo("Product %d approved by admin %d", product.ID, admin.ID)
	utils.Success(c, "Product approved successfully", product)
}
