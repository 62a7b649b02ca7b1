package controllers

import (
	"strconv"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/products/:id/reviews
func ListProductReviews(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid product ID", nil)
		return
	}

	var reviews []models.Review
	if err := config.DB.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch reviews", err.Error())
		return
	}

	utils.Success(c, "Reviews retrieved successfully", reviews)
}

// POST /v1/reviews
func CreateReview(c *gin.Context) {
	utils.LogInfo("CreateReview called")
	userVal, _ := c.Get("user")
	user := userVal.(models.User)

	var req struct {
		ProductID uint   `json:"product_id" binding:"required"`
		Rating    int    `json:"rating" binding:"required"`
		Title     string `json:"title"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. product_id and rating are required", err.Error())
		return
	}
	if err := utils.ValidateRating(req.Rating); err != nil {
		utils.BadRequest(c, err.Error(), gin.H{"field": "rating"})
		return
	}

	var product models.Product
	if err := config.DB.First(&product, req.ProductID).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	review := models.Review{
		ProductID:  req.ProductID,
		CustomerID: user.ID,
		Rating:     req.Rating,
		Title:      req.Title,
		Comment:    req.Comment,
	}
	if err := config.DB.Create(&review).Error; err != nil {
		utils.LogError("Failed to create review: %v", err)
		utils.InternalServerError(c, "Failed to create review", err.Error())
		return
	}

	updateProductRating(req.ProductID)

	utils.Created(c, "Review created successfully", review)
}

// updateProductRating recomputes the denormalized rating and review count.
func updateProductRating(productID uint) {
	var result struct {
		Avg   float64
		Count int64
	}
	config.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&result)

	if err := config.DB.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       result.Avg,
			"review_count": result.Count,
		}).Error; err != nil {
		utils.LogError("Failed to update rating for product %d: %v", productID, err)
	}
}
