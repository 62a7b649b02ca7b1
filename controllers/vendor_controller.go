package controllers

import (
	"strconv"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/vendors
func ListVendors(c *gin.Context) {
	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.User{}).Where("role = ?", models.RoleVendor)

	if approved := c.Query("approved"); approved != "" {
		query = query.Where("approved = ?", approved == "true")
	}

	var total int64
	query.Count(&total)

	var vendors []models.User
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&vendors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vendors", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Vendors retrieved successfully", vendors, total, pagination.Page, pagination.Limit)
}

// POST /v1/admin/vendors/:id/approve
func AdminApproveVendor(c *gin.Context) {
	vendorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid vendor ID", nil)
		return
	}

	var vendor models.User
	if err := config.DB.Where("id = ? AND role = ?", vendorID, models.RoleVendor).First(&vendor).Error; err != nil {
		utils.NotFound(c, "Vendor not found")
		return
	}

	if err := config.DB.Model(&vendor).Update("approved", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to approve vendor", err.Error())
		return
	}

	utils.LogInfo("Vendor %d approved", vendor.ID)
	utils.Success(c, "Vendor approved successfully", vendor)
}
