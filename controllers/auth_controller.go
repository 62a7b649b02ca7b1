package controllers

import (
	"time"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Phone       string `json:"phone"`
	StoreName   string `json:"store_name"`
}

// POST /v1/auth/register
func Register(c *gin.Context) {
	utils.LogInfo("Register called")

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if ok, msg := utils.ValidateUsername(req.Username); !ok {
		utils.BadRequest(c, msg, gin.H{"field": "username"})
		return
	}
	if ok, msg := utils.ValidateEmail(req.Email); !ok {
		utils.BadRequest(c, msg, gin.H{"field": "email"})
		return
	}
	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		utils.BadRequest(c, msg, gin.H{"field": "password"})
		return
	}
	if req.Phone != "" {
		if ok, msg := utils.ValidatePhone(req.Phone); !ok {
			utils.BadRequest(c, msg, gin.H{"field": "phone"})
			return
		}
	}

	role := req.Role
	if role != models.RoleVendor {
		role = models.RoleCustomer
	}

	var existing models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Conflict(c, "An account with this email already exists", nil)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	user := models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    hash,
		DisplayName: req.DisplayName,
		Role:        role,
		Phone:       req.Phone,
		StoreName:   req.StoreName,
		// Customers are active immediately; vendors await admin approval.
		Approved: role == models.RoleCustomer,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user: %v", err)
		utils.InternalServerError(c, "Failed to create account", err.Error())
		return
	}

	utils.LogInfo("Registered user %d (%s)", user.ID, user.Role)
	utils.Created(c, "Account created successfully", user)
}

// POST /v1/auth/login
func Login(c *gin.Context) {
	utils.LogInfo("Login called")

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		utils.LogError("Failed login attempt for %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	utils.Success(c, "Logged in successfully", gin.H{
		"token": token,
		"user":  user,
	})
}

// GET /v1/auth/me
func Me(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	utils.Success(c, "User retrieved successfully", userVal)
}
