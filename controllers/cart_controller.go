package controllers

import (
	"strconv"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// resolveCart finds or creates the cart for the current request: the user's
// cart when logged in, otherwise a session-bound guest cart.
func resolveCart(c *gin.Context) (*models.Cart, error) {
	var cart models.Cart

	if userVal, exists := c.Get("user"); exists {
		user := userVal.(models.User)
		err := config.DB.Preload("Items.Product").
			Where("customer_id = ?", user.ID).
			FirstOrCreate(&cart, models.Cart{CustomerID: user.ID}).Error
		return &cart, err
	}

	session := sessions.Default(c)
	sessionID, _ := session.Get("cart_session").(string)
	if sessionID == "" {
		sessionID = uuid.New().String()
		session.Set("cart_session", sessionID)
		if err := session.Save(); err != nil {
			return nil, err
		}
	}
	err := config.DB.Preload("Items.Product").
		Where("session_id = ?", sessionID).
		FirstOrCreate(&cart, models.Cart{SessionID: sessionID}).Error
	return &cart, err
}

func cartSummary(cart *models.Cart) gin.H {
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return gin.H{
		"cart":     cart,
		"subtotal": subtotal.StringFixed(2),
	}
}

// GET /v1/cart
func GetCart(c *gin.Context) {
	cart, err := resolveCart(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", err.Error())
		return
	}
	utils.Success(c, "Cart retrieved successfully", cartSummary(cart))
}

// POST /v1/cart/items
func AddCartItem(c *gin.Context) {
	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. product_id and quantity are required", err.Error())
		return
	}
	if req.Quantity < 1 {
		utils.BadRequest(c, "Quantity must be at least 1", nil)
		return
	}

	var product models.Product
	if err := config.DB.First(&product, req.ProductID).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}
	if !product.Approved {
		utils.BadRequest(c, "Product is not available", nil)
		return
	}
	if product.StockQuantity < req.Quantity {
		utils.BadRequest(c, "Insufficient stock", nil)
		return
	}

	cart, err := resolveCart(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", err.Error())
		return
	}

	var item models.CartItem
	err = config.DB.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	if err == nil {
		item.Quantity += req.Quantity
		if err := config.DB.Save(&item).Error; err != nil {
			utils.InternalServerError(c, "Failed to update cart", err.Error())
			return
		}
	} else {
		item = models.CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := config.DB.Create(&item).Error; err != nil {
			utils.InternalServerError(c, "Failed to update cart", err.Error())
			return
		}
	}

	cart, err = resolveCart(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", err.Error())
		return
	}
	utils.Success(c, "Item added to cart", cartSummary(cart))
}

// DELETE /v1/cart/items/:id
func RemoveCartItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid item ID", nil)
		return
	}

	cart, err := resolveCart(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", err.Error())
		return
	}

	result := config.DB.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to remove item", result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Cart item not found")
		return
	}

	cart, err = resolveCart(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", err.Error())
		return
	}
	utils.Success(c, "Item removed from cart", cartSummary(cart))
}
