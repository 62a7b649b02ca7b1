package controllers

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/repositories"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderRepo applies compare-and-set order transitions. Wired in
// routes.SetupRouter.
var OrderRepo *repositories.GormOrderRepository

// TxnRepo reads the payment attempt log. Wired in routes.SetupRouter.
var TxnRepo *repositories.GormTransactionRepository

type orderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" binding:"required"`
	ShippingAddress json.RawMessage    `json:"shipping_address" binding:"required"`
	Notes           string             `json:"notes"`
}

// POST /v1/orders
func CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid order request: %v", err)
		utils.BadRequest(c, "Invalid request. items and shipping_address are required", err.Error())
		return
	}
	if len(req.Items) == 0 {
		utils.BadRequest(c, "Order must contain at least one item", nil)
		return
	}

	db := config.DB
	tx := db.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	subtotal := decimal.Zero
	var orderItems []models.OrderItem
	for _, item := range req.Items {
		if item.Quantity < 1 {
			tx.Rollback()
			utils.BadRequest(c, "Item quantity must be at least 1", nil)
			return
		}
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			utils.NotFound(c, fmt.Sprintf("Product %d not found", item.ProductID))
			return
		}
		if !product.Approved {
			tx.Rollback()
			utils.BadRequest(c, fmt.Sprintf("Product %s is not available", product.Name), nil)
			return
		}
		if product.StockQuantity < item.Quantity {
			tx.Rollback()
			utils.BadRequest(c, fmt.Sprintf("Insufficient stock for %s", product.Name), nil)
			return
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			VendorID:  product.VendorID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Total:     lineTotal,
		})

		if err := tx.Model(&product).Update("stock_quantity", product.StockQuantity-item.Quantity).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to reserve stock", err.Error())
			return
		}
	}

	order := models.Order{
		OrderNumber:     generateOrderNumber(),
		CustomerID:      user.ID,
		Status:          models.OrderStatusPending,
		Subtotal:        subtotal,
		Total:           subtotal,
		Currency:        "USD",
		ShippingAddress: []byte(req.ShippingAddress),
		PaymentStatus:   models.PaymentStatusPending,
		Notes:           req.Notes,
		OrderItems:      orderItems,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create order: %v", err)
		utils.InternalServerError(c, "Failed to create order", err.Error())
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to commit transaction", err.Error())
		return
	}

	utils.LogInfo("Created order %s for user %d", order.OrderNumber, user.ID)
	utils.Created(c, "Order created successfully", order)
}

// GET /v1/orders/:id
func GetOrder(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	query := config.DB.Preload("OrderItems")
	if user.Role != models.RoleAdmin {
		query = query.Where("customer_id = ?", user.ID)
	}
	if err := query.First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	transactions, err := TxnRepo.ListByOrder(c.Request.Context(), order.ID)
	if err != nil {
		utils.LogError("Failed to load transactions for order %d: %v", order.ID, err)
	}

	utils.Success(c, "Order retrieved successfully", gin.H{
		"order":        order,
		"transactions": transactions,
	})
}

// GET /v1/orders
func ListOrders(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Order{})
	if user.Role != models.RoleAdmin {
		query = query.Where("customer_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("OrderItems").
		Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, total, pagination.Page, pagination.Limit)
}

// PUT /v1/admin/orders/:id/status
func AdminUpdateOrderStatus(c *gin.Context) {
	utils.LogInfo("AdminUpdateOrderStatus called")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		utils.BadRequest(c, "Status is required", nil)
		return
	}

	order, err := OrderRepo.GetByID(c.Request.Context(), uint(orderID))
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	if !models.CanTransitionOrderStatus(order.Status, req.Status) {
		utils.LogError("Invalid transition %s -> %s for order %d", order.Status, req.Status, orderID)
		utils.BadRequest(c, fmt.Sprintf("Cannot move order from %s to %s", order.Status, req.Status), gin.H{
			"valid_statuses": models.ValidOrderStatuses(),
		})
		return
	}
	if req.Status == models.OrderStatusProcessing && order.PaymentStatus != models.PaymentStatusPaid {
		utils.BadRequest(c, "Order cannot be processed before payment is confirmed", nil)
		return
	}

	applied, err := OrderRepo.UpdateStatusCAS(c.Request.Context(), order.ID, order.Status, req.Status)
	if err != nil {
		utils.InternalServerError(c, "Failed to update order status", err.Error())
		return
	}
	if !applied {
		utils.Conflict(c, "Order status changed concurrently, please retry", nil)
		return
	}

	if req.Status == models.OrderStatusCancelled && order.PaymentStatus == models.PaymentStatusPaid {
		// A paid order cancelled by an admin owes the buyer a refund. Issuing
		// it is handled outside this service; here it is only tracked.
		if err := OrderRepo.SetRefundStatus(c.Request.Context(), order.ID, models.RefundStatusDue); err != nil {
			utils.LogError("Failed to mark refund due for order %d: %v", order.ID, err)
		}
	}

	utils.LogInfo("Order %s moved from %s to %s", order.OrderNumber, order.Status, req.Status)
	utils.Success(c, "Order status updated successfully", gin.H{
		"order_id": order.ID,
		"status":   req.Status,
	})
}

// POST /v1/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ? AND customer_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	if !models.CanTransitionOrderStatus(order.Status, models.OrderStatusCancelled) {
		utils.BadRequest(c, fmt.Sprintf("Cannot cancel an order that is already %s", order.Status), nil)
		return
	}

	applied, err := OrderRepo.UpdateStatusCAS(c.Request.Context(), order.ID, order.Status, models.OrderStatusCancelled)
	if err != nil {
		utils.InternalServerError(c, "Failed to cancel order", err.Error())
		return
	}
	if !applied {
		utils.Conflict(c, "Order status changed concurrently, please retry", nil)
		return
	}

	refundDue := order.PaymentStatus == models.PaymentStatusPaid
	if refundDue {
		if err := OrderRepo.SetRefundStatus(c.Request.Context(), order.ID, models.RefundStatusDue); err != nil {
			utils.LogError("Failed to mark refund due for order %d: %v", order.ID, err)
		}
	}

	utils.LogInfo("Order %s cancelled by user %d", order.OrderNumber, user.ID)
	utils.Success(c, "Order cancelled successfully", gin.H{
		"order_id":   order.ID,
		"refund_due": refundDue,
	})
}

// POST /v1/admin/orders/:id/refund
func AdminCompleteRefund(c *gin.Context) {
	utils.LogInfo("AdminCompleteRefund called")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	order, err := OrderRepo.GetByID(c.Request.Context(), uint(orderID))
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}
	if order.RefundStatus != models.RefundStatusDue {
		utils.BadRequest(c, "No refund is due for this order", nil)
		return
	}

	applied, err := OrderRepo.UpdatePaymentStatusCAS(c.Request.Context(), order.ID, models.PaymentStatusPaid, models.PaymentStatusRefunded)
	if err != nil {
		utils.InternalServerError(c, "Failed to record refund", err.Error())
		return
	}
	if !applied {
		utils.Conflict(c, "Order payment status changed concurrently, please retry", nil)
		return
	}
	if err := OrderRepo.SetRefundStatus(c.Request.Context(), order.ID, models.RefundStatusCompleted); err != nil {
		utils.LogError("Failed to mark refund completed for order %d: %v", order.ID, err)
	}

	utils.LogInfo("Refund recorded for order %s", order.OrderNumber)
	utils.Success(c, "Refund recorded successfully", gin.H{"order_id": order.ID})
}

// generateOrderNumber produces the externally visible order number, distinct
// from the database primary key. The timestamp component keeps numbers from
// colliding under the unique index; the random suffix disambiguates orders
// created in the same millisecond.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%06d", time.Now().UnixMilli(), 100000+rand.Intn(900000))
}
