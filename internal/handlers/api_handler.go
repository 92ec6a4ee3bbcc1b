package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"handcraft_market/internal/models"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/services"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	userService   services.UserService
	orderService  services.OrderService
	walletService services.WalletService
}

func NewAPIHandler(
	userService services.UserService,
	orderService services.OrderService,
	walletService services.WalletService,
) *APIHandler {
	return &APIHandler{
		userService:   userService,
		orderService:  orderService,
		walletService: walletService,
	}
}

// respondError maps domain errors to HTTP statuses. Every error here means
// the stored state is unchanged, so the client may correct and retry.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrCommissionReversed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrDuplicateCommission),
		errors.Is(err, models.ErrAlreadyReleased),
		errors.Is(err, models.ErrAlreadyApproved),
		errors.Is(err, models.ErrAlreadyRejected):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(value), true
}

// Orders

func (h *APIHandler) CreateOrder(c *gin.Context) {
	var req struct {
		CustomerID  uint                    `json:"customer_id" binding:"required"`
		Items       []services.CheckoutItem `json:"items" binding:"required"`
		ShippingFee int64                   `json:"shipping_fee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.CreateOrder(req.CustomerID, req.Items, req.ShippingFee)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) ListOrders(c *gin.Context) {
	filters := repository.OrderFilters{}
	if v, err := strconv.ParseUint(c.Query("customer_id"), 10, 32); err == nil {
		filters.CustomerID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("artist_id"), 10, 32); err == nil {
		filters.ArtistID = uint(v)
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseOrderStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		filters.Status = status
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, total, err := h.orderService.ListOrders(filters, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetOrderStatus serves the cached status projection for polling clients
// that do not need the full order payload.
func (h *APIHandler) GetOrderStatus(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	status, err := h.orderService.GetOrderStatus(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "status": status})
}

// RequestTransition drives the order state machine. The command is applied
// server-side and the committed snapshot comes back; clients must render
// that snapshot instead of assuming the transition succeeded.
func (h *APIHandler) RequestTransition(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req struct {
		Target  string `json:"target" binding:"required"`
		Role    string `json:"role" binding:"required"`
		ActorID uint   `json:"actor_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	target, ok := models.ParseOrderStatus(req.Target)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target status"})
		return
	}

	role := models.ActorRole(req.Role)
	switch role {
	case models.ActorAdmin, models.ActorArtist, models.ActorCustomer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	order, err := h.orderService.RequestTransition(id, target, role, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Wallet & withdrawals

func (h *APIHandler) GetWallet(c *gin.Context) {
	artistID, ok := paramUint(c, "artist_id")
	if !ok {
		return
	}
	summary, err := h.walletService.GetWalletSummary(artistID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *APIHandler) GetArtistProducts(c *gin.Context) {
	artistID, ok := paramUint(c, "artist_id")
	if !ok {
		return
	}
	products, err := h.orderService.ListArtistProducts(artistID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *APIHandler) GetArtistWithdrawals(c *gin.Context) {
	artistID, ok := paramUint(c, "artist_id")
	if !ok {
		return
	}
	requests, err := h.walletService.ListArtistWithdrawals(artistID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": requests})
}

func (h *APIHandler) RequestWithdrawal(c *gin.Context) {
	var req struct {
		ArtistID uint                 `json:"artist_id" binding:"required"`
		Amount   int64                `json:"amount" binding:"required"`
		Bank     services.BankDetails `json:"bank" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	request, err := h.walletService.RequestWithdrawal(req.ArtistID, req.Amount, req.Bank)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *APIHandler) ApproveWithdrawal(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req struct {
		AdminID uint `json:"admin_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.userService.ValidateUserRole(req.AdminID, models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}

	request, err := h.walletService.ApproveWithdrawal(id, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *APIHandler) RejectWithdrawal(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req struct {
		AdminID uint   `json:"admin_id" binding:"required"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.userService.ValidateUserRole(req.AdminID, models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}

	request, err := h.walletService.RejectWithdrawal(id, req.AdminID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *APIHandler) ListWithdrawals(c *gin.Context) {
	status := models.WithdrawStatus(c.DefaultQuery("status", string(models.WithdrawPending)))
	switch status {
	case models.WithdrawPending, models.WithdrawApproved, models.WithdrawRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	requests, err := h.walletService.ListWithdrawals(status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": requests})
}

// Transactions

func (h *APIHandler) ListTransactions(c *gin.Context) {
	filters := repository.TransactionFilters{}
	if v, err := strconv.ParseUint(c.Query("artist_id"), 10, 32); err == nil {
		filters.ArtistID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("order_id"), 10, 32); err == nil {
		filters.OrderID = uint(v)
	}
	if raw := c.Query("type"); raw != "" {
		filters.Type = models.TransactionType(raw)
	}
	if raw := c.Query("status"); raw != "" {
		filters.Status = models.TransactionStatus(raw)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	txs, total, err := h.walletService.ListTransactions(filters, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

// Admin statistics

func (h *APIHandler) GetStatistics(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
			return
		}
		from = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
			return
		}
		to = parsed.AddDate(0, 0, 1)
	}

	stats, err := h.orderService.GetOrderStatistics(from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Users

func (h *APIHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	role := req.Role
	if role == "" {
		role = string(models.RoleCustomer)
	}
	switch models.UserRole(role) {
	case models.RoleAdmin, models.RoleArtist, models.RoleCustomer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     role,
		IsActive: true,
	}
	if err := h.userService.CreateUser(user, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *APIHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.userService.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}
