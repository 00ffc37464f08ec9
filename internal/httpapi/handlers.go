package httpapi

import (
	"errors"
	"net/http"

	"catalog-api/internal/audit"
	"catalog-api/internal/auth"
	"catalog-api/internal/metrics"
	"catalog-api/internal/products"
	"catalog-api/internal/rbac"
	"catalog-api/internal/users"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// They stay thin: bind input, call a service, map the result.
type Handlers struct {
	Auth     *auth.Service
	Users    *users.Service
	Products *products.Service
	Audit    *audit.Service
	Metrics  *metrics.Metrics
	Health   []HealthCheck
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for an access token. Every credential failure,
// including an unreadable body, gets the same 401 payload.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordLogin(metrics.LoginInvalidCredentials)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.recordLogin(metrics.LoginSuccess)
		c.JSON(http.StatusOK, res)
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.recordLogin(metrics.LoginInvalidCredentials)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	default:
		h.recordLogin(metrics.LoginError)
		respondError(c, err)
	}
}

func (h Handlers) recordLogin(outcome string) {
	if h.Metrics != nil {
		h.Metrics.RecordLogin(outcome)
	}
}

// --- Users ---

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
}

func (h Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := h.Users.Create(c.Request.Context(), users.CreateRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     rbac.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, audit.EventUserCreated, u.ID, "user created", map[string]any{"role": u.Role})
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) ListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetUser(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (h Handlers) UpdateUserStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := h.Users.UpdateStatus(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "user deactivated"
	if u.IsActive {
		msg = "user activated"
	}
	h.audit(c, audit.EventUserStatusChanged, u.ID, msg, map[string]any{"isActive": u.IsActive})
	c.JSON(http.StatusOK, u)
}

// --- Products ---

type createProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,min=0"`
	Stock       *int     `json:"stock" binding:"required,min=0"`
}

func (h Handlers) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	p, err := h.Products.Create(c.Request.Context(), products.CreateRequest{
		Name:        req.Name,
		Description: *req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, audit.EventProductCreated, p.ID, "product created", nil)
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) ListProducts(c *gin.Context) {
	list, err := h.Products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetProduct(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Stock       *int     `json:"stock" binding:"omitempty,min=0"`
	IsActive    *bool    `json:"isActive"`
}

// fields lists the JSON names present in the patch, in declaration order.
func (r updateProductRequest) fields() []string {
	out := []string{}
	if r.Name != nil {
		out = append(out, "name")
	}
	if r.Description != nil {
		out = append(out, "description")
	}
	if r.Price != nil {
		out = append(out, "price")
	}
	if r.Stock != nil {
		out = append(out, "stock")
	}
	if r.IsActive != nil {
		out = append(out, "isActive")
	}
	return out
}

func (h Handlers) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	p, err := h.Products.Update(c.Request.Context(), c.Param("id"), products.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, audit.EventProductUpdated, p.ID, "product updated", map[string]any{"fields": req.fields()})
	c.JSON(http.StatusOK, p)
}

func (h Handlers) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.Products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, audit.EventProductDeleted, id, "product deleted", nil)
	c.Status(http.StatusNoContent)
}

// audit records a guarded mutation for the verified caller. It never fails the request.
func (h Handlers) audit(c *gin.Context, typ audit.EventType, targetID, message string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	id, err := auth.FromContext(c.Request.Context())
	if err != nil {
		return
	}
	h.Audit.Record(c.Request.Context(), audit.Actor{
		UserID: id.UserID,
		Role:   id.Role,
		IP:     c.ClientIP(),
	}, typ, targetID, message, metadata)
}
