package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/models"
	"warehouse-service/internal/service"
	"warehouse-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	packages *service.PackageService
	products *service.ProductService
	verify   *service.VerifyService
	users    *service.UserService
	sessions *auth.Manager
}

// NewHandler creates a new HTTP handler
func NewHandler(
	packages *service.PackageService,
	products *service.ProductService,
	verify *service.VerifyService,
	users *service.UserService,
	sessions *auth.Manager,
) *Handler {
	return &Handler{
		packages: packages,
		products: products,
		verify:   verify,
		users:    users,
		sessions: sessions,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/login", h.login)

	authed := v1.Group("")
	authed.Use(h.authMiddleware())
	{
		authed.POST("/logout", h.logout)
		authed.POST("/password", h.resetPassword)

		authed.GET("/products", h.listProducts)
		authed.POST("/products", h.addProduct)
		authed.GET("/products/:id", h.getProduct)
		authed.PUT("/products/:id", h.updateProduct)
		authed.DELETE("/products/:id", h.deleteProduct)

		authed.POST("/packages", h.createPackage)
		authed.GET("/packages", h.listPackages)
		authed.GET("/packages/archived", h.listArchivedPackages)
		authed.GET("/packages/:id", h.getPackage)
		authed.POST("/packages/:id/assign", h.assignPackage)
		authed.DELETE("/packages/:id", h.deletePackage)
		authed.POST("/packages/:id/archive", h.archivePackage)
		authed.GET("/packages/:id/session", h.getSession)
		authed.POST("/packages/:id/scan", h.confirmScan)

		authed.GET("/users", h.listUsers)
		authed.POST("/users", h.addUser)
		authed.DELETE("/users/:id", h.deleteUser)
	}
}

const sessionKey = "session"

// authMiddleware resolves the bearer token into an auth.Session and stores
// it in the request context for handlers to pass into service operations.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		sess, err := h.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
			return
		}
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *auth.Session {
	return c.MustGet(sessionKey).(*auth.Session)
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrScanMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	token, sess, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "session": sess})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), currentSession(c), req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context(), c.Query("filter"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) addProduct(c *gin.Context) {
	var req service.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.products.AddProduct(c.Request.Context(), currentSession(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	product.ID = c.Param("id")

	if err := h.products.UpdateProduct(c.Request.Context(), currentSession(c), &product); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.DeleteProduct(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createPackage(c *gin.Context) {
	var req service.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pkg, err := h.packages.CreatePackage(c.Request.Context(), currentSession(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (h *Handler) listPackages(c *gin.Context) {
	packages, err := h.packages.ListPackages(c.Request.Context(),
		c.DefaultQuery("filter", models.FilterUnassigned),
		c.Query("assignee"),
		c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (h *Handler) getPackage(c *gin.Context) {
	pkg, err := h.packages.GetPackage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

type assignRequest struct {
	Version int64 `json:"version"`
}

func (h *Handler) assignPackage(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.packages.AssignPackage(c.Request.Context(), currentSession(c), c.Param("id"), req.Version); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deletePackage(c *gin.Context) {
	sess := currentSession(c)
	if !sess.IsManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "Deleting packages requires the manager capability"})
		return
	}

	if err := h.packages.DeletePackage(c.Request.Context(), sess, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) archivePackage(c *gin.Context) {
	if err := h.packages.ArchivePackage(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listArchivedPackages(c *gin.Context) {
	packages, err := h.packages.ListArchivedPackages(c.Request.Context(), c.Query("assignee"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (h *Handler) getSession(c *gin.Context) {
	view, err := h.verify.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) confirmScan(c *gin.Context) {
	var req service.ConfirmScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.verify.ConfirmScan(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) addUser(c *gin.Context) {
	var req service.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.users.AddUser(c.Request.Context(), currentSession(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
