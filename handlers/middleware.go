package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dinehub/auth"
	"dinehub/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthRequired authenticates a request either by a server-to-server API token
// (X-API-Token header) or by a user JWT (Authorization: Bearer). It sets
// userID and role in the context; API tokens additionally pin a restaurantID.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.GetHeader("X-API-Token"); token != "" {
			a.authenticateAPIToken(c, token)
			return
		}

		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication credentials"})
			return
		}

		claims, err := auth.ValidateToken([]byte(a.cfg.JWTSecret), strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var user models.User
		if err := a.db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("role", user.Role)
		c.Next()
	}
}

func (a *API) authenticateAPIToken(c *gin.Context, token string) {
	var apiToken models.APIToken
	err := a.db.Preload("Restaurant").
		Where("token = ? AND is_active = ?", token, true).
		First(&apiToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API token"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	if apiToken.ExpiresAt != nil && apiToken.ExpiresAt.Before(time.Now()) {
		a.db.Model(&apiToken).Update("is_active", false)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API token expired"})
		return
	}

	now := time.Now()
	a.db.Model(&apiToken).Update("last_used", &now)

	if apiToken.RestaurantID != nil {
		c.Set("restaurantID", *apiToken.RestaurantID)
		if apiToken.Restaurant != nil {
			c.Set("userID", apiToken.Restaurant.OwnerID)
		}
	}
	c.Set("role", models.RoleOwner)
	c.Next()
}

func (a *API) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// canAccessRestaurant reports whether the authenticated caller may read this
// restaurant's data: admins always, owners for their own restaurant, API
// tokens for the restaurant they are scoped to.
func (a *API) canAccessRestaurant(c *gin.Context, restaurant *models.Restaurant) bool {
	if c.GetString("role") == models.RoleAdmin {
		return true
	}
	if scoped, ok := c.Get("restaurantID"); ok {
		id, _ := scoped.(uint)
		return id == restaurant.ID
	}
	return restaurant.OwnerID == c.GetUint("userID")
}
