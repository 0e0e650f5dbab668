package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dinehub/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRestaurantRequest struct {
	RestaurantName string `json:"restaurant_name" binding:"required"`
	Address        string `json:"address"`
	Username       string `json:"username" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
}

// RegisterRestaurant creates an owner account and a restaurant awaiting admin
// approval. The two rows are created in one transaction.
func (a *API) RegisterRestaurant(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "RegisterRestaurant")
	defer span.End()

	var req RegisterRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	err := a.db.WithContext(ctx).
		Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	owner := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
	}
	restaurant := models.Restaurant{
		Name:           req.RestaurantName,
		Address:        req.Address,
		ApprovalStatus: models.ApprovalPending,
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		restaurant.OwnerID = owner.ID
		return tx.Create(&restaurant).Error
	})
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Restaurant registered and awaiting approval",
		"restaurant_id":   restaurant.ID,
		"owner_id":        owner.ID,
		"approval_status": restaurant.ApprovalStatus,
	})
}

func (a *API) ListRestaurants(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "ListRestaurants")
	defer span.End()

	q := a.db.WithContext(ctx).Preload("Owner").Preload("SubscriptionPlan")
	if status := c.Query("status"); status != "" {
		q = q.Where("approval_status = ?", status)
	}

	var restaurants []models.Restaurant
	if err := q.Find(&restaurants).Error; err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list restaurants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants})
}

type ApproveRestaurantRequest struct {
	SubscriptionPlanID *uint `json:"subscription_plan_id"`
}

// ApproveRestaurant flips a restaurant to approved, optionally assigning its
// subscription plan in the same call.
func (a *API) ApproveRestaurant(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "ApproveRestaurant")
	defer span.End()

	restaurant, ok := a.restaurantByParam(c)
	if !ok {
		return
	}

	var req ApproveRestaurantRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			span.SetError(err.Error(), "")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	updates := map[string]interface{}{"approval_status": models.ApprovalApproved}
	if req.SubscriptionPlanID != nil {
		var plan models.SubscriptionPlan
		if err := a.db.WithContext(ctx).First(&plan, *req.SubscriptionPlanID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription plan not found"})
			return
		}
		updates["subscription_plan_id"] = plan.ID
	}

	if err := a.db.WithContext(ctx).Model(restaurant).Updates(updates).Error; err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve restaurant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant approved", "restaurant_id": restaurant.ID})
}

func (a *API) RejectRestaurant(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "RejectRestaurant")
	defer span.End()

	restaurant, ok := a.restaurantByParam(c)
	if !ok {
		return
	}

	err := a.db.WithContext(ctx).Model(restaurant).
		Update("approval_status", models.ApprovalRejected).Error
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject restaurant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant rejected", "restaurant_id": restaurant.ID})
}

// restaurantByParam loads the :id restaurant, writing the error response
// itself when the id is malformed or unknown.
func (a *API) restaurantByParam(c *gin.Context) (*models.Restaurant, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant ID"})
		return nil, false
	}

	var restaurant models.Restaurant
	err = a.db.WithContext(c.Request.Context()).
		Preload("Owner").Preload("SubscriptionPlan").
		First(&restaurant, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load restaurant"})
		return nil, false
	}
	return &restaurant, true
}
