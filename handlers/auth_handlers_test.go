package handlers

import (
	"net/http"
	"testing"

	"dinehub/models"

	"github.com/gin-gonic/gin"

	"github.com/stretchr/testify/assert"
)

func TestLogin(t *testing.T) {
	_, r, db := setupAPITest(t)
	createTestUser(t, db, "owner1", models.RoleOwner)

	w := doJSON(r, "POST", "/login", "", gin.H{"username": "owner1", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	// Email works as the identifier too.
	w = doJSON(r, "POST", "/login", "", gin.H{"email": "owner1@test.example", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, r, db := setupAPITest(t)
	createTestUser(t, db, "owner1", models.RoleOwner)

	w := doJSON(r, "POST", "/login", "", gin.H{"username": "owner1", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "POST", "/login", "", gin.H{"username": "ghost", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "POST", "/login", "", gin.H{"password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	restaurant := createTestRestaurant(t, db, owner, false)

	path := "/restaurants/" + itoa(restaurant.ID) + "/reports/sales"

	w := doJSON(r, "GET", path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "GET", path, "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "GET", path, tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
