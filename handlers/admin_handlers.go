package handlers

import (
	"net/http"

	"dinehub/database"

	"github.com/gin-gonic/gin"
)

func (a *API) ClearDatabase(c *gin.Context) {
	_, span := Tracer.StartSpan(c.Request.Context(), "ClearDatabase")
	defer span.End()

	if err := database.Reset(a.db); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear and migrate database"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Database cleared and migrated successfully"})
}

// RunJob triggers a scheduled job outside its daily window.
func (a *API) RunJob(c *gin.Context) {
	_, span := Tracer.StartSpan(c.Request.Context(), "RunJob")
	defer span.End()

	if a.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Job scheduler is not configured"})
		return
	}

	name := c.Param("name")
	if !a.scheduler.RunByName(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job completed", "job": name})
}
