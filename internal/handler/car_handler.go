package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/carsharing-backend-go/internal/service"
	"github.com/jengzang/carsharing-backend-go/pkg/response"
)

// CarHandler handles HTTP requests for cars
type CarHandler struct {
	service *service.CarService
}

// NewCarHandler creates a new car handler
func NewCarHandler(service *service.CarService) *CarHandler {
	return &CarHandler{service: service}
}

// ListCars handles GET /api/v1/cars
func (h *CarHandler) ListCars(c *gin.Context) {
	cars, err := h.service.ListCars(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list cars", err)
		return
	}

	response.Success(c, cars)
}

// GetStates handles GET /api/v1/cars/:id/states
func (h *CarHandler) GetStates(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid car ID", err)
		return
	}

	car, err := h.service.GetCar(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get car", err)
		return
	}
	if car == nil {
		response.Error(c, http.StatusNotFound, "Car not found", nil)
		return
	}

	states, err := h.service.GetStates(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get car states", err)
		return
	}

	response.Success(c, gin.H{
		"car":    car,
		"states": states,
	})
}
