// File: internal/vehicle/handler.go
package vehicle

import (
	"errors"
	"strconv"

	"rent_a_ride_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for vehicle handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new vehicle handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for vehicle operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	vehicleGroup := router.Group("/vehicles")
	{
		vehicleGroup.GET("", h.searchVehicles)
		vehicleGroup.GET("/:idOrSlug", h.getVehicle)

		adminGroup := vehicleGroup.Group("/admin")
		adminGroup.Use(authMW)
		adminGroup.Use(adminRoleMW)
		{
			adminGroup.POST("", h.adminCreateVehicle)
			adminGroup.PUT("/:id", h.adminUpdateVehicle)
			adminGroup.DELETE("/:id", h.adminDeleteVehicle)
		}
	}
}

func (h *Handler) searchVehicles(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	query := VehicleSearchQuery{
		SearchTerm: c.Query("q"),
		Location:   c.Query("location"),
		Page:       page,
		PageSize:   pageSize,
	}

	if raw := c.Query("min_price"); raw != "" {
		minPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || minPrice < 0 {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("min_price must be a non-negative integer."))
			return
		}
		query.MinPrice = &minPrice
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || maxPrice < 0 {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("max_price must be a non-negative integer."))
			return
		}
		query.MaxPrice = &maxPrice
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("min_price cannot exceed max_price."))
		return
	}

	vehicles, pagination, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Vehicles retrieved successfully.", ToVehicleResponses(vehicles), pagination)
}

func (h *Handler) getVehicle(c *gin.Context) {
	vehicle, err := h.service.GetByIDOrSlug(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Vehicle retrieved successfully.", ToVehicleResponse(vehicle))
}

func (h *Handler) adminCreateVehicle(c *gin.Context) {
	var req AdminCreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	vehicle, err := h.service.AdminCreate(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Vehicle created successfully.", ToVehicleResponse(vehicle))
}

func (h *Handler) adminUpdateVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid vehicle ID format."))
		return
	}

	var req AdminUpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	vehicle, err := h.service.AdminUpdate(c.Request.Context(), vehicleID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Vehicle updated successfully.", ToVehicleResponse(vehicle))
}

func (h *Handler) adminDeleteVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid vehicle ID format."))
		return
	}

	if err := h.service.AdminDelete(c.Request.Context(), vehicleID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
