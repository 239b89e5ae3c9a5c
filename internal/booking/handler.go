// File: internal/booking/handler.go
package booking

import (
	"errors"

	"rent_a_ride_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for booking handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new booking handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for booking operations. All booking
// routes require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	bookingGroup := router.Group("/bookings")
	bookingGroup.Use(authMW)
	{
		bookingGroup.POST("", h.createBooking)
		bookingGroup.GET("", h.listMyBookings)
		bookingGroup.GET("/:id", h.getBooking)
		bookingGroup.POST("/:id/cancel", h.cancelBooking)

		adminGroup := bookingGroup.Group("/admin")
		adminGroup.Use(adminRoleMW)
		{
			adminGroup.GET("", h.adminListBookings)
		}
	}
}

func (h *Handler) createBooking(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("User ID not found in context."))
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	booking, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Booking created successfully.", ToBookingResponse(booking))
}

func (h *Handler) listMyBookings(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("User ID not found in context."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	bookings, pagination, err := h.service.ListForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Bookings retrieved successfully.", ToBookingResponses(bookings), pagination)
}

func (h *Handler) getBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	callerID := common.GetUserIDFromContext(c)
	callerRole := common.GetUserRoleFromContext(c)
	booking, err := h.service.GetByID(c.Request.Context(), bookingID, callerID, callerRole)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking retrieved successfully.", ToBookingResponse(booking))
}

func (h *Handler) cancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	userID := common.GetUserIDFromContext(c)
	booking, err := h.service.Cancel(c.Request.Context(), bookingID, userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking cancelled successfully.", ToBookingResponse(booking))
}

func (h *Handler) adminListBookings(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)

	status := BookingStatus(c.Query("status"))
	switch status {
	case "", StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
	default:
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid status filter."))
		return
	}

	bookings, pagination, err := h.service.AdminList(c.Request.Context(), status, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Bookings retrieved successfully.", ToBookingResponses(bookings), pagination)
}
