package splits

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"organizer/internal/organizations"
	"organizer/internal/shared/apperror"
	"organizer/internal/shared/utils/response"
	"organizer/internal/users"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{
		service: service,
	}
}

func bookingIDParam(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid booking id")
	}
	return uint(id), nil
}

// RequireBookingID rejects a malformed :id before any auth guard runs.
func RequireBookingID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, err := bookingIDParam(ctx); err != nil {
			response.AbortWithError(ctx, err)
			return
		}
		ctx.Next()
	}
}

// bindOptionalJSON treats an empty body as an empty object.
func bindOptionalJSON(ctx *gin.Context, dst interface{}) error {
	if err := ctx.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return response.BindError(err)
	}
	return nil
}

// GetSplit godoc
// @Summary Get the payment split of a booking
// @Tags splits
// @Produce json
// @Param orgId path int true "Organization ID"
// @Param id path int true "Booking ID"
// @Success 200 {object} GetSplitResponse
// @Router /org/{orgId}/bookings/{id}/split [get]
func (c *Controller) GetSplit(ctx *gin.Context) {
	bookingID, err := bookingIDParam(ctx)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	org := organizations.FromContext(ctx)
	if org == nil {
		response.RespondError(ctx, apperror.New(apperror.CodeForbidden, http.StatusForbidden, "Organization required"))
		return
	}

	view, err := c.service.GetSplit(ctx.Request.Context(), org.ID, bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Split retrieved successfully", toGetSplitResponse(view))
}

// ConfigureSplit godoc
// @Summary Create or replace the payment split of a booking
// @Tags splits
// @Accept json
// @Produce json
// @Param orgId path int true "Organization ID"
// @Param id path int true "Booking ID"
// @Param request body ConfigureSplitRequest true "Split configuration"
// @Success 200 {object} ConfigureSplitResponse
// @Router /org/{orgId}/bookings/{id}/split [post]
func (c *Controller) ConfigureSplit(ctx *gin.Context) {
	bookingID, err := bookingIDParam(ctx)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	org := organizations.FromContext(ctx)
	if org == nil {
		response.RespondError(ctx, apperror.New(apperror.CodeForbidden, http.StatusForbidden, "Organization required"))
		return
	}

	var request ConfigureSplitRequest
	if err := bindOptionalJSON(ctx, &request); err != nil {
		response.RespondError(ctx, err)
		return
	}

	input := request.ToInput()
	input.OrganizationID = org.ID
	input.Organization = org
	input.BookingID = bookingID
	if userID, ok := users.UserIDFromContext(ctx); ok {
		input.UserID = &userID
	}

	result, err := c.service.ConfigureSplit(ctx.Request.Context(), input)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Split saved successfully", toConfigureSplitResponse(result))
}

// Checkout godoc
// @Summary Quote a participant's share for payment
// @Tags splits
// @Accept json
// @Produce json
// @Param token path string true "Invite token"
// @Param request body CheckoutRequest false "Payment method"
// @Success 200 {object} CheckoutResponse
// @Router /invites/{token}/split/checkout [post]
func (c *Controller) Checkout(ctx *gin.Context) {
	var request CheckoutRequest
	if err := bindOptionalJSON(ctx, &request); err != nil {
		response.RespondError(ctx, err)
		return
	}

	quote, err := c.service.PrepareParticipantCheckout(ctx.Request.Context(), CheckoutInput{
		Token:         ctx.Param("token"),
		PaymentMethod: request.PaymentMethod,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Checkout prepared", toCheckoutResponse(quote))
}

// ConfirmPayment godoc
// @Summary Record a successful participant payment
// @Tags internal
// @Accept json
// @Produce json
// @Param request body PaymentConfirmationRequest true "Payment confirmation"
// @Success 200 {object} PaymentConfirmationResponse
// @Router /internal/splits/payments [post]
func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	var request PaymentConfirmationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.RespondError(ctx, response.BindError(err))
		return
	}

	result, err := c.service.RecordParticipantPayment(ctx.Request.Context(), PaymentInput{
		PurchaseID:      request.PurchaseID,
		PaymentIntentID: request.PaymentIntentID,
		PaidAt:          request.PaidAt,
	})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Payment recorded", PaymentConfirmationResponse{
		SplitID:       result.SplitID,
		ParticipantID: result.ParticipantID,
		SplitStatus:   result.SplitStatus,
		Duplicate:     result.Duplicate,
	})
}
