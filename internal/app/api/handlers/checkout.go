package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/checkout"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/pkg/response"
)

type checkoutPayRequest struct {
	OrderID     int64  `json:"order_id" binding:"required"`
	RedirectURI string `json:"redirect_uri" binding:"required"`
}

type checkoutPayResponse struct {
	Redirect string `json:"redirect"`
}

// @Summary      Checkout redirect
// @Description  Builds the DFX payment page redirect for an order awaiting payment.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body handlers.checkoutPayRequest true "Checkout request"
// @Success      200  {object}  handlers.RespCheckoutPay
// @Router       /api/v1/checkout/pay [post]
func ApiCheckoutPay(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutPayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		redirect, err := svc.BuildPayURL(c.Request.Context(), req.OrderID, req.RedirectURI)
		if err != nil {
			switch {
			case errors.Is(err, order.ErrNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			case errors.Is(err, checkout.ErrGatewayDisabled),
				errors.Is(err, checkout.ErrRouteNotConfigured),
				errors.Is(err, checkout.ErrOrderNotPayable):
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(checkoutPayResponse{Redirect: redirect}))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc *checkout.Service) {
	r.POST("/pay", ApiCheckoutPay(svc))
}
