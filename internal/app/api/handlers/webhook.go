package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	websvc "github.com/DFXswiss/dfx-gateway/internal/app/service/webhook"
	"github.com/DFXswiss/dfx-gateway/pkg/logctx"
	"github.com/DFXswiss/dfx-gateway/pkg/response"
)

// signatureHeader carries the base64 signature over the exact raw body bytes.
const signatureHeader = "X-Payload-Signature"

// maxWebhookBody caps the payload we are willing to read; real notifications
// are a few hundred bytes.
const maxWebhookBody = 1 << 20

// @Summary      DFX Webhook
// @Description  Handles payment status notifications from DFX. The body is raw JSON signed via the X-Payload-Signature header.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        X-Payload-Signature header string true "Base64 RSA signature over the raw body"
// @Success      200  {object}  handlers.RespOK
// @Failure      400  {object}  handlers.RespOK
// @Failure      401  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/gateway/dfx/webhook [post]
// ApiDFXWebhook handles DFX payment notifications.
func ApiDFXWebhook(h *websvc.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromGin(c, h.Logger).Infow("webhook_dfx_received")

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "unreadable body"))
			return
		}

		out := h.Handle(c.Request.Context(), &websvc.Request{
			Body:       body,
			Signature:  c.GetHeader(signatureHeader),
			ReceivedAt: time.Now(),
		})

		// minimal acknowledgement only; diagnostic detail stays in the logs
		if out.Accepted() {
			c.JSON(out.HTTPStatus(), response.OKT(map[string]string{"status": string(out.Kind)}))
			return
		}
		code := response.APIResponseCodeError
		if out.HTTPStatus() < http.StatusInternalServerError {
			code = response.APIResponseCodeBadRequest
		}
		c.JSON(out.HTTPStatus(), response.ErrorT[any](code, string(out.Kind)))
	}
}

func RegisterGatewayRoutes(r gin.IRouter, h *websvc.Handler) {
	// Mount under provided group, expected at "/api/gateway/dfx"
	r.POST("/webhook", ApiDFXWebhook(h))
}
