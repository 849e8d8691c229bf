package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	notificationlog "github.com/DFXswiss/dfx-gateway/internal/app/service/notification_log"
	models "github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/pkg/response"
)

type NotificationLogItem struct {
	ID               string                              `json:"id"`
	ProviderID       string                              `json:"provider_id"`
	TraceID          string                              `json:"trace_id"`
	ExternalID       string                              `json:"external_id"`
	OrderID          *int64                              `json:"order_id"`
	NotificationTime time.Time                           `json:"notification_time"`
	Status           models.PaymentNotificationLogStatus `json:"status"`
	CreatedAt        time.Time                           `json:"created_at"`
}

type ListNotificationLogsResponse struct {
	Items []NotificationLogItem `json:"items"`
	Total int64                 `json:"total"`
}

// @Summary      Scan notification logs
// @Description  Paginated webhook notification log listing for operators.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body notification_log.ScanRequest true "Scan request"
// @Success      200  {object}  handlers.RespListNotificationLogs
// @Router       /api/v1/admin/notification_logs/scan [post]
func ApiScanNotificationLogs(svc *notificationlog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req notificationlog.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		items := lo.Map(res.Items, func(it *models.PaymentNotificationLog, _ int) NotificationLogItem {
			return NotificationLogItem{
				ID:               it.ID,
				ProviderID:       it.ProviderID,
				TraceID:          it.TraceID,
				ExternalID:       it.ExternalID,
				OrderID:          it.OrderID,
				NotificationTime: it.NotificationTime,
				Status:           it.Status,
				CreatedAt:        it.CreatedAt,
			}
		})
		c.JSON(http.StatusOK, response.OKT(ListNotificationLogsResponse{Items: items, Total: res.Total}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, notifSvc *notificationlog.Service) {
	r.POST("/notification_logs/scan", ApiScanNotificationLogs(notifSvc))
}
