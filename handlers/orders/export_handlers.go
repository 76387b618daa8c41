package orders

import (
	"log"
	"net/http"

	"api/middleware"
	"api/utils"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// ExportOrders streams the user's order history as an XLSX report
// @Summary Export my orders
// @Description Download an XLSX workbook of the authenticated user's orders with per-order profit
// @Tags Orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} map[string]string
// @Router /orders/export [get]
// @Security Bearer
func ExportOrders(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	orders, err := svc.ListOrders(user)
	if err != nil {
		log.Printf("Error fetching orders for export: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrExportFailed)
		return
	}

	report, err := utils.BuildOrderReport(orders, gameConfig)
	if err != nil {
		log.Printf("Error building order report: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrExportFailed)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := report.Write(c.Writer); err != nil {
		log.Printf("Error streaming order report: %v", err)
	}
}
