package controllers

import (
	"net/http"

	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// GetInfoController : GetInfoController struct
type GetInfoController struct {
	svc *service.FactorhubService
}

func NewGetInfoController(svc *service.FactorhubService) *GetInfoController {
	return &GetInfoController{svc: svc}
}

type GetInfoResponseBody struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	FeeRateBps         int64  `json:"fee_rate_bps"`
	PenaltyRateBps     int64  `json:"penalty_rate_bps"`
	GracePeriodSeconds int64  `json:"grace_period_seconds"`
}

// GetInfo godoc
// @Summary      Platform configuration
// @Description  Returns the deployment's fee, penalty and grace period configuration
// @Produce      json
// @Tags         Info
// @Success      200  {object}  GetInfoResponseBody
// @Router       /info [get]
func (controller *GetInfoController) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, &GetInfoResponseBody{
		Title:              controller.svc.Config.Branding.Title,
		Description:        controller.svc.Config.Branding.Desc,
		FeeRateBps:         controller.svc.Config.FeeRateBps,
		PenaltyRateBps:     controller.svc.Config.PenaltyRateBps,
		GracePeriodSeconds: controller.svc.Config.GracePeriodSeconds,
	})
}

// Health godoc
// @Summary      Health check
// @Produce      json
// @Tags         Info
// @Success      200
// @Router       /healthz [get]
func (controller *GetInfoController) Health(c echo.Context) error {
	if err := controller.svc.DB.Ping(); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
