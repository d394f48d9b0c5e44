package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP。会員専用。
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CheckoutRequest struct {
	UseCurrentAddress bool   `json:"use_current_address"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	CityID            int64  `json:"city_id"`
	LineOne           string `json:"line_one"`
	LineTwo           string `json:"line_two"`
	PostalCode        string `json:"postal_code"`
	Mobile            string `json:"mobile"`
	OrderNotes        string `json:"order_notes"`
}

// チェックアウト失敗はHTTPエラーではなく status:false で返す（決済フォーム側の約束）
type CheckoutFailResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/cities", h.listCities)

	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("", h.checkout)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, CheckoutFailResponse{
			Status:  false,
			Message: "Session expired! Please log in again",
		})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, CheckoutFailResponse{
			Status:  false,
			Message: "invalid body",
		})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		UseCurrentAddress: req.UseCurrentAddress,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		CityID:            req.CityID,
		LineOne:           req.LineOne,
		LineTwo:           req.LineTwo,
		PostalCode:        req.PostalCode,
		Mobile:            req.Mobile,
		OrderNotes:        req.OrderNotes,
	})
	if err != nil {
		if he, ok := usecase.AsHTTPError(err); ok {
			return c.JSON(he.Status, CheckoutFailResponse{Status: false, Message: he.Message})
		}
		return c.JSON(http.StatusInternalServerError, CheckoutFailResponse{
			Status:  false,
			Message: "internal error",
		})
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) listCities(c echo.Context) error {
	cities, err := h.uc.ListCities(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cities)
}
