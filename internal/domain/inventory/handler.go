package inventory

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hivcare/emr/internal/platform/auth"
	"github.com/hivcare/emr/internal/platform/validation"
	"github.com/hivcare/emr/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/inventory", auth.RequireRole(auth.RolePharmacist, auth.RoleClinician, auth.RoleNurse))
	read.GET("/items", h.ListStockItems)
	read.GET("/items/:id", h.GetStockItem)
	read.GET("/items/:id/adjustments", h.ListAdjustments)

	write := api.Group("/inventory", auth.RequireRole(auth.RolePharmacist))
	write.POST("/items", h.CreateStockItem)
	write.PUT("/items/:id", h.UpdateStockItem)
	write.DELETE("/items/:id", h.DeleteStockItem)
	write.POST("/items/:id/adjustments", h.AdjustStock)
}

type stockItemRequest struct {
	DrugName     string  `json:"drug_name" validate:"required,max=200"`
	DrugCode     *string `json:"drug_code" validate:"omitempty,max=64"`
	BatchNumber  *string `json:"batch_number" validate:"omitempty,max=64"`
	Unit         string  `json:"unit" validate:"max=32"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	ReorderLevel int     `json:"reorder_level" validate:"gte=0"`
	// ExpiryDate is YYYY-MM-DD.
	ExpiryDate string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r stockItemRequest) toItem() *StockItem {
	item := &StockItem{
		DrugName:     r.DrugName,
		DrugCode:     r.DrugCode,
		BatchNumber:  r.BatchNumber,
		Unit:         r.Unit,
		Quantity:     r.Quantity,
		ReorderLevel: r.ReorderLevel,
	}
	if r.ExpiryDate != "" {
		if d, err := time.Parse("2006-01-02", r.ExpiryDate); err == nil {
			item.ExpiryDate = &d
		}
	}
	return item
}

type adjustmentRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,oneof=received dispensed expired damaged returned count_correction"`
}

type stockItemResponse struct {
	*StockItem
	StockStatus  string `json:"stock_status"`
	ExpiryStatus string `json:"expiry_status,omitempty"`
}

func (h *Handler) view(item *StockItem) stockItemResponse {
	return stockItemResponse{
		StockItem:    item,
		StockStatus:  StockStatus(item.Quantity, item.ReorderLevel),
		ExpiryStatus: ExpiryStatus(item.ExpiryDate, h.svc.Now()),
	}
}

func bindValid(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validation.Message(err))
	}
	return nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
	case errors.Is(err, ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) CreateStockItem(c echo.Context) error {
	var req stockItemRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	item := req.toItem()
	if err := h.svc.CreateStockItem(c.Request().Context(), item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, h.view(item))
}

func (h *Handler) GetStockItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.svc.GetStockItem(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.view(item))
}

func (h *Handler) ListStockItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"name":          c.QueryParam("name"),
		"code":          c.QueryParam("code"),
		"batch":         c.QueryParam("batch"),
		"stock_status":  c.QueryParam("stock_status"),
		"expiry_status": c.QueryParam("expiry_status"),
	}
	items, total, err := h.svc.SearchStockItems(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out := make([]stockItemResponse, len(items))
	for i, item := range items {
		out[i] = h.view(item)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStockItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req stockItemRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	item := req.toItem()
	item.ID = id
	if err := h.svc.UpdateStockItem(c.Request().Context(), item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.view(item))
}

func (h *Handler) DeleteStockItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteStockItem(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AdjustStock(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req adjustmentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	a := &Adjustment{
		ItemID:      id,
		Delta:       req.Delta,
		Reason:      req.Reason,
		PerformedBy: auth.UserIDFromContext(c.Request().Context()),
	}
	item, err := h.svc.AdjustStock(c.Request().Context(), a)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"item":       h.view(item),
		"adjustment": a,
	})
}

func (h *Handler) ListAdjustments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAdjustments(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
