package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/model"
	"github.com/iliyamo/lab-resource-booking/internal/queue"
	"github.com/iliyamo/lab-resource-booking/internal/repository"
)

// InventoryHandler serves the consumables inventory (staff only).
// Quantities change exclusively through stock movements; when a
// movement leaves an item at or below its minimum threshold a low-stock
// alert is dispatched to staff.
type InventoryHandler struct {
	Items *repository.InventoryRepo
}

func NewInventoryHandler(i *repository.InventoryRepo) *InventoryHandler {
	return &InventoryHandler{Items: i}
}

type itemReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SKU         string `json:"sku"`
	Unit        string `json:"unit"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity"`
	Location    string `json:"location"`
	PriceCents  uint32 `json:"price_cents"`
}

type itemResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	SKU         string    `json:"sku"`
	Unit        string    `json:"unit"`
	Quantity    int64     `json:"quantity"`
	MinQuantity int64     `json:"min_quantity"`
	Location    string    `json:"location"`
	PriceCents  uint32    `json:"price_cents"`
	LowStock    bool      `json:"low_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toItemResp(it *model.InventoryItem) itemResp {
	return itemResp{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Category:    it.Category,
		SKU:         it.SKU,
		Unit:        it.Unit,
		Quantity:    it.Quantity,
		MinQuantity: it.MinQuantity,
		Location:    it.Location,
		PriceCents:  it.PriceCents,
		LowStock:    it.Quantity <= it.MinQuantity,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// Create registers a new inventory item.
func (h *InventoryHandler) Create(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/sku required"})
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantities must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it := model.InventoryItem{
		Name:        req.Name,
		Description: req.Description,
		Category:    strings.ToUpper(strings.TrimSpace(req.Category)),
		SKU:         req.SKU,
		Unit:        strings.TrimSpace(req.Unit),
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Location:    strings.TrimSpace(req.Location),
		PriceCents:  req.PriceCents,
	}
	if err := h.Items.Create(ctx, &it); err != nil {
		if err == repository.ErrDuplicateSKU {
			return c.JSON(http.StatusConflict, echo.Map{"error": "sku already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create item failed"})
	}
	created, err := h.Items.GetByID(ctx, it.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toItemResp(created))
}

// List returns all items, optionally filtered by ?category=.
func (h *InventoryHandler) List(c echo.Context) error {
	category := strings.ToUpper(strings.TrimSpace(c.QueryParam("category")))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.List(ctx, category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]itemResp, 0, len(items))
	for i := range items {
		out = append(out, toItemResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// LowStock returns items whose quantity sits at or below the restock
// threshold.
func (h *InventoryHandler) LowStock(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.ListLowStock(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]itemResp, 0, len(items))
	for i := range items {
		out = append(out, toItemResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one item.
func (h *InventoryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// Update rewrites an item's descriptive attributes.  Quantity is
// untouched here; stock changes go through Move.
func (h *InventoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/sku required"})
	}
	if req.MinQuantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_quantity must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it := model.InventoryItem{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    strings.ToUpper(strings.TrimSpace(req.Category)),
		SKU:         req.SKU,
		Unit:        strings.TrimSpace(req.Unit),
		MinQuantity: req.MinQuantity,
		Location:    strings.TrimSpace(req.Location),
		PriceCents:  req.PriceCents,
	}
	if err := h.Items.Update(ctx, &it); err != nil {
		switch err {
		case repository.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory item not found"})
		case repository.ErrDuplicateSKU:
			return c.JSON(http.StatusConflict, echo.Map{"error": "sku already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update item failed"})
	}
	updated, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toItemResp(updated))
}

// Delete removes an item and its movement history.
func (h *InventoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id); err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete item failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type movementReq struct {
	Type      string `json:"type"` // IN | OUT | ADJUST
	Quantity  int64  `json:"quantity"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// Move records a stock movement and updates the item quantity
// atomically.  A stock-out that would drive the quantity negative is
// refused with 409; a movement leaving the item at or below its minimum
// raises a low-stock alert to staff.
func (h *InventoryHandler) Move(c echo.Context) error {
	uid := getUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req movementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	mtype := strings.ToUpper(strings.TrimSpace(req.Type))
	switch mtype {
	case model.MovementIn, model.MovementOut:
		if req.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		}
	case model.MovementAdjust:
		if req.Quantity < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must not be negative"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown movement type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m := model.StockMovement{
		ItemID:      id,
		Type:        mtype,
		Quantity:    req.Quantity,
		Reference:   strings.TrimSpace(req.Reference),
		Notes:       req.Notes,
		PerformedBy: uid,
	}
	it, err := h.Items.ApplyMovement(ctx, &m)
	if err != nil {
		switch err {
		case repository.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory item not found"})
		case repository.ErrInsufficientStock:
			return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient stock"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply movement failed"})
	}

	if it.Quantity <= it.MinQuantity {
		notify(queue.NotificationEvent{
			Kind:     model.NotifyInventory,
			Audience: queue.AudienceStaff,
			Title:    "Low stock",
			Message:  fmt.Sprintf("%s (SKU %s) is down to %d %s (minimum %d).", it.Name, it.SKU, it.Quantity, it.Unit, it.MinQuantity),
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{"movement_id": m.ID, "item": toItemResp(it)})
}

// Movements returns an item's movement history, newest first.
func (h *InventoryHandler) Movements(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Items.GetByID(ctx, id); err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "inventory item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	moves, err := h.Items.ListMovements(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]movementResp, 0, len(moves))
	for i := range moves {
		m := &moves[i]
		out = append(out, movementResp{
			ID:          m.ID,
			ItemID:      m.ItemID,
			Type:        m.Type,
			Quantity:    m.Quantity,
			Reference:   m.Reference,
			Notes:       m.Notes,
			PerformedBy: m.PerformedBy,
			CreatedAt:   m.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"item_id": id, "movements": out})
}

type movementResp struct {
	ID          uint64    `json:"id"`
	ItemID      uint64    `json:"item_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Reference   string    `json:"reference,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	PerformedBy uint64    `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
