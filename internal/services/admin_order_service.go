package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"

	"github.com/samber/lo"
)

// OrderList is the admin view of orders.csv
type OrderList struct {
	Orders []models.AdminOrder        `json:"orders"`
	Counts map[models.AdminStatus]int `json:"counts"`
	Total  int                        `json:"total"`
}

// AdminOrderService manages the order records in orders.csv
type AdminOrderService struct {
	store database.TableStore
	now   func() time.Time
}

// NewAdminOrderService creates a new admin order service
func NewAdminOrderService(store database.TableStore) *AdminOrderService {
	return &AdminOrderService{store: store, now: time.Now}
}

func (s *AdminOrderService) load() (*database.OrderTable, error) {
	content, err := s.store.ReadRaw(database.FileOrders)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	table, err := database.ParseOrderTable(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse orders: %w", err)
	}
	return table, nil
}

func (s *AdminOrderService) write(table *database.OrderTable) (*database.WriteResult, error) {
	return s.store.WriteRaw(database.FileOrders, table.String())
}

func (s *AdminOrderService) append(rec database.OrderRecord) (*database.WriteResult, error) {
	table, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, err := table.Find(rec.OrderID); err == nil {
		return nil, validationError("Order %s already exists", rec.OrderID)
	}
	table.Append(rec)

	result, err := s.write(table)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Order added: %s for user: %s", rec.OrderID, rec.UserID)
	return result, nil
}

func encodeItems(items []models.StoredItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode order items: %w", err)
	}
	return string(data), nil
}

// AddOrder appends a shopper's order as a new pending record
func (s *AdminOrderService) AddOrder(order *models.Order) (*database.WriteResult, error) {
	if order == nil || strings.TrimSpace(order.OrderID) == "" {
		return nil, validationError("order with orderId is required")
	}

	items := make([]models.StoredItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.StoredItem{
			Product: models.StoredItemProduct{
				ProductID:   item.Product.ProductID,
				ProductName: item.Product.ProductName,
				Price:       item.Product.Price,
				Thumbnail:   item.Product.Thumbnail,
			},
			Quantity:      item.Quantity,
			SelectedColor: item.SelectedColor,
			SelectedSize:  item.SelectedSize,
		})
	}
	itemsJSON, err := encodeItems(items)
	if err != nil {
		return nil, err
	}

	status := string(order.Status)
	if status == "" {
		status = string(models.OrderStatusPending)
	}

	return s.append(database.OrderRecord{
		UserID:          order.UserID,
		OrderID:         order.OrderID,
		OrderDate:       order.OrderDate,
		FirstName:       order.Customer.FirstName,
		LastName:        order.Customer.LastName,
		Email:           order.Customer.Email,
		Phone:           order.Customer.Phone,
		ShippingAddress: order.ShippingAddress.Address1,
		ItemsJSON:       itemsJSON,
		Subtotal:        order.Subtotal.String(),
		Tax:             order.Tax.String(),
		Shipping:        order.Shipping.String(),
		Discount:        order.Discount.String(),
		Total:           order.Total.String(),
		ShippingMethod:  order.ShippingMethod.ShippingName,
		PaymentMethod:   order.PaymentMethod,
		OrderNotes:      order.OrderNotes,
		Status:          status,
		AdminStatus:     string(models.AdminStatusPending),
		DiscountCode:    order.DiscountCode,
	})
}

// Import appends an order re-entered from a relay payload
func (s *AdminOrderService) Import(imp *models.OrderImport) (*database.WriteResult, error) {
	if err := utils.ValidateStruct(imp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	adminStatus := imp.AdminStatus
	if adminStatus == "" {
		adminStatus = models.AdminStatusPending
	}
	if !adminStatus.IsValid() {
		return nil, validationError("unknown admin status %q", adminStatus)
	}

	itemsJSON, err := encodeItems(imp.StoredItems())
	if err != nil {
		return nil, err
	}

	orderDate := imp.OrderDate
	if orderDate == "" {
		orderDate = s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	}

	return s.append(database.OrderRecord{
		UserID:          imp.UserID,
		OrderID:         imp.OrderID,
		OrderDate:       orderDate,
		FirstName:       imp.FirstName,
		LastName:        imp.LastName,
		Email:           imp.Email,
		Phone:           imp.Phone,
		ShippingAddress: imp.ShippingAddress,
		ItemsJSON:       itemsJSON,
		Subtotal:        imp.Subtotal.String(),
		Tax:             imp.Tax.String(),
		Shipping:        imp.Shipping.String(),
		Discount:        imp.Discount.String(),
		Total:           imp.Total.String(),
		ShippingMethod:  imp.ShippingMethod,
		PaymentMethod:   imp.PaymentMethod,
		OrderNotes:      utils.CleanText(imp.OrderNotes),
		Status:          string(models.OrderStatusPending),
		AdminStatus:     string(adminStatus),
		AdminComment:    utils.CleanText(imp.AdminComment),
		DiscountCode:    imp.DiscountCode,
	})
}

// ByUser returns the records of one user in file order
func (s *AdminOrderService) ByUser(userID string) ([]database.OrderRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationError("userId is required")
	}
	table, err := s.load()
	if err != nil {
		return nil, err
	}
	orders := table.FilterByUser(userID)
	log.Printf("📦 Fetched %d orders for user: %s", len(orders), userID)
	return orders, nil
}

// AdminOrderFromRecord decodes the amounts and item list of a record.
// Unreadable item JSON leaves the list empty and keeps the raw text.
func AdminOrderFromRecord(rec database.OrderRecord) models.AdminOrder {
	order := models.AdminOrder{
		UserID:    rec.UserID,
		OrderID:   rec.OrderID,
		OrderDate: rec.OrderDate,
		Customer: models.Customer{
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Email:     rec.Email,
			Phone:     rec.Phone,
		},
		ShippingAddress: rec.ShippingAddress,
		Items:           []models.StoredItem{},
		Subtotal:        database.ParseDecimal(rec.Subtotal),
		Tax:             database.ParseDecimal(rec.Tax),
		Shipping:        database.ParseDecimal(rec.Shipping),
		Discount:        database.ParseDecimal(rec.Discount),
		Total:           database.ParseDecimal(rec.Total),
		ShippingMethod:  rec.ShippingMethod,
		PaymentMethod:   rec.PaymentMethod,
		OrderNotes:      rec.OrderNotes,
		Status:          rec.Status,
		AdminStatus:     models.AdminStatus(rec.AdminStatus),
		AdminComment:    rec.AdminComment,
		DiscountCode:    rec.DiscountCode,
	}
	if order.AdminStatus == "" {
		order.AdminStatus = models.AdminStatusPending
	}
	if strings.TrimSpace(rec.ItemsJSON) != "" {
		if err := json.Unmarshal([]byte(rec.ItemsJSON), &order.Items); err != nil {
			order.Items = []models.StoredItem{}
			order.ItemsJSON = rec.ItemsJSON
		}
	}
	return order
}

// List returns orders newest first, optionally only those with one admin
// status, with counts per status over all orders.
func (s *AdminOrderService) List(status string) (*OrderList, error) {
	table, err := s.load()
	if err != nil {
		return nil, err
	}

	all := lo.Map(table.Records(), func(rec database.OrderRecord, _ int) models.AdminOrder {
		return AdminOrderFromRecord(rec)
	})
	counts := make(map[models.AdminStatus]int, len(models.AdminStatuses))
	for _, st := range models.AdminStatuses {
		counts[st] = 0
	}
	for _, o := range all {
		counts[o.AdminStatus]++
	}

	orders := all
	if status = strings.TrimSpace(status); status != "" && status != "all" {
		orders = lo.Filter(all, func(o models.AdminOrder, _ int) bool { return string(o.AdminStatus) == status })
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return models.ParseLooseTime(orders[i].OrderDate).After(models.ParseLooseTime(orders[j].OrderDate))
	})

	return &OrderList{Orders: orders, Counts: counts, Total: len(all)}, nil
}

// UpdateStatus sets the admin status and comment of one order. Only those
// two fields of that record change in the file.
func (s *AdminOrderService) UpdateStatus(orderID, status, comment string) (*database.WriteResult, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, validationError("orderId is required")
	}
	if !models.AdminStatus(status).IsValid() {
		return nil, validationError("status must be one of %s", strings.Join(lo.Map(models.AdminStatuses, func(st models.AdminStatus, _ int) string {
			return string(st)
		}), ", "))
	}

	table, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := table.UpdateStatus(orderID, status, utils.CleanText(comment)); err != nil {
		return nil, err
	}

	result, err := s.write(table)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Order status updated: %s -> %s", orderID, status)
	return result, nil
}

// Delete removes one order record
func (s *AdminOrderService) Delete(orderID string) (*database.WriteResult, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, validationError("orderId is required")
	}

	table, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := table.Delete(orderID); err != nil {
		return nil, err
	}

	result, err := s.write(table)
	if err != nil {
		return nil, err
	}
	log.Printf("🗑️ Order deleted: %s", orderID)
	return result, nil
}
