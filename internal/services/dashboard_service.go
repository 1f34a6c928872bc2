package services

import (
	"log"

	"storefront-backend/internal/models"

	"github.com/samber/lo"
)

// DashboardStats summarizes the store for the admin dashboard
type DashboardStats struct {
	Products        int                        `json:"products"`
	Categories      int                        `json:"categories"`
	Discounts       int                        `json:"discounts"`
	ShippingMethods int                        `json:"shippingMethods"`
	LowStock        int                        `json:"lowStock"`
	OutOfStock      int                        `json:"outOfStock"`
	Orders          int                        `json:"orders"`
	OrdersByStatus  map[models.AdminStatus]int `json:"ordersByStatus"`
	StoreName       string                     `json:"storeName"`
}

// DashboardService aggregates counts over the catalog and order tables
type DashboardService struct {
	catalog *CatalogService
	orders  *AdminOrderService
	config  *ConfigService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(catalog *CatalogService, orders *AdminOrderService, config *ConfigService) *DashboardService {
	return &DashboardService{catalog: catalog, orders: orders, config: config}
}

// Stats counts table rows and stock levels. Order counts are best effort.
func (s *DashboardService) Stats() (*DashboardStats, error) {
	products, err := s.catalog.Products()
	if err != nil {
		return nil, err
	}
	categories, err := s.catalog.Categories()
	if err != nil {
		return nil, err
	}
	discounts, err := s.catalog.Discounts()
	if err != nil {
		return nil, err
	}
	shipping, err := s.catalog.ShippingRules()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Products:        len(products),
		Categories:      len(categories),
		Discounts:       len(discounts),
		ShippingMethods: len(shipping),
		LowStock: lo.CountBy(products, func(p *models.Product) bool {
			return p.StockStatus() == models.StockStatusLow
		}),
		OutOfStock: lo.CountBy(products, func(p *models.Product) bool {
			return p.StockStatus() == models.StockStatusOut
		}),
		OrdersByStatus: map[models.AdminStatus]int{},
		StoreName:      s.config.StoreConfig().StoreName,
	}

	if list, err := s.orders.List(""); err != nil {
		log.Printf("⚠️ Dashboard could not load orders: %v", err)
	} else {
		stats.Orders = list.Total
		stats.OrdersByStatus = list.Counts
	}
	return stats, nil
}
