package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SettingType drives how a setting value is coerced when read
type SettingType string

const (
	SettingTypeText     SettingType = "text"
	SettingTypeLongText SettingType = "longtext"
	SettingTypeBoolean  SettingType = "boolean"
	SettingTypeNumber   SettingType = "number"
	SettingTypeColor    SettingType = "color"
	SettingTypePath     SettingType = "path"
	SettingTypeURL      SettingType = "url"
	SettingTypeEmail    SettingType = "email"
	SettingTypePhone    SettingType = "phone"
	SettingTypeSelect   SettingType = "select"
)

// Setting is one row of config.csv. Value is always stored as a string.
type Setting struct {
	Key         string      `json:"key" yaml:"key"`
	Value       string      `json:"value" yaml:"value"`
	Type        SettingType `json:"type" yaml:"type"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// Notification channels for relaying orders
const (
	NotifyWhatsApp = "whatsapp"
	NotifyEmail    = "email"
)

// StoreConfig is the typed store configuration consumed by the storefront.
type StoreConfig struct {
	StoreName               string          `json:"storeName"`
	StoreTagline            string          `json:"storeTagline"`
	StoreEmail              string          `json:"storeEmail"`
	StorePhone              string          `json:"storePhone"`
	WhatsAppNumber          string          `json:"whatsappNumber"`
	StoreAddress            string          `json:"storeAddress"`
	CurrencyCode            string          `json:"currencyCode"`
	CurrencySymbol          string          `json:"currencySymbol"`
	TaxRate                 decimal.Decimal `json:"taxRate"`
	EnableTax               bool            `json:"enableTax"`
	ShippingEnabled         bool            `json:"shippingEnabled"`
	PrimaryColor            string          `json:"primaryColor"`
	SecondaryColor          string          `json:"secondaryColor"`
	LogoPath                string          `json:"logoPath"`
	FaviconPath             string          `json:"faviconPath"`
	BannerImage             string          `json:"bannerImage"`
	BannerTitle             string          `json:"bannerTitle"`
	BannerSubtitle          string          `json:"bannerSubtitle"`
	BannerCtaText           string          `json:"bannerCtaText"`
	BannerCtaLink           string          `json:"bannerCtaLink"`
	EnableSearch            bool            `json:"enableSearch"`
	EnableFilters           bool            `json:"enableFilters"`
	EnableWishlist          bool            `json:"enableWishlist"`
	ProductsPerPage         int             `json:"productsPerPage"`
	OrderNotificationMethod string          `json:"orderNotificationMethod"`
	FacebookURL             string          `json:"facebookUrl"`
	InstagramURL            string          `json:"instagramUrl"`
	TwitterURL              string          `json:"twitterUrl"`
	AboutUs                 string          `json:"aboutUs"`
	ReturnPolicy            string          `json:"returnPolicy"`
	PrivacyPolicy           string          `json:"privacyPolicy"`
	TermsConditions         string          `json:"termsConditions"`
	FooterText              string          `json:"footerText"`
	EnableNewsletter        bool            `json:"enableNewsletter"`
	NewsletterText          string          `json:"newsletterText"`
	GoogleAnalyticsID       string          `json:"googleAnalyticsId"`
	MaintenanceMode         bool            `json:"maintenanceMode"`
}

// DefaultStoreConfig is used for every setting the config table omits.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		StoreName:               "Amazing Shop",
		StoreTagline:            "Quality Products at Great Prices",
		CurrencyCode:            "USD",
		CurrencySymbol:          "$",
		TaxRate:                 decimal.Zero,
		EnableTax:               false,
		ShippingEnabled:         true,
		PrimaryColor:            "#2563eb",
		SecondaryColor:          "#7c3aed",
		EnableSearch:            true,
		EnableFilters:           true,
		ProductsPerPage:         12,
		OrderNotificationMethod: NotifyWhatsApp,
		MaintenanceMode:         false,
	}
}

// NotificationChannel returns the relay channel, whatsapp unless email is set.
func (c *StoreConfig) NotificationChannel() string {
	if c.OrderNotificationMethod == NotifyEmail {
		return NotifyEmail
	}
	return NotifyWhatsApp
}

// storeConfigKinds maps each StoreConfig json key to its field kind.
var storeConfigKinds = func() map[string]reflect.Kind {
	t := reflect.TypeOf(StoreConfig{})
	kinds := make(map[string]reflect.Kind, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		kinds[f.Tag.Get("json")] = f.Type.Kind()
	}
	return kinds
}()

// coerceSetting converts a typed setting value to the shape its field
// expects: numbers and booleans become text for string fields, text is
// read leniently for boolean and integer fields.
func coerceSetting(kind reflect.Kind, v any) any {
	switch kind {
	case reflect.String:
		switch x := v.(type) {
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(x)
		}
	case reflect.Bool:
		switch x := v.(type) {
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true", "1", "yes":
				return true
			case "false", "0", "no", "":
				return false
			}
		case float64:
			return x != 0
		}
	case reflect.Int:
		switch x := v.(type) {
		case float64:
			return int(x)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
				return n
			}
		}
	}
	return v
}

// StoreConfigFromSettings overlays typed settings (camelCase keys) on the
// defaults, one key at a time. A value that cannot be coerced to its field
// keeps that field's default and is reported in the returned error; every
// other setting still applies. Keys the struct does not know are ignored
// here; they remain available through the raw settings map.
func StoreConfigFromSettings(settings map[string]any) (StoreConfig, error) {
	cfg := DefaultStoreConfig()

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		kind, known := storeConfigKinds[key]
		if !known {
			continue
		}
		data, err := json.Marshal(map[string]any{key: coerceSetting(kind, settings[key])})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode setting %s: %w", key, err))
			continue
		}
		// A mismatched value leaves the field untouched.
		if err := json.Unmarshal(data, &cfg); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for setting %s: %w", key, err))
		}
	}
	return cfg, errors.Join(errs...)
}
