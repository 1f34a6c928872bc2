package services

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"storefront-backend/database"
	"storefront-backend/internal/models"
)

var snakeSegment = regexp.MustCompile(`_([a-z])`)

// CamelCase converts a snake_case setting key to camelCase.
func CamelCase(key string) string {
	return snakeSegment.ReplaceAllStringFunc(key, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

// SettingFromRow reads a config row under either naming convention.
func SettingFromRow(row database.Row) models.Setting {
	return models.Setting{
		Key:         row.First("setting_key", "key"),
		Value:       row.First("setting_value", "value"),
		Type:        models.SettingType(strings.ToLower(row.First("setting_type", "type"))),
		Description: row.First("description"),
	}
}

// ResolveSettings joins setting keys to their raw string values. Later rows
// win over earlier ones with the same key; rows without a key are skipped.
func ResolveSettings(rows []database.Row) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		s := SettingFromRow(row)
		if s.Key == "" {
			continue
		}
		out[s.Key] = s.Value
	}
	return out
}

// TypedSettings coerces each value by its declared type and converts keys
// to camelCase. Unknown types pass through as strings; numbers that do not
// parse are dropped so the default applies.
func TypedSettings(rows []database.Row) map[string]any {
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		s := SettingFromRow(row)
		if s.Key == "" {
			continue
		}
		key := CamelCase(s.Key)

		switch s.Type {
		case models.SettingTypeBoolean:
			out[key] = database.ParseBool(s.Value)
		case models.SettingTypeNumber:
			f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
			if err != nil {
				log.Printf("⚠️ Setting %s has non-numeric value %q, using default", s.Key, s.Value)
				continue
			}
			out[key] = f
		default:
			out[key] = s.Value
		}
	}
	return out
}

// ConfigService resolves store settings from config.csv
type ConfigService struct {
	cache *TableCache
}

// NewConfigService creates a new config service
func NewConfigService(cache *TableCache) *ConfigService {
	return &ConfigService{cache: cache}
}

// Settings returns the config rows as settings, in table order
func (s *ConfigService) Settings() ([]models.Setting, error) {
	table, err := s.cache.Load(database.FileConfig)
	if err != nil {
		return nil, err
	}
	settings := make([]models.Setting, 0, len(table.Rows))
	for _, row := range table.Rows {
		if setting := SettingFromRow(row); setting.Key != "" {
			settings = append(settings, setting)
		}
	}
	return settings, nil
}

// Raw returns the untyped key to value map
func (s *ConfigService) Raw() (map[string]string, error) {
	table, err := s.cache.Load(database.FileConfig)
	if err != nil {
		return nil, err
	}
	return ResolveSettings(table.Rows), nil
}

// Typed returns the coerced settings, including keys StoreConfig does not know
func (s *ConfigService) Typed() (map[string]any, error) {
	table, err := s.cache.Load(database.FileConfig)
	if err != nil {
		return nil, err
	}
	return TypedSettings(table.Rows), nil
}

// StoreConfig never fails: an unreadable or malformed config table yields
// the defaults so the storefront can always render.
func (s *ConfigService) StoreConfig() models.StoreConfig {
	settings, err := s.Typed()
	if err != nil {
		log.Printf("⚠️ Failed to load store config, using defaults: %v", err)
		return models.DefaultStoreConfig()
	}
	cfg, err := models.StoreConfigFromSettings(settings)
	if err != nil {
		log.Printf("⚠️ Some store settings are invalid and use their defaults: %v", err)
	}
	return cfg
}
