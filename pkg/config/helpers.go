package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
)

// SetValue sets a configuration value by key. List values are comma
// separated. The result is validated; on error the config is unchanged.
// Supported keys are the yaml keys of Settings (see Keys).
func (c *Config) SetValue(key, value string) error {
	updated := *c
	s := &updated.Settings

	switch key {
	case "output_format":
		s.OutputFormat = value
	case "log_level":
		s.LogLevel = value
	case "log_format":
		s.LogFormat = value
	case "no_color":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		s.NoColor = boolVal
	case "cache_dir":
		s.CacheDir = value
	case "tool_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		s.ToolTimeout = d
	case "encoding":
		s.Encoding = value
	case "sources":
		s.Sources = splitList(value)
	case "scan_packages":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		s.ScanPackages = boolVal
	case "pyenv_root":
		s.PyenvRoot = value
	case "pipx_home":
		s.PipxHome = value
	case "conda_command":
		s.CondaCommand = value
	case "conda_roots":
		s.CondaRoots = splitList(value)
	default:
		return errors.Wrapf(errors.ErrUnknownConfigKey, "%s", key)
	}

	if err := updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}

// GetValue returns a configuration value by key as a string.
func (c *Config) GetValue(key string) (string, error) {
	values := c.ToMap()
	value, ok := values[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrUnknownConfigKey, "%s", key)
	}
	return value, nil
}

// Keys returns the supported configuration keys, sorted.
func (c *Config) Keys() []string {
	values := c.ToMap()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap returns the settings keyed by their yaml names.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "cache_dir,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		var strValue string

		switch v := fieldValue.Interface().(type) {
		case time.Duration:
			strValue = v.String()
		case []string:
			strValue = strings.Join(v, ",")
		case bool:
			strValue = strconv.FormatBool(v)
		case string:
			strValue = v
		default:
			strValue = fmt.Sprintf("%v", v)
		}

		result[yamlKey] = strValue
	}

	return result
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
