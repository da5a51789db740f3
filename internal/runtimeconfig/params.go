package runtimeconfig

import (
	"strings"

	"github.com/goliatone/go-sheet-import/internal/tabular"
)

// Host parameter keys, as stored by the plugin's configuration screens.
const (
	ParamCMAToken          = "cmaToken"
	ParamEnvironment       = "environment"
	ParamBaseURL           = "baseUrl"
	ParamSourceFileAPIKey  = "sourceFileApiKey"
	ParamColumnsMetaAPIKey = "columnsMetaApiKey"
	ParamRowCountAPIKey    = "rowCountApiKey"
	ParamPayloadShape      = "payloadShape"
)

// WithHostParameters overlays host-provided parameter maps onto the config.
// Plugin-level parameters carry the CMA binding; field-level parameters carry
// the sibling api keys, read from the direct extension parameters first and
// the field appearance parameters as fallback. Blank entries leave the
// existing value untouched.
func (c Config) WithHostParameters(plugin, field, appearance map[string]any) Config {
	if value := paramString(plugin, ParamCMAToken); value != "" {
		c.CMA.Token = value
	}
	if value := paramString(plugin, ParamEnvironment); value != "" {
		c.CMA.Environment = value
	}
	if value := paramString(plugin, ParamBaseURL); value != "" {
		c.CMA.BaseURL = value
	}

	if value := fieldParam(field, appearance, ParamSourceFileAPIKey); value != "" {
		c.Fields.SourceFileAPIKey = value
	}
	if value := fieldParam(field, appearance, ParamColumnsMetaAPIKey); value != "" {
		c.Fields.ColumnsMetaAPIKey = value
	}
	if value := fieldParam(field, appearance, ParamRowCountAPIKey); value != "" {
		c.Fields.RowCountAPIKey = value
	}
	if value := fieldParam(field, appearance, ParamPayloadShape); value != "" {
		c.Payload.Shape = shapeFromString(value, c.Payload.Shape)
	}
	return c
}

func shapeFromString(value string, fallback tabular.Shape) tabular.Shape {
	shape := tabular.Shape(strings.ToLower(value))
	if shape.Valid() {
		return shape
	}
	return fallback
}

func fieldParam(field, appearance map[string]any, key string) string {
	if value := paramString(field, key); value != "" {
		return value
	}
	return paramString(appearance, key)
}

func paramString(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	value, ok := params[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
