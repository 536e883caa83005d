// Package docs registers the OpenAPI description of the local status API
// with swag so gin-swagger can serve it under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    }
                }
            }
        },
        "/api/v1/thermostat/state": {
            "get": {
                "description": "Last-known snapshot left by the control loop. Before the first cycle the heater is reported OFF with the default target.",
                "produces": ["application/json"],
                "tags": ["thermostat"],
                "summary": "Get thermostat state",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/models.ThermostatState"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {"type": "string"}
                        }
                    }
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a WebSocket and pushes {\"type\":\"state\",\"data\":...} frames every interval (default 1s, max 10s).",
                "tags": ["thermostat"],
                "summary": "Stream thermostat state",
                "parameters": [
                    {"type": "string", "description": "Go duration, e.g. 2s", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Interval in milliseconds", "name": "interval_ms", "in": "query"}
                ],
                "responses": {}
            }
        }
    },
    "definitions": {
        "models.ThermostatState": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "thermostat_id": {"type": "string"},
                "current_temp_c": {"type": "number"},
                "sensor_ok": {"type": "boolean"},
                "target_temp_c": {"type": "number"},
                "heater_on": {"type": "boolean"},
                "program_points": {"type": "integer"},
                "cycle_id": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "thermoclient status API",
	Description:      "Read-only view of the thermostat control daemon.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
