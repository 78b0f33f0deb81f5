// Package docs holds the swagger description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/rounds/{roundID}/recalculate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rounds"],
                "summary": "Recalculate a round",
                "parameters": [{"type": "integer", "name": "roundID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}, "409": {"description": "Recalculation in progress"}, "503": {"description": "Retry later"}}
            }
        },
        "/rounds/{roundID}/predictions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["predictions"],
                "summary": "Submit guesses for a round",
                "parameters": [{"type": "integer", "name": "roundID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}, "422": {"description": "Rejected"}}
            }
        },
        "/predictions/copy-limit/check": {
            "post": {
                "tags": ["predictions"],
                "summary": "Check two guess sets against the copy limit",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/championships/{championshipID}/standings": {
            "get": {
                "tags": ["standings"],
                "summary": "League table and group tables",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/championships/{championshipID}/groups/draw": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["brackets"],
                "summary": "Draw the group stage",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/championships/{championshipID}/groups/fixtures": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["brackets"],
                "summary": "Create the round-robin duels of every group",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/championships/{championshipID}/knockout/from-groups": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["brackets"],
                "summary": "Seed the knockout from the group tables",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/championships/{championshipID}/knockout/direct": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["brackets"],
                "summary": "Draw a knockout from all active participants",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/championships/{championshipID}/knockout/advance": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["brackets"],
                "summary": "Pair the winners of the latest knockout round",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/championships/{championshipID}/return-legs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["brackets"],
                "summary": "Mirror every first-leg round with duels",
                "parameters": [{"type": "integer", "name": "championshipID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "412": {"description": "Precondition Failed"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PalpitArena API",
	Description:      "Scoring, standings and bracket engine for a prediction league.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
