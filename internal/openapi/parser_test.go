package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RejectsMissingVersion(t *testing.T) {
	res := Parse(`{"info": {"title": "No Version"}}`)
	require.False(t, res.Success())
	assert.Contains(t, res.Errors[0].Error(), "Swagger 2.0")
}

func TestParse_RejectsNon3xVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Swagger2", "2.0"},
		{"Hypothetical4", "4.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(`{"openapi": "` + tt.version + `", "info": {"title": "x"}, "paths": {}}`)
			require.False(t, res.Success())
			assert.Equal(t, "openapi", res.Errors[0].Path)
			assert.Contains(t, res.Errors[0].Message, "unsupported version")
		})
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "{not json", "just: [unbalanced"} {
		res := Parse(input)
		assert.False(t, res.Success(), "input %q", input)
	}
}

func TestParse_AcceptsJSONAndYAML(t *testing.T) {
	jsonDoc := `{
		"openapi": "3.0.3",
		"info": {"title": "Tiny", "version": "2.1.0", "description": "A tiny API"},
		"servers": [{"url": "https://api.example.com/"}],
		"paths": {"/things": {"get": {"operationId": "listThings", "responses": {"200": {"description": "ok"}}}}}
	}`
	yamlDoc := `
openapi: 3.0.3
info:
  title: Tiny
  version: 2.1.0
  description: A tiny API
servers:
  - url: https://api.example.com/
paths:
  /things:
    get:
      operationId: listThings
      responses:
        "200":
          description: ok
`

	for name, doc := range map[string]string{"JSON": jsonDoc, "YAML": yamlDoc} {
		t.Run(name, func(t *testing.T) {
			res := Parse(doc)
			require.True(t, res.Success(), "errors: %v", res.Errors)

			spec := res.Spec
			assert.Equal(t, "Tiny", spec.Title)
			assert.Equal(t, "2.1.0", spec.Version)
			assert.Equal(t, "A tiny API", spec.Description)
			assert.Equal(t, "https://api.example.com", spec.BaseURL, "trailing slash is trimmed")
			require.Len(t, spec.Endpoints, 1)
			assert.Equal(t, "GET", spec.Endpoints[0].Method)
			assert.Equal(t, "/things", spec.Endpoints[0].Path)
			assert.Equal(t, "listThings", spec.Endpoints[0].OperationID)
		})
	}
}

func TestParse_WarnsOnEmptyPaths(t *testing.T) {
	res := Parse(`{"openapi": "3.1.0", "info": {"title": "Empty"}, "paths": {}}`)
	require.True(t, res.Success())
	assert.Empty(t, res.Spec.Endpoints)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "no paths")
}

func TestParse_ResolvesSchemaRefs(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "Refs"},
		"components": {
			"schemas": {
				"Pet": {"type": "object", "properties": {"name": {"type": "string"}}}
			}
		},
		"paths": {
			"/pets": {
				"post": {
					"requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}},
					"responses": {"201": {"description": "created"}}
				}
			}
		}
	}`)
	require.True(t, res.Success(), "errors: %v", res.Errors)

	require.Len(t, res.Spec.Endpoints, 1)
	body := res.Spec.Endpoints[0].RequestBody
	require.NotNil(t, body)
	assert.Equal(t, "object", body.Schema["type"])
	props, ok := body.Schema["properties"].(map[string]any)
	require.True(t, ok, "ref target content is inlined")
	assert.Contains(t, props, "name")
}

func TestParse_ResolvesParameterRefs(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "ParamRefs"},
		"components": {
			"parameters": {
				"Limit": {"name": "limit", "in": "query", "schema": {"type": "integer"}}
			}
		},
		"paths": {
			"/items": {
				"get": {
					"parameters": [{"$ref": "#/components/parameters/Limit"}],
					"responses": {"200": {"description": "ok"}}
				}
			}
		}
	}`)
	require.True(t, res.Success())

	params := res.Spec.Endpoints[0].Parameters
	require.Len(t, params, 1)
	assert.Equal(t, "limit", params[0].Name)
	assert.Equal(t, "query", params[0].In)
}

func TestParse_CyclicRefsTerminate(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "Cycles"},
		"components": {
			"schemas": {
				"Node": {
					"type": "object",
					"properties": {
						"value": {"type": "string"},
						"children": {"type": "array", "items": {"$ref": "#/components/schemas/Node"}}
					}
				}
			}
		},
		"paths": {
			"/nodes": {
				"get": {"responses": {"200": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Node"}}}}}}
			}
		}
	}`)
	require.True(t, res.Success(), "errors: %v", res.Errors)

	// The resolved document must stay acyclic: marshaling would not
	// terminate otherwise.
	_, err := json.Marshal(res.Spec.Schemas)
	require.NoError(t, err)

	node := res.Spec.Schemas["Node"]
	require.NotNil(t, node)
	assert.Equal(t, "object", node["type"])
}

func TestParse_ExternalRefsWarnButDoNotFail(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "External"},
		"paths": {
			"/things": {
				"get": {
					"responses": {"200": {"content": {"application/json": {"schema": {"$ref": "common.yaml#/Thing"}}}}}
				}
			}
		}
	}`)
	require.True(t, res.Success())
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "external reference")
}

func TestParse_OperationParametersOverridePathLevel(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "Merge"},
		"paths": {
			"/items/{id}": {
				"parameters": [
					{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
					{"name": "verbose", "in": "query", "schema": {"type": "boolean"}}
				],
				"get": {
					"parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}],
					"responses": {"200": {"description": "ok"}}
				}
			}
		}
	}`)
	require.True(t, res.Success())

	params := res.Spec.Endpoints[0].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, "id", params[0].Name)
	assert.Equal(t, "integer", params[0].Schema["type"], "operation-level wins")
	assert.Equal(t, "verbose", params[1].Name)
}

func TestParse_DocumentSecurityIsTheFallback(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "Sec"},
		"security": [{"bearerAuth": []}],
		"components": {"securitySchemes": {"bearerAuth": {"type": "http", "scheme": "bearer"}}},
		"paths": {
			"/open": {
				"get": {"security": [], "responses": {"200": {"description": "ok"}}}
			},
			"/secured": {
				"get": {"responses": {"200": {"description": "ok"}}}
			}
		}
	}`)
	require.True(t, res.Success())
	require.Len(t, res.Spec.Endpoints, 2)

	open, secured := res.Spec.Endpoints[0], res.Spec.Endpoints[1]
	assert.Equal(t, "/open", open.Path)
	assert.Empty(t, open.Security, "explicit empty list opts the operation out")
	require.Len(t, secured.Security, 1)
	_, ok := secured.Security[0]["bearerAuth"]
	assert.True(t, ok)

	scheme, found := res.Spec.FindScheme("bearerAuth")
	require.True(t, found)
	assert.Equal(t, "http", scheme.Type)
	assert.Equal(t, "bearer", scheme.Scheme)
}

func TestParse_PathsAreSortedAndMethodsOrdered(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "Order"},
		"paths": {
			"/b": {"post": {"responses": {}}, "get": {"responses": {}}},
			"/a": {"delete": {"responses": {}}}
		}
	}`)
	require.True(t, res.Success())

	var got []string
	for _, ep := range res.Spec.Endpoints {
		got = append(got, ep.Method+" "+ep.Path)
	}
	assert.Equal(t, []string{"DELETE /a", "GET /b", "POST /b"}, got)
}

func TestParse_RequestBodyPrefersJSON(t *testing.T) {
	res := Parse(`{
		"openapi": "3.0.0",
		"info": {"title": "Bodies"},
		"paths": {
			"/upload": {
				"post": {
					"requestBody": {
						"content": {
							"text/plain": {"schema": {"type": "string"}},
							"application/json": {"schema": {"type": "object"}}
						}
					},
					"responses": {}
				}
			},
			"/raw": {
				"post": {
					"requestBody": {"content": {"text/csv": {"schema": {"type": "string"}}}},
					"responses": {}
				}
			}
		}
	}`)
	require.True(t, res.Success())
	require.Len(t, res.Spec.Endpoints, 2)

	raw, upload := res.Spec.Endpoints[0], res.Spec.Endpoints[1]
	assert.Equal(t, "/raw", raw.Path)
	assert.Equal(t, "text/csv", raw.RequestBody.ContentType)
	assert.Equal(t, "/upload", upload.Path)
	assert.Equal(t, "application/json", upload.RequestBody.ContentType)
}
