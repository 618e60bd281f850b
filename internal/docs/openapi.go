// Package docs serves the OpenAPI description of the posts API together with
// Swagger UI and Redoc pages that render it.
package docs

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

const (
	Title   = "Blog API"
	Version = "1.0.0"
)

type object = map[string]any

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema object) object {
	return object{"application/json": object{"schema": schema}}
}

func response(description string, schema object) object {
	return object{"description": description, "content": jsonContent(schema)}
}

func errorResponse(description string) object {
	return response(description, ref("ErrorMessage"))
}

var idParam = object{
	"name":        "id",
	"in":          "path",
	"required":    true,
	"description": "Post id (24 hex digits)",
	"schema":      object{"type": "string", "example": "65f1c2d1a1b2c3d4e5f6a7b8"},
}

// Spec builds the OpenAPI 3.0.3 document.
func Spec() map[string]any {
	stringField := object{"type": "string"}
	postFields := object{"title": stringField, "content": stringField, "author": stringField}

	return object{
		"openapi": "3.0.3",
		"info": object{
			"title":       Title,
			"version":     Version,
			"description": "CRUD API for blog posts backed by a document store",
		},
		"components": object{
			"schemas": object{
				"Post": object{
					"type": "object",
					"properties": object{
						"id":        object{"type": "string", "example": "65f1c2d1a1b2c3d4e5f6a7b8"},
						"title":     object{"type": "string", "example": "My first post"},
						"content":   object{"type": "string", "example": "Post content..."},
						"author":    object{"type": "string", "example": "Professor X"},
						"createdAt": object{"type": "string", "format": "date-time"},
						"updatedAt": object{"type": "string", "format": "date-time"},
					},
					"required": []string{"id", "title", "content", "author", "createdAt", "updatedAt"},
				},
				"PostCreateInput": object{
					"type":       "object",
					"properties": postFields,
					"required":   []string{"title", "content", "author"},
				},
				"PostUpdateInput": object{
					"type":       "object",
					"properties": postFields,
				},
				"DeleteResult": object{
					"type": "object",
					"properties": object{
						"message": stringField,
						"post":    ref("Post"),
					},
				},
				"ErrorMessage": object{
					"type":       "object",
					"properties": object{"message": stringField},
				},
			},
		},
		"paths": object{
			"/posts": object{
				"get": object{
					"summary": "List posts, newest first",
					"tags":    []string{"Posts"},
					"responses": object{
						"200": response("Posts", object{"type": "array", "items": ref("Post")}),
						"500": errorResponse("Store failure"),
					},
				},
				"post": object{
					"summary":     "Create a post",
					"tags":        []string{"Posts"},
					"requestBody": object{"required": true, "content": jsonContent(ref("PostCreateInput"))},
					"responses": object{
						"201": response("Created post", ref("Post")),
						"400": errorResponse("Missing required fields"),
						"500": errorResponse("Store failure"),
					},
				},
			},
			"/posts/search": object{
				"get": object{
					"summary": "Search posts by title or content",
					"tags":    []string{"Posts"},
					"parameters": []object{{
						"name":        "q",
						"in":          "query",
						"required":    true,
						"description": "Case-insensitive substring",
						"schema":      stringField,
					}},
					"responses": object{
						"200": response("Matching posts", object{"type": "array", "items": ref("Post")}),
						"400": errorResponse("Missing query"),
						"404": errorResponse("No matches"),
						"500": errorResponse("Store failure"),
					},
				},
			},
			"/posts/{id}": object{
				"get": object{
					"summary":    "Fetch a post",
					"tags":       []string{"Posts"},
					"parameters": []object{idParam},
					"responses": object{
						"200": response("Post", ref("Post")),
						"400": errorResponse("Malformed id"),
						"404": errorResponse("Post not found"),
					},
				},
				"put": object{
					"summary":     "Update some fields of a post",
					"tags":        []string{"Posts"},
					"parameters":  []object{idParam},
					"requestBody": object{"required": true, "content": jsonContent(ref("PostUpdateInput"))},
					"responses": object{
						"200": response("Updated post", ref("Post")),
						"400": errorResponse("Malformed id or invalid update"),
						"404": errorResponse("Post not found"),
					},
				},
				"delete": object{
					"summary":    "Delete a post",
					"tags":       []string{"Posts"},
					"parameters": []object{idParam},
					"responses": object{
						"200": response("Removed post", ref("DeleteResult")),
						"400": errorResponse("Malformed id or delete failure"),
						"404": errorResponse("Post not found"),
					},
				},
			},
			"/health": object{
				"get": object{
					"summary": "Store reachability",
					"tags":    []string{"Health"},
					"responses": object{
						"200": response("Healthy", object{"type": "object", "properties": object{"status": stringField}}),
						"503": errorResponse("Store unreachable"),
					},
				},
			},
		},
	}
}

// Register mounts the documentation routes on r.
func Register(r chi.Router) {
	r.Get("/docs-json", serveJSON)
	r.Get("/docs.yaml", serveYAML)
	r.Get("/docs", servePage(swaggerPage))
	r.Get("/redoc", servePage(redocPage))
}

func serveJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Spec()); err != nil {
		log.Printf("docs: encode json: %v", err)
	}
}

func serveYAML(w http.ResponseWriter, r *http.Request) {
	out, err := yaml.Marshal(Spec())
	if err != nil {
		log.Printf("docs: encode yaml: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(out)
}

func servePage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}
}

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>` + Title + `</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "/docs-json", dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`

const redocPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>` + Title + ` Docs</title>
</head>
<body>
  <redoc spec-url="/docs-json"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>
`
