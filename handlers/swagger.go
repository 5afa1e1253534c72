package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a small Swagger UI page plus the OpenAPI document
// describing the HTTP surface.
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})
	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>groupchat - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "groupchat", "version": "v0.1.0" },
  "paths": {
    "/api/auth/login": {
      "post": {
        "summary": "Verify credentials and issue a session token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token issued" }, "401": { "description": "invalid credentials" }, "404": { "description": "user not found" } }
      }
    },
    "/api/auth/logout/{userId}": {
      "get": { "summary": "Revoke the presented token", "responses": { "200": { "description": "logged out" }, "401": { "description": "missing or invalid token" }, "404": { "description": "user not found" } } }
    },
    "/api/users": {
      "get": { "summary": "List users (admin only)", "responses": { "200": { "description": "users" }, "403": { "description": "admin access required" } } }
    },
    "/api/users/add": {
      "post": { "summary": "Create a user (admin only)", "responses": { "201": { "description": "created" }, "400": { "description": "user already exists" } } }
    },
    "/api/users/edit/{userID}": {
      "patch": { "summary": "Edit a user (admin only)", "responses": { "201": { "description": "updated" }, "404": { "description": "user not found" } } }
    },
    "/api/groups/add": {
      "post": { "summary": "Create a group; the creator becomes its admin member", "responses": { "201": { "description": "created" } } }
    },
    "/api/groups/delete": {
      "post": { "summary": "Soft-delete a group owned by the caller", "responses": { "201": { "description": "deleted" }, "404": { "description": "not the group admin" } } }
    },
    "/api/groups/search": {
      "post": { "summary": "Search the caller's groups by name", "responses": { "201": { "description": "matches" } } }
    },
    "/api/groups/members/add": {
      "post": { "summary": "Add a member (group admin only)", "responses": { "201": { "description": "added" }, "403": { "description": "not the group admin" } } }
    },
    "/api/groups/getUsersGroups/{userId}": {
      "get": { "summary": "List the groups a user belongs to", "responses": { "201": { "description": "groups" } } }
    },
    "/api/groups/getGroupAllMembers/{groupId}": {
      "post": { "summary": "List group members (members only)", "responses": { "201": { "description": "members" }, "403": { "description": "not a member" } } }
    },
    "/api/chat/sendMessage": {
      "post": { "summary": "Post a message to a group", "responses": { "201": { "description": "stored" }, "403": { "description": "not a member" } } }
    },
    "/api/chat/getGroupMessages/{groupId}": {
      "post": { "summary": "Fetch a group's messages oldest first", "responses": { "201": { "description": "messages" }, "403": { "description": "not a member" } } }
    },
    "/api/chat/likeUnlikeMessage": {
      "post": { "summary": "Toggle the caller's like on a message", "responses": { "201": { "description": "toggled" } } }
    },
    "/api/chat/attachments/{groupId}": {
      "post": { "summary": "Upload an attachment for a group", "responses": { "201": { "description": "stored" }, "503": { "description": "storage not configured" } } }
    },
    "/ws": { "get": { "summary": "WebSocket endpoint for joinRoom/groupMessage events", "responses": { "101": { "description": "upgraded" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
