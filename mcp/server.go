package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/session"
	"github.com/careerverse/backend/tools"
)

// ProtocolVersion is reported by initialize
const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

// Server exposes the tool registry to external agents over JSON-RPC
type Server struct {
	registry *tools.ToolRegistry
	name     string
	version  string
}

// NewServer creates a new MCP server
func NewServer(registry *tools.ToolRegistry, version string) *Server {
	return &Server{
		registry: registry,
		name:     "careerverse",
		version:  version,
	}
}

// Request is an incoming JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC error object
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ToolsListResult is the result of tools/list
type ToolsListResult struct {
	Tools []tools.Definition `json:"tools"`
}

// ToolCallParams are the parameters of tools/call
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallResult is the result of tools/call
type ToolCallResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is one piece of tool output
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RegisterRoutes registers the JSON-RPC endpoint and the plain tool listing.
// The group must run session.RequireRole: tools are offered by session role.
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/mcp", s.HandleMCP)
	router.GET("/tools", s.HandleToolsList)
}

// HandleMCP handles JSON-RPC requests
// @Summary MCP JSON-RPC endpoint
// @Description Supports initialize, tools/list and tools/call
// @Tags tools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "JSON-RPC request"
// @Success 200 {object} Response
// @Router /mcp [post]
func (s *Server) HandleMCP(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, nil, CodeParseError, "Parse error", err.Error())
		return
	}
	if req.JSONRPC != "2.0" {
		s.sendError(c, req.ID, CodeInvalidRequest, "Invalid Request", "jsonrpc must be \"2.0\"")
		return
	}

	switch req.Method {
	case "initialize":
		s.sendResult(c, req.ID, gin.H{
			"protocolVersion": ProtocolVersion,
			"serverInfo":      gin.H{"name": s.name, "version": s.version},
			"capabilities":    gin.H{"tools": gin.H{}},
		})
	case "tools/list":
		s.sendResult(c, req.ID, ToolsListResult{Tools: s.registry.Definitions(roleOf(c))})
	case "tools/call":
		s.handleToolsCall(c, req)
	default:
		s.sendError(c, req.ID, CodeMethodNotFound, "Method not found", req.Method)
	}
}

// HandleToolsList lists the registered tools
// @Summary List agent tools
// @Tags tools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ToolsListResult
// @Router /tools [get]
func (s *Server) HandleToolsList(c *gin.Context) {
	c.JSON(http.StatusOK, ToolsListResult{Tools: s.registry.Definitions(roleOf(c))})
}

// roleOf returns the caller's session role, RoleNone without a session
func roleOf(c *gin.Context) models.Role {
	if sess := session.FromContext(c); sess != nil {
		return sess.Role
	}
	return models.RoleNone
}

func (s *Server) handleToolsCall(c *gin.Context, req Request) {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		detail := "name is required"
		if err != nil {
			detail = err.Error()
		}
		s.sendError(c, req.ID, CodeInvalidParams, "Invalid params", detail)
		return
	}

	result, err := s.executeTool(c.Request.Context(), roleOf(c), params.Name, params.Arguments)
	if err != nil {
		s.sendResult(c, req.ID, ToolCallResult{
			Content: []ContentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
		return
	}

	s.sendResult(c, req.ID, ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: string(result)}},
	})
}

func (s *Server) executeTool(ctx context.Context, role models.Role, name string, args json.RawMessage) (json.RawMessage, error) {
	tool, ok := s.registry.Get(name, role)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	log.Printf("[MCP] Executing tool: %s", name)
	result, err := tool.Execute(ctx, args)
	if err != nil {
		log.Printf("[MCP] Tool %s error: %v", name, err)
		return nil, fmt.Errorf("tool %s failed", name)
	}

	log.Printf("[MCP] Tool %s completed", name)
	return result, nil
}

func (s *Server) sendResult(c *gin.Context, id interface{}, result interface{}) {
	c.JSON(http.StatusOK, Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(c *gin.Context, id interface{}, code int, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}
