package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/LeJamon/goVaultd/internal/rpc/rpc_types"
)

// maxBodySize bounds a request body. Envelopes are a few KB at most.
const maxBodySize = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *rpc_types.MethodRegistry
	timeout  time.Duration
	adminIPs map[string]bool
	logger   *slog.Logger
}

// NewServer creates a new RPC server with the given timeout. Requests from
// adminIPs are granted the admin role.
func NewServer(services *rpc_types.ServiceContainer, timeout time.Duration, adminIPs []string) *Server {
	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		timeout:  timeout,
		adminIPs: make(map[string]bool, len(adminIPs)),
		logger:   slog.Default().With("component", "rpc"),
	}
	for _, ip := range adminIPs {
		server.adminIPs[ip] = true
	}

	// Register all RPC methods
	server.registerAllMethods(services)

	return server
}

// Methods returns the registered method names
func (s *Server) Methods() []string {
	return s.registry.List()
}

// Request is a JSON-RPC request.
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.handlePostRequest(w, r)
}

// handlePostRequest processes POST requests with a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, nil, "internal", "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, nil, "jsonInvalid", "Invalid JSON: "+err.Error())
		return
	}

	if request.Method == "" {
		s.writeError(w, nil, "missingCommand", "Missing method field")
		return
	}

	// params is an array with one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := &rpc_types.RpcContext{
		Context:    r.Context(),
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   getClientIP(r),
	}
	if s.adminIPs[ctx.ClientIP] {
		ctx.Role = rpc_types.RoleAdmin
		ctx.IsAdmin = true
	}

	// Parse API version from params if present
	if params != nil {
		var versioned struct {
			ApiVersion *int `json:"api_version"`
		}
		if err := json.Unmarshal(params, &versioned); err == nil && versioned.ApiVersion != nil {
			ctx.ApiVersion = *versioned.ApiVersion
		}
	}

	if s.timeout > 0 {
		c, cancel := context.WithTimeout(ctx.Context, s.timeout)
		defer cancel()
		ctx.Context = c
	}

	start := time.Now()
	result, rpcErr := s.executeMethod(request.Method, params, ctx)
	s.logger.Debug("rpc call", "method", request.Method, "client", ctx.ClientIP,
		"duration", time.Since(start), "ok", rpcErr == nil)

	requestObj := map[string]interface{}{"command": request.Method}
	s.writeResponse(w, requestObj, result, rpcErr)
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.RpcErrorCommandUntrusted(method)
	}

	supportedVersions := handler.SupportedApiVersions()
	if len(supportedVersions) > 0 {
		supported := false
		for _, version := range supportedVersions {
			if ctx.ApiVersion == version {
				supported = true
				break
			}
		}
		if !supported {
			return nil, rpc_types.RpcErrorInvalidApiVersion(strconv.Itoa(ctx.ApiVersion))
		}
	}

	return handler.Handle(ctx, params)
}

// writeResponse writes a JSON-RPC response.
// result.status is "success" or "error"; errors carry error, error_code
// and error_message inside result.
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	response := make(map[string]interface{})

	if rpcErr != nil {
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
		response["result"] = resultObj
	} else {
		// If result is already a map, add status to it
		if resultMap, ok := result.(map[string]interface{}); ok {
			resultMap["status"] = "success"
			response["result"] = resultMap
		} else {
			response["result"] = map[string]interface{}{
				"status": "success",
				"data":   result,
			}
		}
	}

	s.write(w, response)
}

// writeError writes an error response for a request that never reached a method
func (s *Server) writeError(w http.ResponseWriter, request interface{}, errorCode string, message string) {
	resultObj := map[string]interface{}{
		"status":        "error",
		"error":         errorCode,
		"error_message": message,
	}
	if request != nil {
		resultObj["request"] = request
	}
	s.write(w, map[string]interface{}{"result": resultObj})
}

func (s *Server) write(w http.ResponseWriter, response map[string]interface{}) {
	responseData, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(responseData); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// getClientIP extracts the client IP from the connection. Forwarding
// headers are ignored since the admin role is granted by IP.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
