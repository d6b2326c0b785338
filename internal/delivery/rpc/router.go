package rpc

import (
	"sort"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/handler"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
)

// Commands served by the products microservice
const (
	CommandCreate   = "create"
	CommandFindAll  = "find_all"
	CommandFindOne  = "find_one"
	CommandUpdate   = "update"
	CommandRemove   = "remove"
	CommandValidate = "validate"
)

// Router maps command names to handlers wrapped in a shared middleware chain
type Router struct {
	routes      map[string]message.HandlerFunc
	middlewares []message.Middleware
}

// NewRouter creates an empty router; mws run outermost first
func NewRouter(mws ...message.Middleware) *Router {
	return &Router{
		routes:      make(map[string]message.HandlerFunc),
		middlewares: mws,
	}
}

// NewProductRouter registers every product command
func NewProductRouter(h *handler.ProductHandler, mws ...message.Middleware) *Router {
	r := NewRouter(mws...)
	r.Handle(CommandCreate, h.Create)
	r.Handle(CommandFindAll, h.FindAll)
	r.Handle(CommandFindOne, h.FindOne)
	r.Handle(CommandUpdate, h.Update)
	r.Handle(CommandRemove, h.Remove)
	r.Handle(CommandValidate, h.Validate)
	return r
}

// Handle registers h for command
func (r *Router) Handle(command string, h message.HandlerFunc) {
	r.routes[command] = message.Chain(h, r.middlewares...)
}

// Handler returns the wrapped handler for command
func (r *Router) Handler(command string) (message.HandlerFunc, bool) {
	h, ok := r.routes[command]
	return h, ok
}

// Commands returns the registered command names in sorted order
func (r *Router) Commands() []string {
	commands := make([]string, 0, len(r.routes))
	for command := range r.routes {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	return commands
}
