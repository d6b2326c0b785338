package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sourcegraph/conc/pool"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// Server answers product commands received over NATS request/reply
type Server struct {
	nc     *nats.Conn
	router *Router
	cfg    config.RPCConfig
	subj   func(command string) string
	logger *logger.Logger

	workers *pool.Pool

	mu     sync.RWMutex
	closed bool
	subs   []*nats.Subscription
}

// NewServer creates a server that dispatches at most cfg.RPC.MaxInFlight messages at once
func NewServer(nc *nats.Conn, router *Router, cfg *config.Config, log *logger.Logger) *Server {
	return &Server{
		nc:      nc,
		router:  router,
		cfg:     cfg.RPC,
		subj:    cfg.Subject,
		logger:  log,
		workers: pool.New().WithMaxGoroutines(cfg.RPC.MaxInFlight),
	}
}

// Start subscribes every registered command in the configured queue group
func (s *Server) Start() error {
	for _, command := range s.router.Commands() {
		h, _ := s.router.Handler(command)
		subject := s.subj(command)

		sub, err := s.nc.QueueSubscribe(subject, s.cfg.QueueGroup, s.dispatch(command, h))
		if err != nil {
			s.unsubscribe()
			return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
		}

		s.mu.Lock()
		s.subs = append(s.subs, sub)
		s.mu.Unlock()

		s.logger.Infof("Subscribed to NATS subject: %s", subject)
	}

	if err := s.nc.Flush(); err != nil {
		return fmt.Errorf("failed to flush subscriptions: %w", err)
	}
	return nil
}

// dispatch hands messages to the worker pool; it blocks while the pool is full
func (s *Server) dispatch(command string, h message.HandlerFunc) nats.MsgHandler {
	return func(msg *nats.Msg) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		if s.closed {
			return
		}
		s.workers.Go(func() {
			s.serve(command, h, msg)
		})
	}
}

func (s *Server) serve(command string, h message.HandlerFunc, msg *nats.Msg) {
	requestID := msg.Header.Get(message.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx := message.WithRequestID(context.Background(), requestID)
	req := &message.Request{
		Subject:   msg.Subject,
		Command:   command,
		RequestID: requestID,
		Payload:   msg.Data,
	}

	env := s.handle(ctx, h, req)

	if msg.Reply == "" {
		s.logger.Debugf("Dropping reply for %s: no reply subject", msg.Subject)
		return
	}

	reply := nats.NewMsg(msg.Reply)
	reply.Header.Set(message.HeaderRequestID, requestID)
	reply.Data = response.Encode(env)

	if err := msg.RespondMsg(reply); err != nil {
		s.logger.Errorf(err, "Failed to reply on subject %s", msg.Subject)
	}
}

func (s *Server) handle(ctx context.Context, h message.HandlerFunc, req *message.Request) response.Envelope {
	data, err := h(ctx, req)
	if err != nil {
		return response.FromError(err)
	}
	return response.Success(data)
}

// Shutdown stops receiving commands and waits for in-flight ones to be answered
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("RPC server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight requests: %w", ctx.Err())
	}
}

func (s *Server) unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warnf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	s.subs = nil
}
