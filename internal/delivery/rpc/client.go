package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
	"github.com/Pesokrava/products-ms/internal/domain"
)

// RemoteError is an error envelope returned by the microservice.
// errors.Is matches it against the domain sentinels.
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Field   string
	Rule    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return domain.ErrInternal
	}
}

// Body returns the envelope form of e
func (e *RemoteError) Body() response.ErrorBody {
	return response.ErrorBody{
		Status:  e.Status,
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
		Rule:    e.Rule,
	}
}

// Client sends product commands to the microservice
type Client struct {
	nc      *nats.Conn
	subj    func(command string) string
	timeout time.Duration
}

// NewClient creates a client using the configured subject prefix and request timeout
func NewClient(nc *nats.Conn, cfg *config.Config) *Client {
	return &Client{
		nc:      nc,
		subj:    cfg.Subject,
		timeout: cfg.RPC.RequestTimeout,
	}
}

// Send issues command with payload and decodes the reply data into out.
// payload may be a json.RawMessage to forward bytes untouched; out may be nil.
func (c *Client) Send(ctx context.Context, command string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", command, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := message.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	msg := nats.NewMsg(c.subj(command))
	msg.Header.Set(message.HeaderRequestID, requestID)
	msg.Data = body

	resp, err := c.nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("request %s: %w", msg.Subject, err)
	}

	var reply response.Reply
	if err := json.Unmarshal(resp.Data, &reply); err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", command, err)
	}

	if reply.Error != nil {
		return &RemoteError{
			Status:  reply.Error.Status,
			Code:    reply.Error.Code,
			Message: reply.Error.Message,
			Field:   reply.Error.Field,
			Rule:    reply.Error.Rule,
		}
	}

	if out == nil || len(reply.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(reply.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", command, err)
	}
	return nil
}
