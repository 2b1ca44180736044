package linkshare

import (
	"context"
	"log/slog"

	"github.com/taaskly/taaskly/internal/app/ports"
)

// Service answers link webhooks: previews for a shared link, collections
// of linkable items, and postback button actions on tasks.
type Service struct {
	store ports.LinkStore
	cfg   Config
	log   *slog.Logger
}

// NewService constructs the link webhook service.
func NewService(store ports.LinkStore, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, cfg: cfg, log: log}
}

// Response is the webhook reply envelope.
type Response struct {
	Data       []Item `json:"data"`
	LinkedUser bool   `json:"linked_user"`
}

// result is a handler outcome before assembly into the reply envelope.
type result struct {
	data []Item
	user *ports.User
}

// Dispatch validates the envelope and routes its single change to the
// matching handler.
func (s *Service) Dispatch(ctx context.Context, env Envelope) (Response, error) {
	change, err := readChange(env)
	if err != nil {
		return Response{}, err
	}

	var res result
	switch change.Field {
	case FieldPreview:
		res, err = s.handlePreview(ctx, change.Value)
	case FieldCollection:
		res, err = s.handleCollection(ctx, change.Value)
	case FieldPostback:
		res, err = s.handlePostback(ctx, change.Value)
	default:
		return Response{}, ErrNoHandlerForChange
	}
	if err != nil {
		return Response{}, err
	}

	if res.data == nil {
		res.data = []Item{}
	}
	return Response{Data: res.data, LinkedUser: res.user != nil}, nil
}
