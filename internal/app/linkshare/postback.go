package linkshare

import (
	"context"

	"github.com/taaskly/taaskly/internal/app/ports"
)

// handlePostback applies a button action to a task and returns its
// updated encoding. Unlinked callers cannot act.
func (s *Service) handlePostback(ctx context.Context, value Value) (result, error) {
	origin, err := s.resolveCaller(ctx, value)
	if err != nil {
		return result{}, err
	}
	if origin.user == nil {
		return result{}, nil
	}

	ref, err := ExtractRef(value.Link)
	if err != nil {
		return result{}, err
	}
	if ref.Kind != RefTask {
		return result{}, ErrInvalidURL
	}

	task, err := s.store.FindTaskByID(ctx, ref.ID)
	if err != nil {
		return result{}, err
	}
	if task == nil {
		return result{user: origin.user}, nil
	}

	if err := s.applyAction(ctx, value.Payload, task, *origin.user); err != nil {
		return result{}, err
	}

	// Re-read the subscriber set so the encoding reflects the mutation.
	subscribers, err := s.store.ListTaskSubscribers(ctx, task.ID)
	if err != nil {
		return result{}, err
	}
	item := encodeTask(s.cfg, value.Link, *origin.user, *task, subscribers)
	return result{data: []Item{item}, user: origin.user}, nil
}

// applyAction persists the state change named by the postback payload.
// Unrecognized payloads are a no-op and the task is re-rendered as is.
func (s *Service) applyAction(ctx context.Context, payload string, task *ports.Task, user ports.User) error {
	switch payload {
	case PayloadTaskClose:
		if err := s.store.SetTaskCompleted(ctx, task.ID, true); err != nil {
			return err
		}
		task.Completed = true
		s.log.Info("task closed", "task", task.ID, "user", user.Username)
	case PayloadTaskReopen:
		if err := s.store.SetTaskCompleted(ctx, task.ID, false); err != nil {
			return err
		}
		task.Completed = false
		s.log.Info("task reopened", "task", task.ID, "user", user.Username)
	case PayloadSubscribe:
		if err := s.store.AddTaskSubscriber(ctx, task.ID, user.ID); err != nil {
			return err
		}
		s.log.Info("user subscribed", "task", task.ID, "user", user.Username)
	case PayloadUnsubscribe:
		if err := s.store.RemoveTaskSubscriber(ctx, task.ID, user.ID); err != nil {
			return err
		}
		s.log.Info("user unsubscribed", "task", task.ID, "user", user.Username)
	}
	return nil
}
