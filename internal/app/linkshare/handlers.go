package linkshare

import (
	"context"
	"strings"

	"github.com/taaskly/taaskly/internal/app/ports"
)

// collectionLimit caps the folder and document groups of a collection.
const collectionLimit = 5

// handlePreview produces a single-item rich preview for one shared link.
func (s *Service) handlePreview(ctx context.Context, value Value) (result, error) {
	origin, err := s.resolveCaller(ctx, value)
	if err != nil {
		return result{}, err
	}
	ref, err := ExtractRef(value.Link)
	if err != nil {
		return result{}, err
	}

	switch ref.Kind {
	case RefDocument:
		doc, err := s.store.FindDocumentByID(ctx, ref.ID, ports.ScopeFor(origin.user))
		if err != nil {
			return result{}, err
		}
		if doc == nil {
			return result{user: origin.user}, nil
		}
		return result{data: []Item{encodeDocument(s.cfg, value.Link, *doc)}, user: origin.user}, nil

	case RefFolder:
		folder, err := s.store.FindFolderByID(ctx, ref.ID, ports.ScopeFor(origin.user))
		if err != nil {
			return result{}, err
		}
		if folder == nil {
			return result{user: origin.user}, nil
		}
		return result{data: []Item{encodeFolder(s.cfg, value.Link, *folder)}, user: origin.user}, nil

	case RefTask:
		// Task previews are personalized, an unlinked caller sees nothing.
		if origin.user == nil {
			return result{}, nil
		}
		item, found, err := s.encodeTaskByID(ctx, ref.ID, value.Link, *origin.user)
		if err != nil {
			return result{}, err
		}
		if !found {
			return result{user: origin.user}, nil
		}
		return result{data: []Item{item}, user: origin.user}, nil
	}
	return result{}, ErrInvalidURL
}

// handleCollection produces the browsable listing offered while a user
// composes a share.
func (s *Service) handleCollection(ctx context.Context, value Value) (result, error) {
	origin, err := s.resolveCaller(ctx, value)
	if err != nil {
		return result{}, err
	}
	if origin.user == nil {
		return result{}, nil
	}
	user := *origin.user
	scope := ports.ScopeFor(origin.user)

	if value.Link != "" {
		if strings.HasSuffix(value.Link, "personalized-tasks") {
			return s.collectTasks(ctx, user, origin.user)
		}

		// Any other link is browsed as a folder of documents.
		ref, err := ExtractRef(value.Link)
		if err != nil {
			return result{}, err
		}
		docs, err := s.store.ListDocuments(ctx, ports.DocumentQuery{
			Scope:    scope,
			FolderID: &ref.ID,
			Order:    ports.OrderCreatedDesc,
			Limit:    collectionLimit,
		})
		if err != nil {
			return result{}, err
		}
		items := make([]Item, 0, len(docs))
		for _, doc := range docs {
			items = append(items, encodeDocument(s.cfg, "", doc))
		}
		return result{data: items, user: origin.user}, nil
	}

	folders, err := s.store.ListFolders(ctx, ports.FolderQuery{
		Scope: scope,
		Order: ports.OrderCreatedDesc,
		Limit: collectionLimit,
	})
	if err != nil {
		return result{}, err
	}
	docs, err := s.store.ListDocuments(ctx, ports.DocumentQuery{
		Scope: scope,
		Order: ports.OrderCreatedDesc,
		Limit: collectionLimit,
	})
	if err != nil {
		return result{}, err
	}

	items := make([]Item, 0, 1+len(folders)+len(docs))
	items = append(items, tasksFolderItem(s.cfg))
	for _, folder := range folders {
		items = append(items, encodeFolder(s.cfg, "", folder))
	}
	for _, doc := range docs {
		items = append(items, encodeDocument(s.cfg, "", doc))
	}
	return result{data: items, user: origin.user}, nil
}

// collectTasks returns the caller's full work list, unscoped and uncapped.
func (s *Service) collectTasks(ctx context.Context, user ports.User, resolved *ports.User) (result, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return result{}, err
	}
	items := make([]Item, 0, len(tasks))
	for _, task := range tasks {
		subscribers, err := s.store.ListTaskSubscribers(ctx, task.ID)
		if err != nil {
			return result{}, err
		}
		items = append(items, encodeTask(s.cfg, "", user, task, subscribers))
	}
	return result{data: items, user: resolved}, nil
}

// encodeTaskByID loads a task with its subscriber set and encodes it.
func (s *Service) encodeTaskByID(ctx context.Context, id int64, link string, viewer ports.User) (Item, bool, error) {
	task, err := s.store.FindTaskByID(ctx, id)
	if err != nil {
		return Item{}, false, err
	}
	if task == nil {
		return Item{}, false, nil
	}
	subscribers, err := s.store.ListTaskSubscribers(ctx, task.ID)
	if err != nil {
		return Item{}, false, err
	}
	return encodeTask(s.cfg, link, viewer, *task, subscribers), true, nil
}
