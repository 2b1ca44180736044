package linkshare

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/taaskly/taaskly/internal/app/ports"
)

type linkStoreFake struct {
	communities map[int64]ports.Community
	usersByWID  map[string]ports.User
	usersByID   map[int64]ports.User
	documents   []ports.Document
	folders     []ports.Folder
	tasks       map[int64]*ports.Task
	subscribers map[int64][]ports.User
}

func newLinkStoreFake() *linkStoreFake {
	return &linkStoreFake{
		communities: map[int64]ports.Community{},
		usersByWID:  map[string]ports.User{},
		usersByID:   map[int64]ports.User{},
		tasks:       map[int64]*ports.Task{},
		subscribers: map[int64][]ports.User{},
	}
}

func (f *linkStoreFake) addUser(user ports.User) {
	if user.WorkplaceID != "" {
		f.usersByWID[user.WorkplaceID] = user
	}
	f.usersByID[user.ID] = user
}

func visible(privacy ports.Privacy, ownerID int64, scope ports.Scope) bool {
	if privacy == ports.PrivacyPublic {
		return true
	}
	return scope.ViewerID != nil && ownerID == *scope.ViewerID
}

func (f *linkStoreFake) FindCommunityByID(_ context.Context, id int64) (*ports.Community, error) {
	if community, ok := f.communities[id]; ok {
		return &community, nil
	}
	return nil, nil
}

func (f *linkStoreFake) FindUserByWorkplaceID(_ context.Context, workplaceID string) (*ports.User, error) {
	if user, ok := f.usersByWID[workplaceID]; ok {
		return &user, nil
	}
	return nil, nil
}

func (f *linkStoreFake) FindDocumentByID(_ context.Context, id int64, scope ports.Scope) (*ports.Document, error) {
	for _, doc := range f.documents {
		if doc.ID == id && visible(doc.Privacy, doc.OwnerID, scope) {
			found := doc
			return &found, nil
		}
	}
	return nil, nil
}

func (f *linkStoreFake) FindFolderByID(_ context.Context, id int64, scope ports.Scope) (*ports.Folder, error) {
	for _, folder := range f.folders {
		if folder.ID == id && visible(folder.Privacy, folder.OwnerID, scope) {
			found := folder
			return &found, nil
		}
	}
	return nil, nil
}

func (f *linkStoreFake) ListDocuments(_ context.Context, query ports.DocumentQuery) ([]ports.Document, error) {
	out := make([]ports.Document, 0)
	for _, doc := range f.documents {
		if !visible(doc.Privacy, doc.OwnerID, query.Scope) {
			continue
		}
		if query.FolderID != nil && (doc.FolderID == nil || *doc.FolderID != *query.FolderID) {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if query.Order == ports.OrderUpdatedDesc {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (f *linkStoreFake) ListFolders(_ context.Context, query ports.FolderQuery) ([]ports.Folder, error) {
	out := make([]ports.Folder, 0)
	for _, folder := range f.folders {
		if visible(folder.Privacy, folder.OwnerID, query.Scope) {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (f *linkStoreFake) FindTaskByID(_ context.Context, id int64) (*ports.Task, error) {
	if task, ok := f.tasks[id]; ok {
		found := *task
		return &found, nil
	}
	return nil, nil
}

func (f *linkStoreFake) ListTasks(_ context.Context) ([]ports.Task, error) {
	ids := make([]int64, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]ports.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.tasks[id])
	}
	return out, nil
}

func (f *linkStoreFake) SetTaskCompleted(_ context.Context, taskID int64, completed bool) error {
	task, ok := f.tasks[taskID]
	if !ok {
		return errors.New("no such task")
	}
	task.Completed = completed
	return nil
}

func (f *linkStoreFake) AddTaskSubscriber(_ context.Context, taskID, userID int64) error {
	for _, sub := range f.subscribers[taskID] {
		if sub.ID == userID {
			return nil
		}
	}
	f.subscribers[taskID] = append(f.subscribers[taskID], f.usersByID[userID])
	return nil
}

func (f *linkStoreFake) RemoveTaskSubscriber(_ context.Context, taskID, userID int64) error {
	subs := f.subscribers[taskID]
	out := subs[:0]
	for _, sub := range subs {
		if sub.ID != userID {
			out = append(out, sub)
		}
	}
	f.subscribers[taskID] = out
	return nil
}

func (f *linkStoreFake) ListTaskSubscribers(_ context.Context, taskID int64) ([]ports.User, error) {
	return append([]ports.User(nil), f.subscribers[taskID]...), nil
}

var _ ports.LinkStore = (*linkStoreFake)(nil)

func linkEnvelope(field, link, communityID, userID, payload string) Envelope {
	return Envelope{
		Object: "link",
		Entry: []Entry{{Changes: []Change{{
			Field: field,
			Value: Value{
				Link:      link,
				Community: Actor{ID: communityID},
				User:      Actor{ID: userID},
				Payload:   payload,
			},
		}}}},
	}
}

func newTestService(t *testing.T) (*Service, *linkStoreFake) {
	t.Helper()

	store := newLinkStoreFake()
	store.communities[1] = ports.Community{ID: 1, Name: "acme"}
	store.addUser(ports.User{ID: 1, Username: "ada", WorkplaceID: "wp-ada", CommunityID: 1})
	store.addUser(ports.User{ID: 2, Username: "bob", WorkplaceID: "wp-bob", CommunityID: 1})

	return NewService(store, testConfig, nil), store
}

func TestDispatchRejectsInvalidTopic(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	env := linkEnvelope(FieldPreview, "", "1", "", "")
	env.Object = "page"

	if _, err := service.Dispatch(context.Background(), env); !errors.Is(err, ErrInvalidTopic) {
		t.Fatalf("got %v, want ErrInvalidTopic", err)
	}
}

func TestDispatchRejectsMalformedEnvelopes(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)

	env := linkEnvelope(FieldPreview, "", "1", "", "")
	env.Entry = append(env.Entry, env.Entry[0])
	if _, err := service.Dispatch(context.Background(), env); !errors.Is(err, ErrMalformed) {
		t.Fatalf("two entries: got %v, want ErrMalformed", err)
	}

	env = linkEnvelope(FieldPreview, "", "1", "", "")
	env.Entry[0].Changes = nil
	if _, err := service.Dispatch(context.Background(), env); !errors.Is(err, ErrMalformed) {
		t.Fatalf("no changes: got %v, want ErrMalformed", err)
	}
}

func TestDispatchRejectsUnroutableField(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	env := linkEnvelope("mention", "", "1", "", "")

	if _, err := service.Dispatch(context.Background(), env); !errors.Is(err, ErrNoHandlerForChange) {
		t.Fatalf("got %v, want ErrNoHandlerForChange", err)
	}
}

func TestPreviewDocumentVisibleToOwner(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.documents = append(store.documents, ports.Document{
		ID: 5, Name: "Plan", Content: "secret", Privacy: ports.PrivacyPrivate, OwnerID: 1,
	})

	link := "https://chat.example.com/share/document/5"
	resp, err := service.Dispatch(context.Background(), linkEnvelope(FieldPreview, link, "1", "wp-ada", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !resp.LinkedUser {
		t.Fatal("expected linked user")
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected one item, got %d", len(resp.Data))
	}
	if resp.Data[0].Link != link {
		t.Fatalf("shared link not preserved: %q", resp.Data[0].Link)
	}
}

func TestPreviewPrivateDocumentHiddenFromOthers(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.documents = append(store.documents, ports.Document{
		ID: 5, Name: "Plan", Privacy: ports.PrivacyPrivate, OwnerID: 1,
	})

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPreview, "/document/5", "1", "wp-bob", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resp.Data) != 0 {
		t.Fatalf("private document leaked: %+v", resp.Data)
	}
	if !resp.LinkedUser {
		t.Fatal("caller is linked even when the document is hidden")
	}
}

func TestPreviewPublicDocumentVisibleToUnlinkedCaller(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.documents = append(store.documents, ports.Document{
		ID: 5, Name: "Plan", Privacy: ports.PrivacyPublic, OwnerID: 1,
	})

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPreview, "/document/5", "1", "wp-stranger", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.LinkedUser {
		t.Fatal("unknown workplace id must not resolve to a linked user")
	}
	if len(resp.Data) != 1 {
		t.Fatalf("public document hidden from unlinked caller: %+v", resp.Data)
	}
}

func TestPreviewUnknownCommunityFails(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPreview, "/document/5", "999", "wp-ada", ""))
	if !errors.Is(err, ErrUnknownCommunity) {
		t.Fatalf("got %v, want ErrUnknownCommunity", err)
	}
	if len(resp.Data) != 0 {
		t.Fatalf("failed request produced data: %+v", resp.Data)
	}
}

func TestPreviewTaskRequiresLinkedUser(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.tasks[7] = &ports.Task{ID: 7, Title: "Ship", OwnerID: 1, Owner: store.usersByID[1]}

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPreview, "/task/7", "1", "wp-stranger", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resp.Data) != 0 || resp.LinkedUser {
		t.Fatalf("task preview for unlinked caller: %+v", resp)
	}
}

func TestPreviewUnknownLinkFails(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	if _, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPreview, "https://example.com/profile/2", "1", "wp-ada", "")); !errors.Is(err, ErrUnknownLink) {
		t.Fatalf("got %v, want ErrUnknownLink", err)
	}
}

func TestCollectionRequiresLinkedUser(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldCollection, "", "1", "wp-stranger", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resp.Data) != 0 || resp.LinkedUser {
		t.Fatalf("collection for unlinked caller: %+v", resp)
	}
}

func TestCollectionPersonalizedTasksReturnsEverything(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	owner := store.usersByID[1]
	for i := int64(1); i <= 7; i++ {
		store.tasks[i] = &ports.Task{ID: i, Title: "Task", OwnerID: 1, Owner: owner}
	}

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldCollection, "https://taaskly.example.com/personalized-tasks", "1", "wp-ada", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resp.Data) != 7 {
		t.Fatalf("personalized tasks must ignore the item cap: got %d", len(resp.Data))
	}
	for _, item := range resp.Data {
		if item.Type != "task" {
			t.Fatalf("unexpected item type %q", item.Type)
		}
	}
}

func TestCollectionBrowsesFolderDocuments(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	folderID := int64(3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 7; i++ {
		store.documents = append(store.documents, ports.Document{
			ID: i, Name: "Doc", Privacy: ports.PrivacyPublic, OwnerID: 1,
			FolderID:  &folderID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	store.documents = append(store.documents, ports.Document{
		ID: 8, Name: "Elsewhere", Privacy: ports.PrivacyPublic, OwnerID: 1,
		CreatedAt: base.Add(time.Hour),
	})

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldCollection, "https://taaskly.example.com/folder/3", "1", "wp-ada", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resp.Data) != 5 {
		t.Fatalf("folder browse must cap at 5: got %d", len(resp.Data))
	}
	// Newest first.
	if resp.Data[0].CanonicalLink != "https://taaskly.example.com/document/7" {
		t.Fatalf("unexpected first item: %q", resp.Data[0].CanonicalLink)
	}
}

func TestCollectionDefaultListingOrder(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.folders = append(store.folders,
		ports.Folder{ID: 1, Name: "Old", Privacy: ports.PrivacyPublic, OwnerID: 1, CreatedAt: base},
		ports.Folder{ID: 2, Name: "New", Privacy: ports.PrivacyPublic, OwnerID: 1, CreatedAt: base.Add(time.Hour)},
	)
	store.documents = append(store.documents,
		ports.Document{ID: 10, Name: "Doc", Privacy: ports.PrivacyPublic, OwnerID: 1, CreatedAt: base},
		ports.Document{ID: 11, Name: "Hidden", Privacy: ports.PrivacyPrivate, OwnerID: 2, CreatedAt: base},
	)

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldCollection, "", "1", "wp-ada", ""))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	want := []string{
		"https://taaskly.example.com/personalized-tasks",
		"https://taaskly.example.com/folder/2",
		"https://taaskly.example.com/folder/1",
		"https://taaskly.example.com/document/10",
	}
	if len(resp.Data) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(resp.Data), resp.Data)
	}
	for i, link := range want {
		if resp.Data[i].Link != link {
			t.Fatalf("item %d: got %q, want %q", i, resp.Data[i].Link, link)
		}
	}
	if resp.Data[0].Title != "Tasks" || resp.Data[0].Privacy != "personalized" {
		t.Fatalf("synthetic tasks entry malformed: %+v", resp.Data[0])
	}
}

func TestPostbackCloseTogglesCompletion(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.tasks[7] = &ports.Task{ID: 7, Title: "Ship", OwnerID: 1, Owner: store.usersByID[1]}

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPostback, "/task/7", "1", "wp-ada", PayloadTaskClose))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !store.tasks[7].Completed {
		t.Fatal("close postback did not persist completion")
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected one item, got %d", len(resp.Data))
	}
	if resp.Data[0].Actions[0].Payload != PayloadTaskReopen {
		t.Fatalf("toggle action payload: got %q, want %q", resp.Data[0].Actions[0].Payload, PayloadTaskReopen)
	}
}

func TestPostbackSubscribeRoundTrip(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.tasks[7] = &ports.Task{ID: 7, Title: "Ship", OwnerID: 1, Owner: store.usersByID[1]}

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPostback, "/task/7", "1", "wp-bob", PayloadSubscribe))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if resp.Data[0].Actions[1].Payload != PayloadUnsubscribe {
		t.Fatalf("after subscribe: got %q, want Unsubscribe", resp.Data[0].Actions[1].Payload)
	}

	resp, err = service.Dispatch(context.Background(),
		linkEnvelope(FieldPostback, "/task/7", "1", "wp-bob", PayloadUnsubscribe))
	if err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if resp.Data[0].Actions[1].Payload != PayloadSubscribe {
		t.Fatalf("after unsubscribe: got %q, want Subscribe", resp.Data[0].Actions[1].Payload)
	}
	if len(store.subscribers[7]) != 0 {
		t.Fatalf("subscriber set not emptied: %+v", store.subscribers[7])
	}
}

func TestPostbackUnknownPayloadIsNoOp(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t)
	store.tasks[7] = &ports.Task{ID: 7, Title: "Ship", OwnerID: 1, Owner: store.usersByID[1]}

	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPostback, "/task/7", "1", "wp-ada", "Task.Archive"))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if store.tasks[7].Completed || len(store.subscribers[7]) != 0 {
		t.Fatal("unknown payload mutated state")
	}
	if len(resp.Data) != 1 {
		t.Fatalf("task not re-rendered: %+v", resp)
	}
}

func TestPostbackRejectsNonTaskLinks(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	if _, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPostback, "/folder/3", "1", "wp-ada", PayloadTaskClose)); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("got %v, want ErrInvalidURL", err)
	}
}

func TestPostbackMissingTaskReturnsEmpty(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	resp, err := service.Dispatch(context.Background(),
		linkEnvelope(FieldPostback, "/task/99", "1", "wp-ada", PayloadTaskClose))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resp.Data) != 0 || !resp.LinkedUser {
		t.Fatalf("missing task: %+v", resp)
	}
}
