package ports

import (
	"context"
	"time"
)

// Privacy is the visibility level of a document or folder.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// Community is a tenant on the collaboration platform.
type Community struct {
	ID          int64
	Name        string
	AccessToken string
}

// User is a local account, optionally linked to a platform identity.
// An empty WorkplaceID means the account has no platform link.
type User struct {
	ID          int64
	Username    string
	WorkplaceID string
	CommunityID int64
}

// Linked reports whether the user carries a platform identity.
func (u User) Linked() bool {
	return u.WorkplaceID != ""
}

// Document is a shareable text document.
type Document struct {
	ID        int64
	Name      string
	Content   string
	Privacy   Privacy
	OwnerID   int64
	FolderID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Folder groups documents.
type Folder struct {
	ID        int64
	Name      string
	Privacy   Privacy
	OwnerID   int64
	CreatedAt time.Time
}

// Task is a work item. Priority is empty when unset.
type Task struct {
	ID        int64
	Title     string
	Priority  string
	Completed bool
	OwnerID   int64
	Owner     User
	CreatedAt time.Time
}

// Scope is the privacy filter applied to document and folder lookups.
// A record matches when it is public or owned by the viewer; with no
// viewer only public records match.
type Scope struct {
	ViewerID *int64
}

// ScopeFor builds the lookup scope for an optional viewer.
func ScopeFor(user *User) Scope {
	if user == nil {
		return Scope{}
	}
	id := user.ID
	return Scope{ViewerID: &id}
}

// ListOrder selects the sort column for list queries.
type ListOrder int

const (
	OrderCreatedDesc ListOrder = iota
	OrderUpdatedDesc
)

// DocumentQuery configures a scoped document listing.
type DocumentQuery struct {
	Scope    Scope
	FolderID *int64
	Order    ListOrder
	Limit    int
}

// FolderQuery configures a scoped folder listing.
type FolderQuery struct {
	Scope Scope
	Order ListOrder
	Limit int
}

// LinkStore is the store surface the link webhook pipeline depends on.
// Lookups return nil (not an error) when no record matches.
type LinkStore interface {
	FindCommunityByID(ctx context.Context, id int64) (*Community, error)
	FindUserByWorkplaceID(ctx context.Context, workplaceID string) (*User, error)

	FindDocumentByID(ctx context.Context, id int64, scope Scope) (*Document, error)
	FindFolderByID(ctx context.Context, id int64, scope Scope) (*Folder, error)
	ListDocuments(ctx context.Context, query DocumentQuery) ([]Document, error)
	ListFolders(ctx context.Context, query FolderQuery) ([]Folder, error)

	FindTaskByID(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error
	AddTaskSubscriber(ctx context.Context, taskID, userID int64) error
	RemoveTaskSubscriber(ctx context.Context, taskID, userID int64) error
	ListTaskSubscribers(ctx context.Context, taskID int64) ([]User, error)
}

// UpsertUserInput carries the OAuth profile used to link a platform identity.
type UpsertUserInput struct {
	Username    string
	WorkplaceID string
	CommunityID int64
}

// CreateDocumentInput carries fields for document creation.
type CreateDocumentInput struct {
	Name     string
	Content  string
	Privacy  Privacy
	OwnerID  int64
	FolderID *int64
}

// CreateFolderInput carries fields for folder creation.
type CreateFolderInput struct {
	Name    string
	Privacy Privacy
	OwnerID int64
}

// CreateTaskInput carries fields for task creation.
type CreateTaskInput struct {
	Title    string
	Priority string
	OwnerID  int64
}

// CreateCommunityInput carries fields for community registration.
type CreateCommunityInput struct {
	Name        string
	AccessToken string
}

// AppStore is the full store surface, covering the webhook pipeline and
// the authenticated API.
type AppStore interface {
	LinkStore

	FindUserByID(ctx context.Context, id int64) (*User, error)
	UpsertUser(ctx context.Context, input UpsertUserInput) (User, error)

	CreateDocument(ctx context.Context, input CreateDocumentInput) (Document, error)
	DeleteDocument(ctx context.Context, id, ownerID int64) error
	CreateFolder(ctx context.Context, input CreateFolderInput) (Folder, error)

	CreateTask(ctx context.Context, input CreateTaskInput) (Task, error)
	ListTasksByOwner(ctx context.Context, ownerID int64) ([]Task, error)

	ListCommunities(ctx context.Context) ([]Community, error)
	CreateCommunity(ctx context.Context, input CreateCommunityInput) (Community, error)
	DeleteCommunity(ctx context.Context, id int64) error
}
