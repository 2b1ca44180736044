package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taaskly/taaskly/internal/app/ports"
	"github.com/taaskly/taaskly/internal/db"
)

const timeLayout = time.RFC3339Nano

// Store is the sqlite-backed implementation of AppStore.
type Store struct {
	database *db.Database
}

// NewStore constructs a sqlite adapter around the shared connection.
func NewStore(database *db.Database) *Store {
	return &Store{database: database}
}

var _ ports.AppStore = (*Store)(nil)

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value int64) sql.NullInt64 {
	if value <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value, Valid: true}
}

// scopeClause renders the privacy predicate for an optional viewer.
func scopeClause(scope ports.Scope) (string, []any) {
	if scope.ViewerID == nil {
		return "privacy = 'public'", nil
	}
	return "(privacy = 'public' OR owner_id = ?)", []any{*scope.ViewerID}
}

func orderColumn(order ports.ListOrder) string {
	if order == ports.OrderUpdatedDesc {
		return "updated_at"
	}
	return "created_at"
}

// FindCommunityByID returns the community or nil when absent.
func (s *Store) FindCommunityByID(ctx context.Context, id int64) (*ports.Community, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`SELECT id, name, access_token FROM communities WHERE id = ?`, id)
	var community ports.Community
	if err := row.Scan(&community.ID, &community.Name, &community.AccessToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

const userColumns = `id, username, COALESCE(workplace_id, ''), COALESCE(community_id, 0)`

func scanUser(row interface{ Scan(...any) error }) (ports.User, error) {
	var user ports.User
	err := row.Scan(&user.ID, &user.Username, &user.WorkplaceID, &user.CommunityID)
	return user, err
}

// FindUserByWorkplaceID returns the user linked to a platform identity,
// or nil for an unlinked caller.
func (s *Store) FindUserByWorkplaceID(ctx context.Context, workplaceID string) (*ports.User, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE workplace_id = ?`, workplaceID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID returns the user or nil when absent.
func (s *Store) FindUserByID(ctx context.Context, id int64) (*ports.User, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUser links a platform identity to a local account, creating it
// on first login.
func (s *Store) UpsertUser(ctx context.Context, input ports.UpsertUserInput) (ports.User, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`INSERT INTO users (username, workplace_id, community_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(workplace_id) DO UPDATE SET
		   username = excluded.username,
		   community_id = COALESCE(excluded.community_id, users.community_id)
		 RETURNING `+userColumns,
		input.Username, nullString(input.WorkplaceID), nullInt64(input.CommunityID), now())
	return scanUser(row)
}

const documentColumns = `id, name, content, privacy, owner_id, folder_id, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (ports.Document, error) {
	var doc ports.Document
	var privacy string
	var folderID sql.NullInt64
	var createdAt, updatedAt string
	err := row.Scan(&doc.ID, &doc.Name, &doc.Content, &privacy, &doc.OwnerID, &folderID, &createdAt, &updatedAt)
	if err != nil {
		return ports.Document{}, err
	}
	doc.Privacy = ports.Privacy(privacy)
	if folderID.Valid {
		doc.FolderID = &folderID.Int64
	}
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	return doc, nil
}

// FindDocumentByID returns a document visible under the scope, or nil.
func (s *Store) FindDocumentByID(ctx context.Context, id int64, scope ports.Scope) (*ports.Document, error) {
	cond, args := scopeClause(scope)
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = ? AND %s`, documentColumns, cond)
	row := s.database.DB().QueryRowContext(ctx, query, append([]any{id}, args...)...)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns documents matching the query, newest first.
func (s *Store) ListDocuments(ctx context.Context, query ports.DocumentQuery) ([]ports.Document, error) {
	cond, args := scopeClause(query.Scope)
	sb := strings.Builder{}
	fmt.Fprintf(&sb, `SELECT %s FROM documents WHERE %s`, documentColumns, cond)
	if query.FolderID != nil {
		sb.WriteString(` AND folder_id = ?`)
		args = append(args, *query.FolderID)
	}
	fmt.Fprintf(&sb, ` ORDER BY %s DESC`, orderColumn(query.Order))
	if query.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, query.Limit)
	}

	rows, err := s.database.DB().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// CreateDocument inserts a new document.
func (s *Store) CreateDocument(ctx context.Context, input ports.CreateDocumentInput) (ports.Document, error) {
	var folderID sql.NullInt64
	if input.FolderID != nil {
		folderID = sql.NullInt64{Int64: *input.FolderID, Valid: true}
	}
	ts := now()
	row := s.database.DB().QueryRowContext(ctx,
		`INSERT INTO documents (name, content, privacy, owner_id, folder_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+documentColumns,
		input.Name, input.Content, string(input.Privacy), input.OwnerID, folderID, ts, ts)
	return scanDocument(row)
}

// DeleteDocument removes a document owned by the caller.
func (s *Store) DeleteDocument(ctx context.Context, id, ownerID int64) error {
	_, err := s.database.DB().ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND owner_id = ?`, id, ownerID)
	return err
}

const folderColumns = `id, name, privacy, owner_id, created_at`

func scanFolder(row interface{ Scan(...any) error }) (ports.Folder, error) {
	var folder ports.Folder
	var privacy string
	var createdAt string
	err := row.Scan(&folder.ID, &folder.Name, &privacy, &folder.OwnerID, &createdAt)
	if err != nil {
		return ports.Folder{}, err
	}
	folder.Privacy = ports.Privacy(privacy)
	folder.CreatedAt = parseTime(createdAt)
	return folder, nil
}

// FindFolderByID returns a folder visible under the scope, or nil.
func (s *Store) FindFolderByID(ctx context.Context, id int64, scope ports.Scope) (*ports.Folder, error) {
	cond, args := scopeClause(scope)
	query := fmt.Sprintf(`SELECT %s FROM folders WHERE id = ? AND %s`, folderColumns, cond)
	row := s.database.DB().QueryRowContext(ctx, query, append([]any{id}, args...)...)
	folder, err := scanFolder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &folder, nil
}

// ListFolders returns folders matching the query, newest first.
func (s *Store) ListFolders(ctx context.Context, query ports.FolderQuery) ([]ports.Folder, error) {
	cond, args := scopeClause(query.Scope)
	stmt := fmt.Sprintf(`SELECT %s FROM folders WHERE %s ORDER BY created_at DESC`, folderColumns, cond)
	if query.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, query.Limit)
	}

	rows, err := s.database.DB().QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, folder)
	}
	return out, rows.Err()
}

// CreateFolder inserts a new folder.
func (s *Store) CreateFolder(ctx context.Context, input ports.CreateFolderInput) (ports.Folder, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`INSERT INTO folders (name, privacy, owner_id, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+folderColumns,
		input.Name, string(input.Privacy), input.OwnerID, now())
	return scanFolder(row)
}

const taskColumns = `t.id, t.title, COALESCE(t.priority, ''), t.completed, t.owner_id, t.created_at,
	u.id, u.username, COALESCE(u.workplace_id, ''), COALESCE(u.community_id, 0)`

func scanTask(row interface{ Scan(...any) error }) (ports.Task, error) {
	var task ports.Task
	var completed int64
	var createdAt string
	err := row.Scan(
		&task.ID, &task.Title, &task.Priority, &completed, &task.OwnerID, &createdAt,
		&task.Owner.ID, &task.Owner.Username, &task.Owner.WorkplaceID, &task.Owner.CommunityID,
	)
	if err != nil {
		return ports.Task{}, err
	}
	task.Completed = completed != 0
	task.CreatedAt = parseTime(createdAt)
	return task, nil
}

// FindTaskByID returns the task with its owner, or nil when absent.
func (s *Store) FindTaskByID(ctx context.Context, id int64) (*ports.Task, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t JOIN users u ON u.id = t.owner_id
		 WHERE t.id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// ListTasks returns every task with its owner.
func (s *Store) ListTasks(ctx context.Context) ([]ports.Task, error) {
	rows, err := s.database.DB().QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t JOIN users u ON u.id = t.owner_id
		 ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListTasksByOwner returns the tasks owned by one user.
func (s *Store) ListTasksByOwner(ctx context.Context, ownerID int64) ([]ports.Task, error) {
	rows, err := s.database.DB().QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t JOIN users u ON u.id = t.owner_id
		 WHERE t.owner_id = ?
		 ORDER BY t.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]ports.Task, error) {
	out := make([]ports.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, input ports.CreateTaskInput) (ports.Task, error) {
	var id int64
	err := s.database.DB().QueryRowContext(ctx,
		`INSERT INTO tasks (title, priority, owner_id, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		input.Title, nullString(input.Priority), input.OwnerID, now()).Scan(&id)
	if err != nil {
		return ports.Task{}, err
	}
	task, err := s.FindTaskByID(ctx, id)
	if err != nil {
		return ports.Task{}, err
	}
	return *task, nil
}

// SetTaskCompleted persists the completion flag.
func (s *Store) SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error {
	value := int64(0)
	if completed {
		value = 1
	}
	_, err := s.database.DB().ExecContext(ctx,
		`UPDATE tasks SET completed = ? WHERE id = ?`, value, taskID)
	return err
}

// AddTaskSubscriber adds a user to the task's subscriber set.
func (s *Store) AddTaskSubscriber(ctx context.Context, taskID, userID int64) error {
	_, err := s.database.DB().ExecContext(ctx,
		`INSERT OR IGNORE INTO task_subscribers (task_id, user_id, created_at) VALUES (?, ?, ?)`,
		taskID, userID, now())
	return err
}

// RemoveTaskSubscriber removes a user from the task's subscriber set.
func (s *Store) RemoveTaskSubscriber(ctx context.Context, taskID, userID int64) error {
	_, err := s.database.DB().ExecContext(ctx,
		`DELETE FROM task_subscribers WHERE task_id = ? AND user_id = ?`, taskID, userID)
	return err
}

// ListTaskSubscribers returns the task's subscribers in join order.
func (s *Store) ListTaskSubscribers(ctx context.Context, taskID int64) ([]ports.User, error) {
	rows, err := s.database.DB().QueryContext(ctx,
		`SELECT u.id, u.username, COALESCE(u.workplace_id, ''), COALESCE(u.community_id, 0)
		 FROM task_subscribers ts JOIN users u ON u.id = ts.user_id
		 WHERE ts.task_id = ?
		 ORDER BY ts.created_at, u.id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// ListCommunities returns all registered communities.
func (s *Store) ListCommunities(ctx context.Context) ([]ports.Community, error) {
	rows, err := s.database.DB().QueryContext(ctx,
		`SELECT id, name, access_token FROM communities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.Community, 0)
	for rows.Next() {
		var community ports.Community
		if err := rows.Scan(&community.ID, &community.Name, &community.AccessToken); err != nil {
			return nil, err
		}
		out = append(out, community)
	}
	return out, rows.Err()
}

// CreateCommunity registers a community.
func (s *Store) CreateCommunity(ctx context.Context, input ports.CreateCommunityInput) (ports.Community, error) {
	row := s.database.DB().QueryRowContext(ctx,
		`INSERT INTO communities (name, access_token, created_at)
		 VALUES (?, ?, ?)
		 RETURNING id, name, access_token`,
		input.Name, input.AccessToken, now())
	var community ports.Community
	err := row.Scan(&community.ID, &community.Name, &community.AccessToken)
	return community, err
}

// DeleteCommunity removes a community.
func (s *Store) DeleteCommunity(ctx context.Context, id int64) error {
	_, err := s.database.DB().ExecContext(ctx,
		`DELETE FROM communities WHERE id = ?`, id)
	return err
}
