package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taaskly/taaskly/internal/app/ports"
)

// APIRoutes is the authenticated JSON surface for documents, folders
// and tasks.
type APIRoutes struct {
	store ports.AppStore
}

// NewAPIRoutes constructs the authenticated API routes.
func NewAPIRoutes(store ports.AppStore) *APIRoutes {
	return &APIRoutes{store: store}
}

// RegisterRoutes registers the authenticated endpoints.
func (a *APIRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/documents", a.handleListDocuments, RequireAuth)
	s.POST("/documents", a.handleCreateDocument, RequireAuth)
	s.GET("/documents/:id", a.handleGetDocument, RequireAuth)
	s.DELETE("/documents/:id", a.handleDeleteDocument, RequireAuth)

	s.GET("/folders", a.handleListFolders, RequireAuth)
	s.POST("/folders", a.handleCreateFolder, RequireAuth)

	s.GET("/tasks", a.handleListTasks, RequireAuth)
	s.POST("/tasks", a.handleCreateTask, RequireAuth)
	s.POST("/tasks/:id/close", a.handleCloseTask, RequireAuth)
	s.POST("/tasks/:id/reopen", a.handleReopenTask, RequireAuth)
}

type documentView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Privacy   string `json:"privacy"`
	OwnerID   int64  `json:"owner_id"`
	FolderID  *int64 `json:"folder_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type folderView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Privacy   string `json:"privacy"`
	OwnerID   int64  `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

type taskView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Priority  string `json:"priority,omitempty"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

func documentToView(doc ports.Document) documentView {
	return documentView{
		ID:        doc.ID,
		Name:      doc.Name,
		Content:   doc.Content,
		Privacy:   string(doc.Privacy),
		OwnerID:   doc.OwnerID,
		FolderID:  doc.FolderID,
		CreatedAt: doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: doc.UpdatedAt.Format(time.RFC3339),
	}
}

func folderToView(folder ports.Folder) folderView {
	return folderView{
		ID:        folder.ID,
		Name:      folder.Name,
		Privacy:   string(folder.Privacy),
		OwnerID:   folder.OwnerID,
		CreatedAt: folder.CreatedAt.Format(time.RFC3339),
	}
}

func taskToView(task ports.Task) taskView {
	return taskView{
		ID:        task.ID,
		Title:     task.Title,
		Priority:  task.Priority,
		Completed: task.Completed,
		OwnerID:   task.OwnerID,
		CreatedAt: task.CreatedAt.Format(time.RFC3339),
	}
}

func viewerScope(c echo.Context) ports.Scope {
	user, _ := GetAuthUser(c)
	viewer := ports.User{ID: user.ID}
	return ports.ScopeFor(&viewer)
}

func parsePrivacy(raw string) (ports.Privacy, bool) {
	switch ports.Privacy(raw) {
	case ports.PrivacyPublic, ports.PrivacyPrivate:
		return ports.Privacy(raw), true
	case "":
		return ports.PrivacyPublic, true
	}
	return "", false
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (a *APIRoutes) handleListDocuments(c echo.Context) error {
	docs, err := a.store.ListDocuments(c.Request().Context(), ports.DocumentQuery{
		Scope: viewerScope(c),
		Order: ports.OrderUpdatedDesc,
	})
	if err != nil {
		return err
	}
	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, documentToView(doc))
	}
	return c.JSON(http.StatusOK, views)
}

func (a *APIRoutes) handleCreateDocument(c echo.Context) error {
	var payload struct {
		Name     string `json:"name"`
		Content  string `json:"content"`
		Privacy  string `json:"privacy"`
		FolderID *int64 `json:"folder_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if payload.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	privacy, ok := parsePrivacy(payload.Privacy)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid privacy"})
	}

	user, _ := GetAuthUser(c)
	doc, err := a.store.CreateDocument(c.Request().Context(), ports.CreateDocumentInput{
		Name:     payload.Name,
		Content:  payload.Content,
		Privacy:  privacy,
		OwnerID:  user.ID,
		FolderID: payload.FolderID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, documentToView(doc))
}

func (a *APIRoutes) handleGetDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	doc, err := a.store.FindDocumentByID(c.Request().Context(), id, viewerScope(c))
	if err != nil {
		return err
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "document not found"})
	}
	return c.JSON(http.StatusOK, documentToView(*doc))
}

func (a *APIRoutes) handleDeleteDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	user, _ := GetAuthUser(c)
	if err := a.store.DeleteDocument(c.Request().Context(), id, user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *APIRoutes) handleListFolders(c echo.Context) error {
	folders, err := a.store.ListFolders(c.Request().Context(), ports.FolderQuery{
		Scope: viewerScope(c),
	})
	if err != nil {
		return err
	}
	views := make([]folderView, 0, len(folders))
	for _, folder := range folders {
		views = append(views, folderToView(folder))
	}
	return c.JSON(http.StatusOK, views)
}

func (a *APIRoutes) handleCreateFolder(c echo.Context) error {
	var payload struct {
		Name    string `json:"name"`
		Privacy string `json:"privacy"`
	}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if payload.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	privacy, ok := parsePrivacy(payload.Privacy)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid privacy"})
	}

	user, _ := GetAuthUser(c)
	folder, err := a.store.CreateFolder(c.Request().Context(), ports.CreateFolderInput{
		Name:    payload.Name,
		Privacy: privacy,
		OwnerID: user.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, folderToView(folder))
}

func (a *APIRoutes) handleListTasks(c echo.Context) error {
	user, _ := GetAuthUser(c)
	tasks, err := a.store.ListTasksByOwner(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	views := make([]taskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, taskToView(task))
	}
	return c.JSON(http.StatusOK, views)
}

func (a *APIRoutes) handleCreateTask(c echo.Context) error {
	var payload struct {
		Title    string `json:"title"`
		Priority string `json:"priority"`
	}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if payload.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	switch payload.Priority {
	case "", "high", "medium", "low":
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid priority"})
	}

	user, _ := GetAuthUser(c)
	task, err := a.store.CreateTask(c.Request().Context(), ports.CreateTaskInput{
		Title:    payload.Title,
		Priority: payload.Priority,
		OwnerID:  user.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, taskToView(task))
}

func (a *APIRoutes) handleCloseTask(c echo.Context) error {
	return a.setTaskCompletion(c, true)
}

func (a *APIRoutes) handleReopenTask(c echo.Context) error {
	return a.setTaskCompletion(c, false)
}

func (a *APIRoutes) setTaskCompletion(c echo.Context, completed bool) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	task, err := a.store.FindTaskByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if task == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	user, _ := GetAuthUser(c)
	if task.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not your task"})
	}
	if err := a.store.SetTaskCompleted(c.Request().Context(), id, completed); err != nil {
		return err
	}
	task.Completed = completed
	return c.JSON(http.StatusOK, taskToView(*task))
}
