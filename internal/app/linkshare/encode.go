package linkshare

import (
	"fmt"
	"time"

	"github.com/taaskly/taaskly/internal/app/ports"
)

const (
	descriptionLimit = 200
	iconAsset        = "taaskly.png"

	privacyOrganization = "organization"
	privacyAccessible   = "accessible"
	privacyPersonalized = "personalized"

	itemTypeDoc    = "doc"
	itemTypeFolder = "folder"
	itemTypeTask   = "task"

	actionTypePostbackButton = "postback_button"
)

// Postback button payloads understood by the postback handler.
const (
	PayloadTaskClose   = "Task.Close"
	PayloadTaskReopen  = "Task.Reopen"
	PayloadSubscribe   = "Subscribe"
	PayloadUnsubscribe = "Unsubscribe"
)

// Config carries the values the encoders need to build absolute URLs.
// The base URL is threaded explicitly; encoders never read the environment.
type Config struct {
	BaseURL string
}

// Item is the externally specified encoding of a previewable entity.
type Item struct {
	Link           string      `json:"link"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Privacy        string      `json:"privacy"`
	Icon           string      `json:"icon,omitempty"`
	DownloadURL    string      `json:"download_url,omitempty"`
	CanonicalLink  string      `json:"canonical_link,omitempty"`
	Type           string      `json:"type"`
	Actions        []Action    `json:"actions,omitempty"`
	AdditionalData []DataEntry `json:"additional_data,omitempty"`
}

// Action is a postback button attached to a task item.
type Action struct {
	Value    string `json:"value"`
	Color    string `json:"color"`
	Payload  string `json:"payload"`
	Disabled bool   `json:"disabled"`
	Type     string `json:"type"`
}

// DataEntry is one row of task metadata shown under the preview.
type DataEntry struct {
	Title  string `json:"title"`
	Format string `json:"format"`
	Value  any    `json:"value"`
	Color  string `json:"color,omitempty"`
}

func (c Config) entityURL(kind RefKind, id int64) string {
	return fmt.Sprintf("%s%s/%d", c.BaseURL, kind, id)
}

func (c Config) iconURL() string {
	return c.BaseURL + iconAsset
}

// TasksFolderURL is the well-known link of the synthetic tasks collection.
func (c Config) TasksFolderURL() string {
	return c.BaseURL + "personalized-tasks"
}

func sharePrivacy(privacy ports.Privacy) string {
	if privacy == ports.PrivacyPublic {
		return privacyOrganization
	}
	return privacyAccessible
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// encodeDocument renders a document item. An empty link falls back to
// the document's canonical URL.
func encodeDocument(cfg Config, link string, doc ports.Document) Item {
	canonical := cfg.entityURL(RefDocument, doc.ID)
	if link == "" {
		link = canonical
	}
	return Item{
		Link:          link,
		Title:         doc.Name,
		Description:   truncate(doc.Content, descriptionLimit),
		Privacy:       sharePrivacy(doc.Privacy),
		Icon:          cfg.iconURL(),
		DownloadURL:   fmt.Sprintf("%sdownload/%d/", cfg.BaseURL, doc.ID),
		CanonicalLink: canonical,
		Type:          itemTypeDoc,
	}
}

// encodeFolder renders a folder item.
func encodeFolder(cfg Config, link string, folder ports.Folder) Item {
	canonical := cfg.entityURL(RefFolder, folder.ID)
	if link == "" {
		link = canonical
	}
	return Item{
		Link:          link,
		Title:         folder.Name,
		Privacy:       sharePrivacy(folder.Privacy),
		CanonicalLink: canonical,
		Type:          itemTypeFolder,
	}
}

// tasksFolderItem is the synthetic "Tasks" entry offered at the top of
// the default collection.
func tasksFolderItem(cfg Config) Item {
	return Item{
		Link:    cfg.TasksFolderURL(),
		Title:   "Tasks",
		Privacy: privacyPersonalized,
		Type:    itemTypeFolder,
	}
}

func priorityColor(priority string) string {
	switch priority {
	case "high":
		return "red"
	case "medium":
		return "orange"
	}
	return "yellow"
}

// encodeTask renders a task item for a linked viewer. The subscriber
// set must already reflect any mutation applied by the caller.
func encodeTask(cfg Config, link string, viewer ports.User, task ports.Task, subscribers []ports.User) Item {
	canonical := cfg.entityURL(RefTask, task.ID)
	if link == "" {
		link = canonical
	}

	additionalData := []DataEntry{ownerEntry(task.Owner)}
	additionalData = append(additionalData, DataEntry{
		Title:  "Created",
		Format: "datetime",
		Value:  task.CreatedAt.Format(time.RFC3339),
	})
	if task.Priority != "" {
		additionalData = append(additionalData, DataEntry{
			Title:  "Priority",
			Format: "text",
			Value:  task.Priority,
			Color:  priorityColor(task.Priority),
		})
	}

	toggle := Action{
		Value:    "Close",
		Color:    "red",
		Payload:  PayloadTaskClose,
		Disabled: false,
		Type:     actionTypePostbackButton,
	}
	if task.Completed {
		toggle.Value = "Reopen"
		toggle.Payload = PayloadTaskReopen
	}

	subscription := Action{
		Value:    PayloadSubscribe,
		Color:    "red",
		Payload:  PayloadSubscribe,
		Disabled: false,
		Type:     actionTypePostbackButton,
	}
	if isSubscribed(viewer, subscribers) {
		subscription.Value = PayloadUnsubscribe
		subscription.Payload = PayloadUnsubscribe
	}

	return Item{
		Link:           link,
		Title:          task.Title,
		Privacy:        privacyPersonalized,
		Icon:           cfg.iconURL(),
		CanonicalLink:  canonical,
		Type:           itemTypeTask,
		Actions:        []Action{toggle, subscription},
		AdditionalData: additionalData,
	}
}

// ownerEntry favors the owner's platform identity when present.
func ownerEntry(owner ports.User) DataEntry {
	if owner.Linked() {
		return DataEntry{Title: "Owner", Format: "user", Value: owner.WorkplaceID}
	}
	return DataEntry{Title: "Owner", Format: "text", Value: owner.Username}
}

func isSubscribed(viewer ports.User, subscribers []ports.User) bool {
	for _, sub := range subscribers {
		if sub.WorkplaceID == viewer.WorkplaceID {
			return true
		}
	}
	return false
}
