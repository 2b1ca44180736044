package linkshare

// linkTopic is the webhook topic this service subscribes to.
const linkTopic = "link"

// Change field tags routed by Dispatch.
const (
	FieldPreview    = "preview"
	FieldCollection = "collection"
	FieldPostback   = "postback"
)

// Envelope is the webhook body delivered by the collaboration platform.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one webhook entry.
type Entry struct {
	Changes []Change `json:"changes"`
}

// Change is one field change inside an entry.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries the change payload: the shared link, the calling
// community and user, and for postbacks the button payload.
type Value struct {
	Link      string `json:"link,omitempty"`
	Community Actor  `json:"community"`
	User      Actor  `json:"user"`
	Payload   string `json:"payload,omitempty"`
}

// Actor identifies a community or user on the platform.
type Actor struct {
	ID string `json:"id"`
}

// readChange validates the envelope shape and unwraps its single change.
func readChange(env Envelope) (Change, error) {
	if env.Object != linkTopic {
		return Change{}, ErrInvalidTopic
	}
	if len(env.Entry) != 1 {
		return Change{}, ErrMalformed
	}
	if len(env.Entry[0].Changes) != 1 {
		return Change{}, ErrMalformed
	}
	return env.Entry[0].Changes[0], nil
}
