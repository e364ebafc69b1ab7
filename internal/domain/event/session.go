package event

import "fmt"

// NewPresenter announces who is driving the session.
type NewPresenter struct {
	header
	presenterHash *string
}

// NewNewPresenter builds a presenter announcement. hash may be nil.
func NewNewPresenter(hash *string, opts ...Option) (NewPresenter, error) {
	return NewPresenter{header: newHeader(opts), presenterHash: clonePtr(hash)}, nil
}

func (NewPresenter) Kind() Kind         { return KindNewPresenter }
func (NewPresenter) SchemaVersion() int { return 1 }
func (NewPresenter) Validate() error    { return nil }

// PresenterHash returns the opaque presenter id.
func (e NewPresenter) PresenterHash() (string, bool) { return deref(e.presenterHash) }

// Payload implements Event.
func (e NewPresenter) Payload() Record {
	r := Record{}
	putString(r, "presenter_hash", e.presenterHash)
	return r
}

func (e NewPresenter) String() string {
	return fmt.Sprintf("NewPresenter(presenter_hash=%s)", quoteOpt(e.presenterHash))
}

// NewParticipant marks a participant joining.
type NewParticipant struct {
	header
}

// NewNewParticipant builds the marker event.
func NewNewParticipant(opts ...Option) (NewParticipant, error) {
	return NewParticipant{header: newHeader(opts)}, nil
}

func (NewParticipant) Kind() Kind         { return KindNewParticipant }
func (NewParticipant) SchemaVersion() int { return 1 }
func (NewParticipant) Validate() error    { return nil }
func (NewParticipant) Payload() Record    { return Record{} }
func (NewParticipant) String() string     { return "NewParticipant()" }

// SharedKeyRequest asks the presenter for the shared session key.
type SharedKeyRequest struct {
	header
	key *string
}

// NewSharedKeyRequest builds a key request. key may be nil.
func NewSharedKeyRequest(key *string, opts ...Option) (SharedKeyRequest, error) {
	return SharedKeyRequest{header: newHeader(opts), key: clonePtr(key)}, nil
}

func (SharedKeyRequest) Kind() Kind         { return KindSharedKeyRequest }
func (SharedKeyRequest) SchemaVersion() int { return 1 }
func (SharedKeyRequest) Validate() error    { return nil }

// Key returns the opaque key material.
func (e SharedKeyRequest) Key() (string, bool) { return deref(e.key) }

// Payload implements Event.
func (e SharedKeyRequest) Payload() Record {
	r := Record{}
	putString(r, "key", e.key)
	return r
}

func (e SharedKeyRequest) String() string {
	return fmt.Sprintf("SharedKeyRequest(key=%s)", redact(e.key))
}

// SharedKeyResponse carries the shared session key back.
type SharedKeyResponse struct {
	header
	key *string
}

// NewSharedKeyResponse builds a key response. key may be nil.
func NewSharedKeyResponse(key *string, opts ...Option) (SharedKeyResponse, error) {
	return SharedKeyResponse{header: newHeader(opts), key: clonePtr(key)}, nil
}

func (SharedKeyResponse) Kind() Kind         { return KindSharedKeyResponse }
func (SharedKeyResponse) SchemaVersion() int { return 1 }
func (SharedKeyResponse) Validate() error    { return nil }

// Key returns the opaque key material.
func (e SharedKeyResponse) Key() (string, bool) { return deref(e.key) }

// Payload implements Event.
func (e SharedKeyResponse) Payload() Record {
	r := Record{}
	putString(r, "key", e.key)
	return r
}

func (e SharedKeyResponse) String() string {
	return fmt.Sprintf("SharedKeyResponse(key=%s)", redact(e.key))
}

// GetSession asks for the current session details.
type GetSession struct {
	header
	user *string
	app  *string
}

// NewGetSession builds a session query. Both identifiers are optional.
func NewGetSession(user, app *string, opts ...Option) (GetSession, error) {
	return GetSession{header: newHeader(opts), user: clonePtr(user), app: clonePtr(app)}, nil
}

func (GetSession) Kind() Kind         { return KindGetSession }
func (GetSession) SchemaVersion() int { return 1 }
func (GetSession) Validate() error    { return nil }

// User returns the requesting user.
func (e GetSession) User() (string, bool) { return deref(e.user) }

// App returns the requesting application.
func (e GetSession) App() (string, bool) { return deref(e.app) }

// Payload implements Event.
func (e GetSession) Payload() Record {
	r := Record{}
	putString(r, "user", e.user)
	putString(r, "app", e.app)
	return r
}

func (e GetSession) String() string {
	return fmt.Sprintf("GetSession(user=%s, app=%s)", quoteOpt(e.user), quoteOpt(e.app))
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func quoteOpt(p *string) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprintf("%q", *p)
}

// Key material never shows up in diagnostics.
func redact(p *string) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprintf("<%d chars>", len(*p))
}
