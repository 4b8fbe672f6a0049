package kanka

// EntityType is the closed set of entity types the bridge supports.
type EntityType string

const (
	TypeCharacter    EntityType = "character"
	TypeCreature     EntityType = "creature"
	TypeLocation     EntityType = "location"
	TypeOrganization EntityType = "organization"
	TypeRace         EntityType = "race"
	TypeNote         EntityType = "note"
	TypeJournal      EntityType = "journal"
	TypeQuest        EntityType = "quest"
)

// EntityTypes enumerates the supported types in their stable order.
// Multi-type fetches merge results in this order.
var EntityTypes = []EntityType{
	TypeCharacter,
	TypeCreature,
	TypeLocation,
	TypeOrganization,
	TypeRace,
	TypeNote,
	TypeJournal,
	TypeQuest,
}

// The API spells one type differently than we do. The mapping stays
// inside this package; nothing above it ever sees "organisation".
var endpointByType = map[EntityType]string{
	TypeCharacter:    "characters",
	TypeCreature:     "creatures",
	TypeLocation:     "locations",
	TypeOrganization: "organisations",
	TypeRace:         "races",
	TypeNote:         "notes",
	TypeJournal:      "journals",
	TypeQuest:        "quests",
}

var typeByWire = map[string]EntityType{
	"character":    TypeCharacter,
	"creature":     TypeCreature,
	"location":     TypeLocation,
	"organisation": TypeOrganization,
	"race":         TypeRace,
	"note":         TypeNote,
	"journal":      TypeJournal,
	"quest":        TypeQuest,
}

// Valid reports whether t is one of the supported entity types.
func (t EntityType) Valid() bool {
	_, ok := endpointByType[t]
	return ok
}

// TypeFromWire maps the API's own type vocabulary onto ours.
func TypeFromWire(wire string) (EntityType, bool) {
	t, ok := typeByWire[wire]
	return t, ok
}

// Entity is a full record from one of the typed endpoints. Entry is
// raw HTML as stored by the API; translation happens above this layer.
type Entity struct {
	ID        int    `json:"id"`
	EntityID  int    `json:"entity_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Entry     string `json:"entry"`
	Tags      []int  `json:"tags"`
	IsPrivate bool   `json:"is_private"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// EntityStub is the minimal record the search endpoint returns.
type EntityStub struct {
	EntityID int        `json:"entity_id"`
	Name     string     `json:"name"`
	Type     EntityType `json:"-"`
}

// EntityRecord is one row of the campaign-wide entities endpoint,
// where id is the public entity id and child_id the typed record id.
type EntityRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	ChildID   int    `json:"child_id"`
	UpdatedAt string `json:"updated_at"`
}

// Post is a note attached to an entity.
type Post struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Entry     string `json:"entry"`
	IsPrivate bool   `json:"is_private"`
}

// Tag is the API's tag record; the bridge exposes tags by name only.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EntityPayload is the write shape for create and update calls.
// Nil pointers are omitted so updates stay partial.
type EntityPayload struct {
	Name      string  `json:"name"`
	Type      *string `json:"type,omitempty"`
	Entry     *string `json:"entry,omitempty"`
	Tags      []int   `json:"tags,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

// PostPayload is the write shape for post create and update calls.
type PostPayload struct {
	Name      string  `json:"name"`
	Entry     *string `json:"entry,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

// ListOptions narrows a typed list call with the few filters the
// remote API actually honors.
type ListOptions struct {
	Name     string
	LastSync string
}
