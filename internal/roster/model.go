package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MemberID identifies a member within the team document. Documents written by
// other tools may carry ids as numeric strings; both forms decode.
type MemberID int64

// UnmarshalJSON accepts a JSON number or a string holding a number.
func (id *MemberID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, ok := parseLooseID(s)
	if !ok {
		return fmt.Errorf("member id %q is not numeric", s)
	}
	*id = v
	return nil
}

// parseLooseID parses a numeric id the way a path parameter is compared
// against stored ids: surrounding whitespace is ignored and integral floats
// such as "1.7e12" are accepted.
func parseLooseID(s string) (MemberID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return MemberID(v), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return MemberID(int64(f)), true
}

// Member is one entry in the roster.
type Member struct {
	ID        MemberID `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Portfolio string   `json:"portfolio"`
	Image     string   `json:"image"`
	AddedAt   string   `json:"added_at"`

	// legacyID holds the stored id verbatim when it is not an integer, such
	// as "abc" or 1.5. ID is zero for those members.
	legacyID string
}

type memberFields Member

// UnmarshalJSON decodes a member, keeping ids that are not integers instead
// of rejecting the whole document.
func (m *Member) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID json.RawMessage `json:"id"`
		memberFields
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = Member(aux.memberFields)

	raw := bytes.TrimSpace(aux.ID)
	if len(raw) == 0 {
		return nil
	}
	if err := m.ID.UnmarshalJSON(raw); err != nil {
		m.ID = 0
		m.legacyID = string(raw)
	}
	return nil
}

// MarshalJSON writes a legacy id back unchanged.
func (m Member) MarshalJSON() ([]byte, error) {
	id := json.RawMessage(strconv.FormatInt(int64(m.ID), 10))
	if m.legacyID != "" {
		id = json.RawMessage(m.legacyID)
	}
	return json.Marshal(struct {
		ID json.RawMessage `json:"id"`
		memberFields
	}{ID: id, memberFields: memberFields(m)})
}

// LegacyID returns the stored id when it is not an integer, or "".
func (m Member) LegacyID() string {
	return m.legacyID
}

// matchesID reports whether a path id refers to m. Integer ids compare
// numerically; legacy ids compare by text, or numerically when both sides
// are numbers.
func (m Member) matchesID(rawID string) bool {
	if m.legacyID == "" {
		id, ok := parseLooseID(rawID)
		return ok && m.ID == id
	}

	want := strings.TrimSpace(rawID)
	if want == "" {
		return false
	}
	stored := m.legacyID
	var s string
	if json.Unmarshal([]byte(stored), &s) == nil {
		stored = s
	}
	stored = strings.TrimSpace(stored)
	if stored == want {
		return true
	}
	a, errA := strconv.ParseFloat(stored, 64)
	b, errB := strconv.ParseFloat(want, 64)
	return errA == nil && errB == nil && a == b
}

// Document is the single stored roster document. Revision is the optimistic
// concurrency token; stores reject a Put whose Revision is stale.
type Document struct {
	Members      []Member `json:"team_members"`
	TotalMembers int      `json:"total_members"`
	LastUpdated  string   `json:"last_updated,omitempty"`
	Revision     int64    `json:"revision"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Members = append([]Member(nil), d.Members...)
	return &c
}

// normalize enforces total_members == len(team_members) and a non-nil slice.
func (d *Document) normalize() {
	if d.Members == nil {
		d.Members = []Member{}
	}
	d.TotalMembers = len(d.Members)
}

// touch prepares the document for a write at the given instant.
func (d *Document) touch(now time.Time) {
	d.normalize()
	d.LastUpdated = FormatTimestamp(now)
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
