package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// Backends disagree on the key names of an identity.  These lists are tried
// in order; the first present key wins.
var (
	idKeys   = []string{"user_id", "id", "userId"}
	nameKeys = []string{"username", "name", "user_name"}
	roleKeys = []string{"role", "user_role"}
)

// NormalizeIdentity maps any identity-shaped response into model.Identity.
// It is the only place that knows about alternate key names.  ok is false
// when no usable user id is present.
func NormalizeIdentity(raw map[string]any) (id model.Identity, ok bool) {
	for _, k := range idKeys {
		if n, good := asUint(raw[k]); good {
			id.UserID = n
			ok = true
			break
		}
	}
	for _, k := range nameKeys {
		if s, good := raw[k].(string); good && s != "" {
			id.Name = s
			break
		}
	}
	id.Role = model.RoleUser
	for _, k := range roleKeys {
		if s, good := raw[k].(string); good && s != "" {
			id.Role = strings.ToLower(s)
			break
		}
	}
	return id, ok
}

// decodeIdentity parses a JSON object with number precision preserved and
// normalizes it.
func decodeIdentity(data json.RawMessage) (map[string]any, model.Identity, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		return nil, model.Identity{}, false
	}
	id, ok := NormalizeIdentity(raw)
	return raw, id, ok
}

func asUint(v any) (uint64, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := strconv.ParseUint(t.String(), 10, 64)
		return n, err == nil && n > 0
	case float64:
		return uint64(t), t > 0 && t == float64(uint64(t))
	case int:
		return uint64(t), t > 0
	case int64:
		return uint64(t), t > 0
	case uint64:
		return t, t > 0
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		return n, err == nil && n > 0
	}
	return 0, false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}
