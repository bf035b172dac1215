package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ChatID is an opaque chat identifier issued by the messaging platform.
// Telegram sends it as a JSON number; it is stored and compared as its decimal string.
type ChatID string

// ChatIDFromInt converts a numeric chat identifier
func ChatIDFromInt(id int64) ChatID {
	return ChatID(strconv.FormatInt(id, 10))
}

// IsEmpty reports whether no chat is set
func (id ChatID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Int64 returns the numeric form of the chat identifier.
// Channel usernames such as "@field_ops" have no numeric form and return ok=false.
func (id ChatID) Int64() (int64, bool) {
	v, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// String returns the string representation of ChatID
func (id ChatID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return goerr.Wrap(err, "invalid chat ID string")
		}
		*id = ChatID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return goerr.Wrap(err, "invalid chat ID", goerr.V("raw", string(data)))
	}
	v, err := n.Int64()
	if err != nil {
		return goerr.Wrap(err, "chat ID is not an integer", goerr.V("raw", string(data)))
	}
	*id = ChatIDFromInt(v)
	return nil
}
