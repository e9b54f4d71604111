package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
)

// The decode chain interprets untrusted bytes that may have been produced
// by any of the three protocol generations. Each strategy is a pure
// function from bytes to an optional typed value; strategies are tried in
// priority order and the first success wins. Decoding is deterministic:
// the same bytes always yield the same result.

type groupStrategy func([]byte) (*GroupMessage, bool)

type directStrategy func([]byte) (*DirectMessage, bool)

var groupStrategies = []groupStrategy{
	decodeGroupWire,
	decodeGroupJSON,
}

var directStrategies = []directStrategy{
	decodeDirectWire,
	decodeDirectJSON,
}

// DecodeGroupPayload interprets inbound group-topic bytes as a structured
// GroupMessage. Oversized buffers are rejected before any parse attempt.
// A false return means the caller should fall back to legacy plain-text
// handling.
func DecodeGroupPayload(data []byte) (*GroupMessage, bool) {
	if len(data) > MaxMessageSize {
		return nil, false
	}
	for _, try := range groupStrategies {
		if m, ok := try(data); ok {
			return m, true
		}
	}
	return nil, false
}

// DecodeDirectPayload interprets inbound direct-message bytes as a
// structured DirectMessage. Oversized buffers are rejected before any
// parse attempt. A false return means the caller should treat the payload
// as raw text.
func DecodeDirectPayload(data []byte) (*DirectMessage, bool) {
	if len(data) > MaxMessageSize {
		return nil, false
	}
	for _, try := range directStrategies {
		if m, ok := try(data); ok {
			return m, true
		}
	}
	return nil, false
}

func decodeGroupWire(data []byte) (*GroupMessage, bool) {
	m, err := DecodeGroup(data)
	return m, err == nil
}

func decodeDirectWire(data []byte) (*DirectMessage, bool) {
	m, err := DecodeDirect(data)
	return m, err == nil
}

// decodeGroupJSON parses the historical JSON generation. The id,
// messageType, and groupId fields must all be present; anything looser
// would swallow legacy plain text that happens to contain braces.
func decodeGroupJSON(data []byte) (*GroupMessage, bool) {
	if !looksLikeJSON(data) {
		return nil, false
	}
	var m GroupMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	if m.ID == "" || m.MessageType == "" || m.GroupID == "" {
		return nil, false
	}
	return &m, true
}

func decodeDirectJSON(data []byte) (*DirectMessage, bool) {
	if !looksLikeJSON(data) {
		return nil, false
	}
	var m DirectMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	if m.ID == "" || m.MessageType == "" {
		return nil, false
	}
	return &m, true
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// LegacySenderName extracts the display name from a legacy plain-text
// group line of the shape "<name>@<idPrefix>: <text>". The name is
// whatever precedes the first '@' of the "name@prefix: " header. When the
// payload does not match the pattern, the authenticated sender's id
// prefix is returned instead.
func LegacySenderName(data []byte, senderPrefix string) string {
	text := string(data)
	header, _, found := strings.Cut(text, ": ")
	if !found {
		return senderPrefix
	}
	name, _, found := strings.Cut(header, "@")
	if !found {
		return senderPrefix
	}
	return name
}
