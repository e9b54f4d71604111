package protocol

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Protocol limits and topic names.
const (
	// MaxMessageSize is the largest payload either consumer will decode.
	MaxMessageSize = 65536

	// MaxTopicLength bounds wire topic strings.
	MaxTopicLength = 256

	// IdentityLength is the fixed length of a peer identity in hex chars.
	IdentityLength = 64

	// GroupIDLength is the length of a group identifier (UUID string).
	GroupIDLength = 36

	// RoomTopicPrefix prefixes room names to form pub/sub topics.
	RoomTopicPrefix = "chat/"

	// TopicPrefixGroup prefixes group identifiers used by the mobile app.
	TopicPrefixGroup = "six7-groups:"

	// TopicVibes is the shared topic for anonymous vibe matching.
	TopicVibes = "six7-vibes"

	// LegacyAckToken is the plain-bytes acknowledgment sent by peers that
	// predate the structured ack format.
	LegacyAckToken = "received"
)

// DirectMessage is a 1:1 message between peers. The sender identity is
// authenticated by the transport layer; nothing in the payload is trusted
// for authorization.
type DirectMessage struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
	MessageType string `json:"messageType"`
}

// NewDirectMessage creates a direct message of the given kind.
func NewDirectMessage(content string, kind MessageKind) *DirectMessage {
	return &DirectMessage{
		ID:          RandomID(),
		Content:     content,
		Timestamp:   NowUnixMilli(),
		MessageType: kind.Tag(),
	}
}

// NewTextMessage creates a plain text direct message.
func NewTextMessage(content string) *DirectMessage {
	return NewDirectMessage(content, KindText)
}

// NewContactRequest creates a contact request carrying the sender's
// display name.
func NewContactRequest(displayName string) *DirectMessage {
	return NewDirectMessage(displayName, KindContactRequest)
}

// NewContactAccepted creates a contact acceptance carrying the sender's
// display name.
func NewContactAccepted(displayName string) *DirectMessage {
	return NewDirectMessage(displayName, KindContactAccepted)
}

// NewReadReceipt creates a read receipt referencing the given message ids.
// The receipt id is deterministic ("rr-" + timestamp) and the content is
// the comma-joined list of referenced ids.
func NewReadReceipt(messageIDs []string) *DirectMessage {
	now := NowUnixMilli()
	return &DirectMessage{
		ID:          fmt.Sprintf("rr-%d", now),
		Content:     strings.Join(messageIDs, ","),
		Timestamp:   now,
		MessageType: KindReadReceipt.Tag(),
	}
}

// Kind resolves the message's wire tag.
func (m *DirectMessage) Kind() MessageKind {
	return KindFromTag(m.MessageType)
}

// GroupMessage is a broadcast message within a logical group. GroupID
// names the group, distinct from the raw pub/sub topic string.
type GroupMessage struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
	MessageType string `json:"messageType"`
	GroupID     string `json:"groupId"`
}

// NewGroupMessage creates a group message of the given kind.
func NewGroupMessage(content string, kind MessageKind, groupID string) *GroupMessage {
	return &GroupMessage{
		ID:          RandomID(),
		Content:     content,
		Timestamp:   NowUnixMilli(),
		MessageType: kind.Tag(),
		GroupID:     groupID,
	}
}

// NewGroupText creates a plain text group message.
func NewGroupText(content, groupID string) *GroupMessage {
	return NewGroupMessage(content, KindText, groupID)
}

// Kind resolves the message's wire tag.
func (m *GroupMessage) Kind() MessageKind {
	return KindFromTag(m.MessageType)
}

// AckResponse acknowledges receipt of a direct message.
type AckResponse struct {
	Ack bool `json:"ack"`
}

// AckSuccess returns the canonical positive acknowledgment.
func AckSuccess() AckResponse {
	return AckResponse{Ack: true}
}

// RoomTopic derives the wire topic string for a chatroom.
func RoomTopic(room string) string {
	return RoomTopicPrefix + room
}

// ValidIdentity reports whether s is a full-length hex peer identity.
func ValidIdentity(s string) bool {
	if len(s) != IdentityLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ShortID returns the 8-character identity prefix used for display and
// peer tracking. Shorter identities are returned whole.
func ShortID(identity string) string {
	if len(identity) <= 8 {
		return identity
	}
	return identity[:8]
}

// SanitizeText strips control characters other than newline and tab.
// Applied to rendered output only, never to stored or transmitted content.
func SanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NowUnixMilli returns the current time in Unix milliseconds.
func NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// RandomID generates a random 128-bit identifier rendered as 32 lowercase
// hex characters.
func RandomID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unreachable; fall back to a
		// timestamp so ids stay unique enough for display purposes.
		return fmt.Sprintf("%032x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf[:])
}
