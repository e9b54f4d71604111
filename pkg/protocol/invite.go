package protocol

import (
	"encoding/json"
	"errors"
)

var ErrInvalidInvite = errors.New("invalid group invite payload")

// GroupInvitePayload describes a group and its membership. It is carried
// as the content of a DirectMessage with kind groupInvite, never as a
// top-level message.
type GroupInvitePayload struct {
	GroupID     string            `json:"groupId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	MemberIDs   []string          `json:"memberIds"`
	MemberNames map[string]string `json:"memberNames"`
	CreatorID   string            `json:"creatorId"`
	CreatedAtMs int64             `json:"createdAtMs"`
}

// Encode serializes the invite for embedding in a direct message.
func (p *GroupInvitePayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodeGroupInvite parses an invite payload from direct message content.
func DecodeGroupInvite(data []byte) (*GroupInvitePayload, error) {
	var p GroupInvitePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.GroupID == "" {
		return nil, ErrInvalidInvite
	}
	return &p, nil
}
