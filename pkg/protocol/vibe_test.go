package protocol

import (
	"errors"
	"testing"
)

func TestVibePayloadRoundtrip(t *testing.T) {
	tests := []struct {
		name    string
		payload VibePayload
	}{
		{"commitment", VibeCommitment{VibeID: "v1", Commitment: CommitmentFor("secret")}},
		{"reveal", VibeReveal{VibeID: "v1", Secret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeVibePayload(tt.payload)
			if err != nil {
				t.Fatalf("EncodeVibePayload() error = %v", err)
			}

			decoded, err := DecodeVibePayload(encoded)
			if err != nil {
				t.Fatalf("DecodeVibePayload() error = %v", err)
			}
			if decoded != tt.payload {
				t.Errorf("roundtrip = %+v, want %+v", decoded, tt.payload)
			}
		})
	}
}

func TestDecodeVibePayloadUnknownType(t *testing.T) {
	_, err := DecodeVibePayload([]byte(`{"type":"wink","vibeId":"v1"}`))
	if !errors.Is(err, ErrUnknownVibeType) {
		t.Errorf("error = %v, want ErrUnknownVibeType", err)
	}
}

func TestCommitment(t *testing.T) {
	c := CommitmentFor("the secret")

	if len(c) != 64 {
		t.Errorf("CommitmentFor() length = %d, want 64", len(c))
	}
	if !VerifyCommitment(c, "the secret") {
		t.Error("VerifyCommitment() rejected matching secret")
	}
	if VerifyCommitment(c, "another secret") {
		t.Error("VerifyCommitment() accepted wrong secret")
	}
}

func TestGroupInviteRoundtrip(t *testing.T) {
	invite := &GroupInvitePayload{
		GroupID:     "b7a9c7a4-0b6a-4c36-9a0f-2f6f2c1d9e11",
		Name:        "weekend crew",
		Description: "plans and memes",
		MemberIDs:   []string{"id-a", "id-b"},
		MemberNames: map[string]string{"id-a": "alice", "id-b": "bob"},
		CreatorID:   "id-a",
		CreatedAtMs: 1714000000123,
	}

	encoded, err := invite.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := DecodeGroupInvite(encoded)
	if err != nil {
		t.Fatalf("DecodeGroupInvite() error = %v", err)
	}
	if decoded.GroupID != invite.GroupID || decoded.Name != invite.Name {
		t.Errorf("decoded = %+v, want %+v", decoded, invite)
	}
	if len(decoded.MemberIDs) != 2 || decoded.MemberNames["id-b"] != "bob" {
		t.Error("membership fields not preserved")
	}
}

func TestDecodeGroupInviteInvalid(t *testing.T) {
	if _, err := DecodeGroupInvite([]byte(`{}`)); err == nil {
		t.Error("DecodeGroupInvite() expected error for missing groupId")
	}
	if _, err := DecodeGroupInvite([]byte(`not json`)); err == nil {
		t.Error("DecodeGroupInvite() expected error for malformed payload")
	}
}
