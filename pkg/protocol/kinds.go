package protocol

// kindCode enumerates the kinds the client understands natively.
type kindCode uint8

const (
	kindOther kindCode = iota
	kindText
	kindImage
	kindVideo
	kindAudio
	kindDocument
	kindLocation
	kindContact
	kindGroupInvite
	kindContactRequest
	kindContactAccepted
	kindVibe
	kindReadReceipt
	kindProfileUpdate
)

// MessageKind identifies what a direct or group message carries. Each kind
// has a canonical lowercase-camel wire tag. Tags this client does not
// recognize decode to an unknown kind that preserves the raw tag, so a
// newer peer never breaks an older one.
type MessageKind struct {
	code kindCode
	raw  string // raw wire tag, set only for unknown kinds
}

// Known message kinds.
var (
	KindText            = MessageKind{code: kindText}
	KindImage           = MessageKind{code: kindImage}
	KindVideo           = MessageKind{code: kindVideo}
	KindAudio           = MessageKind{code: kindAudio}
	KindDocument        = MessageKind{code: kindDocument}
	KindLocation        = MessageKind{code: kindLocation}
	KindContact         = MessageKind{code: kindContact}
	KindGroupInvite     = MessageKind{code: kindGroupInvite}
	KindContactRequest  = MessageKind{code: kindContactRequest}
	KindContactAccepted = MessageKind{code: kindContactAccepted}
	KindVibe            = MessageKind{code: kindVibe}
	KindReadReceipt     = MessageKind{code: kindReadReceipt}
	KindProfileUpdate   = MessageKind{code: kindProfileUpdate}
)

var kindTags = map[kindCode]string{
	kindText:            "text",
	kindImage:           "image",
	kindVideo:           "video",
	kindAudio:           "audio",
	kindDocument:        "document",
	kindLocation:        "location",
	kindContact:         "contact",
	kindGroupInvite:     "groupInvite",
	kindContactRequest:  "contactRequest",
	kindContactAccepted: "contactAccepted",
	kindVibe:            "vibe",
	kindReadReceipt:     "readReceipt",
	kindProfileUpdate:   "profileUpdate",
}

var kindsByTag = func() map[string]MessageKind {
	m := make(map[string]MessageKind, len(kindTags))
	for code, tag := range kindTags {
		m[tag] = MessageKind{code: code}
	}
	return m
}()

// KindFromTag resolves a wire tag to a MessageKind. Unrecognized tags
// yield an unknown kind carrying the raw tag; they are never an error.
func KindFromTag(tag string) MessageKind {
	if k, ok := kindsByTag[tag]; ok {
		return k
	}
	return MessageKind{code: kindOther, raw: tag}
}

// Tag returns the canonical wire tag for the kind. For unknown kinds it
// returns the raw tag observed on the wire.
func (k MessageKind) Tag() string {
	if k.code == kindOther {
		return k.raw
	}
	return kindTags[k.code]
}

// Known reports whether the kind is part of the closed enumeration this
// client understands.
func (k MessageKind) Known() bool {
	return k.code != kindOther
}

// String implements fmt.Stringer.
func (k MessageKind) String() string {
	return k.Tag()
}
