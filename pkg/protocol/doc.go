// Package protocol implements the Six7 chat message protocol.
//
// The protocol package defines the message types, encodings, and the
// backward-compatible decode chain used by the Six7 chatroom client.
//
// # Protocol Generations
//
// Three generations of the protocol are decodable at the same time:
//
// Wire v1.3 (current):
//   - Binary encoding with an 8-byte header (magic, version, type)
//   - Length-prefixed fields, big-endian byte order
//
// JSON v1.1 (historical):
//   - camelCase JSON objects (id, content, timestamp, messageType, groupId)
//
// Plain text v1.0 (legacy):
//   - Free-form UTF-8 text of the shape "<name>@<idPrefix>: <text>"
//
// Encoders always emit the current wire format. Decoders try the
// generations in priority order and accept the first that parses; see
// DecodeGroupPayload and DecodeDirectPayload.
//
// # Header Format
//
// Every wire v1.3 record starts with an 8-byte header:
//   - Magic (4 bytes): Protocol identifier (0x53495837 = "SIX7")
//   - Version (2 bytes): Protocol version (0x0103 = v1.3)
//   - Type (2 bytes): Record type
//
// # Trust Model
//
// The sender's identity is authenticated by the transport layer and is
// never taken from payload content. Names embedded in payloads are
// display hints only and must not be used for authorization.
package protocol
