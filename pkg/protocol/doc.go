// Package protocol implements the compact binary encoding of host
// mutation frames.
//
// The server normally sends JSON frames. When binary ops are enabled, ops
// frames are sent as WebSocket binary messages in this encoding instead;
// hello and error frames stay JSON.
//
// # Encoding
//
//   - Varint: unsigned integers, protobuf-style, 7 bits per byte
//   - Length-prefixed: strings prefixed with their varint byte length
//
// # Ops Frame
//
//	[Version: 1 byte][Flags: 1 byte][Seq: varint]
//	[Path: len-prefixed, if FlagPath][Count: varint][Op]*
//
// Each op carries its kind and a presence mask, followed only by the
// fields the mask names, in this order:
//
//	[Kind: 1 byte][Mask: 1 byte]
//	[Handle: varint][Parent: varint][Ref: varint]
//	[Name: len-prefixed][Value: len-prefixed]
//
// A SetText on handle 7 with a three-byte value encodes in 7 bytes.
package protocol
