// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/message.go -package=mocks . Message,Part

// Part is one leaf of a message's MIME tree. Multipart containers are never
// exposed as parts.
type Part interface {
	// MediaType is the lower-cased content type without parameters, e.g. "text/html".
	MediaType() string
	Filename() string
	IsAttachment() bool
	// Payload is the transfer-decoded content of the part.
	Payload() []byte
}

// Message is a read-only view of a parsed message.
type Message interface {
	// Header returns the decoded, unfolded value of the first header with the
	// given name. Names are case-insensitive.
	Header(name string) (string, bool)
	Parts() []Part
}
