// Package protocol frames engine timing events for the host, using the
// Klipper message block layout: length, sequence, VLQ payload, CRC16, sync.
package protocol

// Frame layout constants
const (
	MessageMax         = 64 // Largest frame, header and trailer included
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)
