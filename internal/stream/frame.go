// Package stream implements the note change broadcast core: the connection
// registry, the event encoder, the fan-out broadcaster and subscriber
// onboarding (snapshot then live feed).
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/Strob0t/notestream/internal/domain/event"
)

// ErrUnknownKind is returned when encoding an event whose kind is neither add nor remove.
var ErrUnknownKind = errors.New("unknown event kind")

// Frame is an encoded event. Payload is the bare JSON object; SSE is the
// same object in Server-Sent Events framing.
type Frame struct {
	Payload []byte
	SSE     []byte
}

// payload is the JSON object sent to subscribers. Field order is part of the
// wire format.
type payload struct {
	Type   string `json:"type"`
	Query  string `json:"query"`
	NoteID int64  `json:"noteId"`
}

var (
	ssePrefix = []byte("data: ")
	sseSuffix = []byte("\n\n")
)

// Encode serializes ev as compact JSON with non-ASCII and HTML characters
// left literal, and wraps it as `data: <json>\n\n`. The output is
// byte-identical for identical input.
func Encode(ev event.Event) (Frame, error) {
	if !ev.Kind.Valid() {
		return Frame{}, fmt.Errorf("encode note %d: %w: %s", ev.NoteID, ErrUnknownKind, ev.Kind)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload{Type: ev.Kind.String(), Query: ev.Text, NoteID: ev.NoteID}); err != nil {
		return Frame{}, fmt.Errorf("encode note %d: %w", ev.NoteID, err)
	}
	body := unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))

	sse := make([]byte, 0, len(ssePrefix)+len(body)+len(sseSuffix))
	sse = append(sse, ssePrefix...)
	sse = append(sse, body...)
	sse = append(sse, sseSuffix...)

	return Frame{Payload: body, SSE: sse}, nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into literal UTF-8, so every non-ASCII
// character reaches subscribers unescaped. An escaped backslash followed
// by "u2028" is literal text and is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+5 < len(b) && string(b[i+2:i+5]) == "202" && (b[i+5] == '8' || b[i+5] == '9') {
			r := '\u2028'
			if b[i+5] == '9' {
				r = '\u2029'
			}
			out = utf8.AppendRune(out, r)
			i += 5
			continue
		}
		// Any other escape: copy both bytes so an escaped backslash is
		// never read as the start of a new escape.
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
