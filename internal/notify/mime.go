package notify

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
)

// buildMIME renders msg as an RFC 5322 message with an HTML body.
func buildMIME(msg Message) []byte {
	headers := [][2]string{
		{"From", msg.From},
		{"To", strings.Join(msg.To, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b bytes.Buffer
	for _, h := range headers {
		if h[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	return b.Bytes()
}
