// Package eml extracts text from RFC 5322 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/extractors/html"
	"github.com/custodia-labs/intrafact/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// maxNesting bounds multipart recursion.
const maxNesting = 8

// headers are written ahead of the body, in this order.
var headers = []string{"From", "To", "Date", "Subject"}

// Extractor handles EML documents.
type Extractor struct {
	html *html.Extractor
}

// New creates a new EML extractor.
func New() *Extractor {
	return &Extractor{html: html.New()}
}

// SupportedTypes returns the declared file types this extractor handles.
func (e *Extractor) SupportedTypes() []string {
	return []string{"eml"}
}

// Extract returns the main headers followed by the message body.
// Plain text parts are preferred over HTML parts; attachments are skipped.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: parse message: %v", domain.ErrExtraction, err)
	}

	body, err := e.body(ctx, msg.Header, msg.Body, 0)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, name := range headers {
		if v := decodeHeader(msg.Header.Get(name)); v != "" {
			fmt.Fprintf(&out, "%s: %s\n", name, v)
		}
	}
	if body = strings.TrimSpace(body); body != "" {
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(body)
	}
	return strings.TrimSpace(out.String()), nil
}

// header is satisfied by mail.Header and textproto.MIMEHeader.
type header interface {
	Get(key string) string
}

func (e *Extractor) body(ctx context.Context, h header, r io.Reader, depth int) (string, error) {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxNesting || params["boundary"] == "" {
			return "", nil
		}
		return e.multipart(ctx, r, params["boundary"], depth+1)
	}

	content, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), r))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrExtraction, err)
	}

	switch mediaType {
	case "text/html":
		return e.html.Extract(ctx, content)
	case "text/plain":
		return plaintext.Decode(content)
	default:
		return "", nil
	}
}

func (e *Extractor) multipart(ctx context.Context, r io.Reader, boundary string, depth int) (string, error) {
	mr := multipart.NewReader(r, boundary)
	var plain, rich []string

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: read part: %v", domain.ErrExtraction, err)
		}
		if isAttachment(part.Header.Get("Content-Disposition")) {
			continue
		}

		mediaType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		text, err := e.body(ctx, part.Header, part, depth)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if mediaType == "text/html" {
			rich = append(rich, text)
		} else {
			plain = append(plain, text)
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n\n"), nil
	}
	return strings.Join(rich, "\n\n"), nil
}

func isAttachment(disposition string) bool {
	d, _, err := mime.ParseMediaType(disposition)
	return err == nil && d == "attachment"
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

// decodeHeader decodes RFC 2047 encoded words, keeping the raw value on failure.
func decodeHeader(v string) string {
	if v == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(v)
	if err != nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(decoded)
}
