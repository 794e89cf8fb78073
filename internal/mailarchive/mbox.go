package mailarchive

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Unit identifies one monthly archive file.
type Unit struct {
	Year  int
	Month int
	Path  string
}

// UnitFromPath derives the archive year and month from an mbox file name of
// the form <list>_<domain>-<year>-<month>.mbox.
func UnitFromPath(path string) (Unit, error) {
	name := filepath.Base(path)
	stem, _, _ := strings.Cut(name, ".")
	parts := strings.Split(stem, "-")
	if len(parts) < 2 {
		return Unit{}, fmt.Errorf("cannot derive year/month from file name %s", name)
	}

	year, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return Unit{}, fmt.Errorf("invalid year in file name %s: %w", name, err)
	}
	month, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return Unit{}, fmt.Errorf("invalid month in file name %s: %w", name, err)
	}

	return Unit{Year: year, Month: month, Path: path}, nil
}

// RawMessage is one undecoded message pulled out of an mbox file.
type RawMessage struct {
	Key     string
	Subject string
	Date    string
	Sender  string
	body    io.Reader
	header  mail.Header
}

// ReadMessages splits an mbox stream on "From " separator lines and parses
// each message's headers. Bodies are kept as raw readers for payload
// extraction.
func ReadMessages(r io.Reader) ([]RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		messages []RawMessage
		current  strings.Builder
		started  bool
		index    int
	)

	flush := func() error {
		if !started || current.Len() == 0 {
			return nil
		}
		msg, err := parseRaw(current.String(), index)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
		index++
		current.Reset()
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "From ") {
			if err := flush(); err != nil {
				return nil, err
			}
			started = true
			continue
		}
		if started {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mbox: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return messages, nil
}

// ReadMessagesFile opens path and reads every message it contains.
func ReadMessagesFile(path string) ([]RawMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mbox %s: %w", path, err)
	}
	defer file.Close()

	return ReadMessages(file)
}

func parseRaw(raw string, index int) (RawMessage, error) {
	parsed, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return RawMessage{}, fmt.Errorf("parse message %d: %w", index, err)
	}

	body, err := io.ReadAll(parsed.Body)
	if err != nil {
		return RawMessage{}, fmt.Errorf("read message %d body: %w", index, err)
	}

	return RawMessage{
		Key:     strconv.Itoa(index),
		Subject: parsed.Header.Get("Subject"),
		Date:    parsed.Header.Get("Date"),
		Sender:  parsed.Header.Get("From"),
		body:    strings.NewReader(string(body)),
		header:  parsed.Header,
	}, nil
}

// Payloads extracts every textual payload variant from the message,
// excluding HTML mirrors of the plain-text body, PGP key blocks, and
// whitespace-free blobs, then deduplicates identical copies. Multipart
// messages frequently repeat the same text across parts.
func (m RawMessage) Payloads() ([]string, error) {
	raw, err := io.ReadAll(m.body)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	candidates, err := splitParts(m.header.Get("Content-Type"), string(raw))
	if err != nil {
		return nil, err
	}

	var (
		kept []string
		seen = map[string]struct{}{}
	)
	for _, payload := range candidates {
		if isHTMLMirror(payload) || isNonProse(payload) {
			continue
		}
		if _, ok := seen[payload]; ok {
			continue
		}
		seen[payload] = struct{}{}
		kept = append(kept, payload)
	}

	return kept, nil
}

func splitParts(contentType, body string) ([]string, error) {
	if contentType == "" {
		return []string{body}, nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Malformed content types are common in old archives; treat the
		// body as a single plain payload.
		return []string{body}, nil
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return []string{body}, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("multipart message without boundary")
	}

	var payloads []string
	reader := multipart.NewReader(strings.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart: %w", err)
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}

		nested, err := splitParts(part.Header.Get("Content-Type"), string(content))
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, nested...)
	}

	return payloads, nil
}

// isHTMLMirror reports whether the payload looks like an HTML copy of the
// plain-text body.
func isHTMLMirror(payload string) bool {
	return strings.Contains(payload, "<html>") ||
		strings.Contains(payload, "</html>") ||
		strings.Contains(payload, "<div>") ||
		strings.Contains(payload, "</div>")
}

// isNonProse reports whether the payload is a key block or similar blob: a
// PGP signature marker, or no whitespace at all.
func isNonProse(payload string) bool {
	return !strings.Contains(payload, " ") || strings.Contains(payload, "PGP SIGNATURE")
}
