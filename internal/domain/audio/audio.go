// Package audio holds the in-memory encoded audio clip produced by a recording or upload.
package audio

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrEmpty signals an empty audio buffer.
var ErrEmpty = errors.New("audio is empty")

// DefaultFilename is the filename hint used when the source did not provide one.
const DefaultFilename = "audio.mp3"

// MaxSize is the largest clip accepted by the speech-to-text provider.
const MaxSize = 25 << 20

// extensions lists the container formats accepted by the speech-to-text provider.
var extensions = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// Clip is an encoded audio buffer (immutable value object).
type Clip struct {
	data     []byte
	mime     string
	filename string
	digest   string
}

// New validates and creates a Clip. The data is copied.
// filename is a hint for the provider; mime is derived from it or sniffed from the data.
func New(data []byte, filename string) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, ErrEmpty
	}
	if len(data) > MaxSize {
		return Clip{}, errors.New("audio too large (max 25MB)")
	}

	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = DefaultFilename
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	sum := sha256.Sum256(buf)
	return Clip{
		data:     buf,
		mime:     detectMIME(buf, filename),
		filename: filename,
		digest:   hex.EncodeToString(sum[:]),
	}, nil
}

// Read consumes r fully and creates a Clip from its contents.
func Read(r io.Reader, filename string) (Clip, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return Clip{}, err
	}
	return New(data, filename)
}

// Bytes returns the encoded audio. Callers must not modify the slice.
func (c Clip) Bytes() []byte { return c.data }

// Reader returns a fresh reader positioned at the start of the clip.
func (c Clip) Reader() *bytes.Reader { return bytes.NewReader(c.data) }

// MIME returns the detected container type.
func (c Clip) MIME() string { return c.mime }

// Filename returns the filename hint.
func (c Clip) Filename() string { return c.filename }

// Digest returns the hex SHA-256 of the encoded bytes.
func (c Clip) Digest() string { return c.digest }

// Size returns the clip length in bytes.
func (c Clip) Size() int { return len(c.data) }

// IsZero reports whether the clip holds no audio.
func (c Clip) IsZero() bool { return len(c.data) == 0 }

func detectMIME(data []byte, filename string) string {
	if m, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return m
	}
	return http.DetectContentType(data)
}
