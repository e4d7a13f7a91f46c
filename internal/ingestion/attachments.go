package ingestion

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/profile-architect/internal/types"
	"golang.org/x/sync/errgroup"
)

// MaxAttachmentBytes caps a single attachment.
const MaxAttachmentBytes = 20 << 20

// maxConcurrentReads bounds parallel attachment reads.
const maxConcurrentReads = 4

var (
	// ErrInvalidDataURL is returned when a data URL cannot be decoded
	ErrInvalidDataURL = errors.New("invalid data URL")
	// ErrAttachmentTooLarge is returned when an attachment exceeds MaxAttachmentBytes
	ErrAttachmentTooLarge = errors.New("attachment too large")
)

// LoadAttachments reads every source concurrently and returns the attachments in source order.
// A source is either a data URL or a file path. Any failure aborts the whole batch.
func LoadAttachments(ctx context.Context, sources []string) ([]types.Attachment, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	out := make([]types.Attachment, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			att, err := LoadAttachment(src)
			if err != nil {
				return fmt.Errorf("attachment %d: %w", i+1, err)
			}
			out[i] = att
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadAttachment reads a single data URL or file.
func LoadAttachment(source string) (types.Attachment, error) {
	if strings.HasPrefix(source, "data:") {
		return ParseDataURL(source)
	}
	return readAttachmentFile(source)
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string. The payload is everything
// after the first comma; the MIME type defaults to application/octet-stream.
func ParseDataURL(s string) (types.Attachment, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return types.Attachment{}, fmt.Errorf("%w: missing header", ErrInvalidDataURL)
	}

	meta := strings.TrimPrefix(header, "data:")
	isBase64 := strings.HasSuffix(meta, ";base64")
	meta = strings.TrimSuffix(meta, ";base64")
	mimeType, _, _ := strings.Cut(meta, ";")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return types.Attachment{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return types.Attachment{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
		}
		data = []byte(unescaped)
	}

	if len(data) > MaxAttachmentBytes {
		return types.Attachment{}, ErrAttachmentTooLarge
	}
	return types.Attachment{Data: data, MIMEType: mimeType}, nil
}

// EncodeDataURL is the inverse of ParseDataURL.
func EncodeDataURL(a types.Attachment) string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

func readAttachmentFile(path string) (types.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Attachment{}, fmt.Errorf("file not found: %w", err)
		}
		return types.Attachment{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxAttachmentBytes {
		return types.Attachment{}, fmt.Errorf("%s: %w", path, ErrAttachmentTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Attachment{}, fmt.Errorf("failed to read file: %w", err)
	}
	return types.Attachment{Data: data, MIMEType: DetectMIMEType(path, data)}, nil
}

// DetectMIMEType picks a MIME type from the file extension, falling back to content sniffing.
func DetectMIMEType(path string, data []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			mediaType, _, err := mime.ParseMediaType(t)
			if err == nil {
				return mediaType
			}
		}
	}
	mediaType, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}
