// Package archive reads and writes the character export container: a ZIP holding
// character_data.json and the sheet images, or a bare JSON file from older exports.
//
// Images are stored under their extension, so the MIME type of a data URL comes
// back from Parse in its canonical lower-case form (image/PNG and image/jpg both
// return as image/png and image/jpeg). CanonicalDataURL applies the same mapping.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"

	"github.com/klauspost/compress/zip"
	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

const (
	// DataFileName is the JSON entry holding the record
	DataFileName = "character_data.json"

	// ImagesDir holds one entry per image
	ImagesDir = "images"

	// MaxEntrySize bounds a single decompressed entry
	MaxEntrySize = 64 << 20
)

var (
	// ErrMissingCharacterData is returned for a ZIP without character_data.json
	ErrMissingCharacterData = sheeterr.InvalidArgument("archive does not contain " + DataFileName)

	// ErrUnreadableArchive is returned when the bytes are neither JSON nor a ZIP
	ErrUnreadableArchive = sheeterr.InvalidArgument("file is neither character data nor a readable archive")

	// ErrUnsupportedPayload is returned when Build gets something it cannot serialize
	ErrUnsupportedPayload = sheeterr.InvalidArgument("unsupported payload for character archive")
)

var imageEntry = regexp.MustCompile(`^image_(\d+)\.([A-Za-z0-9]+)$`)

// Result is a parsed export
type Result struct {
	Record *character.Record
	Images []string
}

// Build writes rec and the data URL images into a ZIP archive.
// The record is written without its images; they live under images/.
func Build(rec *character.Record, images []string) ([]byte, error) {
	if rec == nil {
		return nil, sheeterr.Wrap(ErrUnsupportedPayload, "character record is required")
	}

	stripped := *rec
	stripped.Character.Images = nil

	data, err := json.MarshalIndent(&stripped, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal character data: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeEntry(zw, DataFileName, data); err != nil {
		return nil, err
	}

	for i, img := range images {
		mime, payload, err := DecodeDataURL(img)
		if err != nil {
			return nil, sheeterr.Wrapf(err, "image %d", i)
		}
		ext, err := ExtensionFor(mime)
		if err != nil {
			return nil, sheeterr.Wrapf(err, "image %d", i)
		}
		name := path.Join(ImagesDir, fmt.Sprintf("image_%d.%s", i, ext))
		if err := writeEntry(zw, name, payload); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse reads either a bare JSON export or a ZIP archive.
// JSON is tried first; images of a bare JSON export come from character.images.
func Parse(data []byte) (*Result, error) {
	if gjson.ValidBytes(data) {
		rec, err := character.Normalize(data)
		if err != nil {
			return nil, err
		}
		images := rec.Character.Images
		rec.Character.Images = nil
		return &Result{Record: rec, Images: images}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, ErrUnreadableArchive.Message)
	}

	var (
		record *character.Record
		images []indexedImage
	)
	for _, f := range zr.File {
		switch {
		case f.Name == DataFileName:
			raw, err := readEntry(f)
			if err != nil {
				return nil, err
			}
			record, err = character.Normalize(raw)
			if err != nil {
				return nil, err
			}
		case path.Dir(f.Name) == ImagesDir:
			m := imageEntry.FindStringSubmatch(path.Base(f.Name))
			if m == nil {
				continue
			}
			index, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			raw, err := readEntry(f)
			if err != nil {
				return nil, err
			}
			images = append(images, indexedImage{
				index: index,
				url:   EncodeDataURL(MIMEFor(m[2]), raw),
			})
		}
	}

	if record == nil {
		return nil, ErrMissingCharacterData
	}

	// entry order inside the ZIP is not trusted, the numeric suffix is
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].index < images[j].index
	})

	result := &Result{Record: record}
	for _, img := range images {
		result.Images = append(result.Images, img.url)
	}
	return result, nil
}

type indexedImage struct {
	index int
	url   string
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, ErrUnreadableArchive.Message)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxEntrySize+1))
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, ErrUnreadableArchive.Message)
	}
	if len(data) > MaxEntrySize {
		return nil, sheeterr.InvalidArgumentf("archive entry %s is too large", f.Name)
	}
	return data, nil
}
