package archive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/rs/zerolog"
)

// Decoder parses the archive record grammar. Structural problems are
// handled per record kind (see recoveryPolicy): directory records are
// resynchronized past with a warning, file records abort the remainder.
type Decoder struct {
	logger   zerolog.Logger
	warnings []string
}

// NewDecoder returns a Decoder ready to parse one archive.
func NewDecoder() *Decoder {
	return &Decoder{logger: logging.GetLogger("archive.decoder")}
}

// Warnings returns the recoverable problems reported during the last Parse.
func (d *Decoder) Warnings() []string {
	return d.warnings
}

func (d *Decoder) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.warnings = append(d.warnings, msg)
	d.logger.Warn().Msg(msg)
}

// Parse reads the archive as a line sequence and returns its records.
// Records parsed before a fatal format error are returned alongside it.
func (d *Decoder) Parse(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var records []Record

	for {
		line, ok, err := readLine(br)
		if err != nil {
			return records, errors.Wrap(err, errors.ErrFileRead, "failed to read archive")
		}
		if !ok {
			return records, nil
		}

		switch {
		case strings.HasPrefix(line, dirHeader):
			rec, err := d.parseDir(br, strings.TrimSpace(strings.TrimPrefix(line, dirHeader)))
			if err != nil {
				// recoverAndContinue: reported, record skipped, parsing resumes
				continue
			}
			records = append(records, rec)

		case strings.HasPrefix(line, fileHeader):
			rec, err := d.parseFile(br, strings.TrimSpace(strings.TrimPrefix(line, fileHeader)))
			if err != nil {
				// abortParse: the remainder cannot be trusted
				return records, err
			}
			records = append(records, rec)

		default:
			// Blank or unrecognized lines between records are skipped.
		}
	}
}

// parseDir consumes the remainder of a directory record (the closing
// sentinel). Per KindDir's recoverAndContinue policy, a wrong or missing
// sentinel is reported but the record is still produced, and the sentinel's
// line is consumed so the next line is treated as the next record header.
func (d *Decoder) parseDir(br *bufio.Reader, path string) (Record, error) {
	if err := validatePath(path); err != nil {
		d.warnf("skipping directory record: %v", err)
		// consume the sentinel so parsing realigns
		_, _, _ = readLine(br)
		return Record{}, err
	}

	sentinel, ok, err := readLine(br)
	if err == nil && (!ok || sentinel != dirSentinel) {
		d.warnf("directory record %q: expected %s, got %q", path, dirSentinel, sentinel)
	}
	return Record{Kind: KindDir, Path: path}, nil
}

// parseFile consumes the remainder of a file record: SIZE line, one payload
// line, and the closing sentinel. Per KindFile's abortParse policy any
// deviation is fatal for the rest of the archive.
func (d *Decoder) parseFile(br *bufio.Reader, path string) (Record, error) {
	if err := validatePath(path); err != nil {
		return Record{}, err
	}

	sizeLine, ok, err := readLine(br)
	if err != nil {
		return Record{}, errors.Wrap(err, errors.ErrFileRead, "failed to read archive")
	}
	if !ok || !strings.HasPrefix(sizeLine, sizeHeader) {
		return Record{}, errors.Newf(errors.ErrArchiveFormat,
			"file record %q: missing %s line", path, strings.TrimSpace(sizeHeader))
	}
	declared, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(sizeLine, sizeHeader)))
	if err != nil {
		return Record{}, errors.Wrapf(err, errors.ErrArchiveFormat,
			"file record %q: malformed size", path)
	}

	payload, ok, err := readLine(br)
	if err != nil {
		return Record{}, errors.Wrap(err, errors.ErrFileRead, "failed to read archive")
	}
	if !ok {
		return Record{}, errors.Newf(errors.ErrArchiveFormat,
			"file record %q: missing payload", path)
	}

	sentinel, ok, err := readLine(br)
	if err != nil {
		return Record{}, errors.Wrap(err, errors.ErrFileRead, "failed to read archive")
	}
	if !ok || sentinel != fileSentinel {
		return Record{}, errors.Newf(errors.ErrArchiveFormat,
			"file record %q: expected %s, got %q", path, fileSentinel, sentinel)
	}

	// Declared length is a consistency check only; the actual payload is
	// authoritative. Mismatches are surfaced downstream by the applier.
	return Record{Kind: KindFile, Path: path, Payload: payload, DeclaredLen: declared}, nil
}

// readLine returns the next line without its terminator. ok is false once
// the input is exhausted. Payload lines can be arbitrarily long, which rules
// out a fixed-buffer scanner here.
func readLine(br *bufio.Reader) (line string, ok bool, err error) {
	line, err = br.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}
