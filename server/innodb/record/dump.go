package record

import (
	"bufio"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/pipeking636/CS525/server/innodb/basic"
)

// Dump writes every live record as a snappy framed stream of text lines:
// a header naming the attributes, then "page:slot<TAB>value<TAB>...".
// It returns the number of records written.
func (t *Table) Dump(w io.Writer) (int, error) {
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	zw := snappy.NewBufferedWriter(w)

	header := "rid\t" + strings.Join(t.schema.AttrNames, "\t") + "\n"
	if _, err := io.WriteString(zw, header); err != nil {
		return 0, errors.Wrap(basic.ErrWriteFailed, err.Error())
	}

	scan, err := t.StartScan(nil)
	if err != nil {
		return 0, err
	}
	defer scan.Close()

	rec, err := CreateRecord(t.schema)
	if err != nil {
		return 0, err
	}
	count := 0
	for {
		err := scan.Next(rec)
		if errors.Is(err, basic.ErrNoMoreTuples) {
			break
		}
		if err != nil {
			return count, err
		}
		line, err := FormatRecord(rec, t.schema)
		if err != nil {
			return count, err
		}
		if _, err := io.WriteString(zw, rec.ID.String()+"\t"+line+"\n"); err != nil {
			return count, errors.Wrap(basic.ErrWriteFailed, err.Error())
		}
		count++
	}

	if err := zw.Close(); err != nil {
		return count, errors.Wrap(basic.ErrWriteFailed, err.Error())
	}
	return count, nil
}

// ReadDump decodes a stream produced by Dump into its text lines.
func ReadDump(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(snappy.NewReader(r))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(basic.ErrReadFailed, err.Error())
	}
	return lines, nil
}

// FormatRecord renders the attribute values of rec separated by tabs.
func FormatRecord(rec *basic.Record, schema *basic.Schema) (string, error) {
	values, err := RecordValues(rec, schema)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\t"), nil
}
