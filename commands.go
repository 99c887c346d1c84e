package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	perrors "github.com/pkg/errors"

	"github.com/pipeking636/CS525/server/innodb/basic"
	"github.com/pipeking636/CS525/server/innodb/buffer_pool"
	"github.com/pipeking636/CS525/server/innodb/record"
)

// CreateCmd creates an empty table.
type CreateCmd struct {
	Table string   `arg:"" help:"Table name."`
	Attrs []string `arg:"" help:"Attributes as name:type or name:string:length."`
	Keys  []string `name:"key" short:"k" help:"Key attribute names."`
}

func (c *CreateCmd) Run(a *app) error {
	schema, err := parseSchema(c.Attrs, c.Keys)
	if err != nil {
		return errors.Annotatef(err, "schema of %s", c.Table)
	}
	if err := record.CreateTable(a.cfg.TablePath(c.Table), schema); err != nil {
		return errors.Annotatef(classify(err), "create %s", c.Table)
	}
	fmt.Fprintf(a.out, "created %s\n", c.Table)
	return nil
}

// InfoCmd prints table metadata.
type InfoCmd struct {
	Table string `arg:"" help:"Table name."`
}

func (c *InfoCmd) Run(a *app) error {
	return a.withTable(c.Table, func(t *record.Table) error {
		schema := t.Schema()
		fmt.Fprintf(a.out, "table:       %s\n", t.Name())
		fmt.Fprintf(a.out, "file:        %s\n", t.FileName())
		fmt.Fprintf(a.out, "record size: %d\n", t.RecordSize())
		fmt.Fprintf(a.out, "tuples:      %d\n", t.NumTuples())
		fmt.Fprintf(a.out, "pages:       %d\n", t.TotalPages())
		fmt.Fprintf(a.out, "free list:   %d\n", t.FreeListHead())
		fmt.Fprintf(a.out, "schema:      %s\n", formatSchema(schema))
		return nil
	})
}

// InsertCmd inserts one record given as one value per attribute.
type InsertCmd struct {
	Table  string   `arg:"" help:"Table name."`
	Values []string `arg:"" help:"One value per attribute, in order."`
}

func (c *InsertCmd) Run(a *app) error {
	return a.withTable(c.Table, func(t *record.Table) error {
		rec, err := buildRecord(t.Schema(), c.Values)
		if err != nil {
			return errors.Trace(err)
		}
		if err := t.InsertRecord(rec); err != nil {
			return errors.Annotatef(classify(err), "insert into %s", c.Table)
		}
		fmt.Fprintln(a.out, rec.ID)
		return nil
	})
}

// GetCmd prints the record at a RID.
type GetCmd struct {
	Table string `arg:"" help:"Table name."`
	RID   string `arg:"" help:"Record id as page:slot."`
}

func (c *GetCmd) Run(a *app) error {
	rid, err := parseRID(c.RID)
	if err != nil {
		return errors.Trace(err)
	}
	return a.withTable(c.Table, func(t *record.Table) error {
		rec, err := record.CreateRecord(t.Schema())
		if err != nil {
			return errors.Trace(err)
		}
		if err := t.GetRecord(rid, rec); err != nil {
			return errors.Annotatef(classify(err), "get %s from %s", rid, c.Table)
		}
		line, err := record.FormatRecord(rec, t.Schema())
		if err != nil {
			return errors.Trace(err)
		}
		fmt.Fprintln(a.out, line)
		return nil
	})
}

// UpdateCmd overwrites the record at a RID.
type UpdateCmd struct {
	Table  string   `arg:"" help:"Table name."`
	RID    string   `arg:"" help:"Record id as page:slot."`
	Values []string `arg:"" help:"One value per attribute, in order."`
}

func (c *UpdateCmd) Run(a *app) error {
	rid, err := parseRID(c.RID)
	if err != nil {
		return errors.Trace(err)
	}
	return a.withTable(c.Table, func(t *record.Table) error {
		rec, err := buildRecord(t.Schema(), c.Values)
		if err != nil {
			return errors.Trace(err)
		}
		rec.ID = rid
		if err := t.UpdateRecord(rec); err != nil {
			return errors.Annotatef(classify(err), "update %s in %s", rid, c.Table)
		}
		fmt.Fprintln(a.out, rid)
		return nil
	})
}

// DeleteCmd removes the record at a RID.
type DeleteCmd struct {
	Table string `arg:"" help:"Table name."`
	RID   string `arg:"" help:"Record id as page:slot."`
}

func (c *DeleteCmd) Run(a *app) error {
	rid, err := parseRID(c.RID)
	if err != nil {
		return errors.Trace(err)
	}
	return a.withTable(c.Table, func(t *record.Table) error {
		if err := t.DeleteRecord(rid); err != nil {
			return errors.Annotatef(classify(err), "delete %s from %s", rid, c.Table)
		}
		fmt.Fprintln(a.out, rid)
		return nil
	})
}

// ScanCmd prints matching records, one per line, prefixed by their RID.
type ScanCmd struct {
	Table string `arg:"" help:"Table name."`
	Where string `name:"where" short:"w" help:"Equality filter attr=value."`
}

func (c *ScanCmd) Run(a *app) error {
	return a.withTable(c.Table, func(t *record.Table) error {
		schema := t.Schema()
		filter, err := parseFilter(schema, c.Where)
		if err != nil {
			return errors.Annotatef(err, "filter %q", c.Where)
		}
		scan, err := t.StartScan(filter)
		if err != nil {
			return errors.Trace(err)
		}
		defer scan.Close()

		rec, err := record.CreateRecord(schema)
		if err != nil {
			return errors.Trace(err)
		}
		for {
			err := scan.Next(rec)
			if perrors.Is(err, basic.ErrNoMoreTuples) {
				return nil
			}
			if err != nil {
				return errors.Annotatef(classify(err), "scan %s", c.Table)
			}
			line, err := record.FormatRecord(rec, schema)
			if err != nil {
				return errors.Trace(err)
			}
			fmt.Fprintf(a.out, "%s\t%s\n", rec.ID, line)
		}
	})
}

// DumpCmd exports a table.
type DumpCmd struct {
	Table string `arg:"" help:"Table name."`
	Out   string `name:"out" short:"o" required:"" help:"Destination file." type:"path"`
}

func (c *DumpCmd) Run(a *app) error {
	return a.withTable(c.Table, func(t *record.Table) error {
		f, err := os.Create(c.Out)
		if err != nil {
			return errors.Annotatef(classify(err), "create %s", c.Out)
		}
		n, err := t.Dump(f)
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			return errors.Annotatef(classify(err), "dump %s", c.Table)
		}
		fmt.Fprintf(a.out, "dumped %d records to %s\n", n, c.Out)
		return nil
	})
}

// CatDumpCmd decodes a file written by dump.
type CatDumpCmd struct {
	File string `arg:"" help:"Dump file." type:"existingfile"`
}

func (c *CatDumpCmd) Run(a *app) error {
	f, err := os.Open(c.File)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	lines, err := record.ReadDump(f)
	if err != nil {
		return errors.Annotatef(classify(err), "read %s", c.File)
	}
	for _, line := range lines {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// DropCmd deletes a table file.
type DropCmd struct {
	Table string `arg:"" help:"Table name."`
}

func (c *DropCmd) Run(a *app) error {
	if err := record.DeleteTable(a.cfg.TablePath(c.Table)); err != nil {
		return errors.Annotatef(classify(err), "drop %s", c.Table)
	}
	fmt.Fprintf(a.out, "dropped %s\n", c.Table)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	fmt.Fprintf(a.out, "cs525 %s\n", version)
	return nil
}

// withTable opens name with the configured pool, runs fn and closes the
// table. A close error is reported only when fn succeeded.
func (a *app) withTable(name string, fn func(t *record.Table) error) (err error) {
	t, err := record.OpenTableWithOptions(a.cfg.TablePath(name), a.cfg.PoolOptions())
	if err != nil {
		return errors.Annotatef(classify(err), "open %s", name)
	}
	defer func() {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = errors.Annotatef(classify(cerr), "close %s", name)
		}
	}()
	return fn(t)
}

// classify maps storage failures onto error kinds the CLI can tell apart.
// It must see the error before any juju annotation.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case buffer_pool.IsPoolExhausted(err):
		return errors.NewQuotaLimitExceeded(err, "buffer pool exhausted, raise [buffer_pool] frames")
	case buffer_pool.IsNotFound(err):
		return errors.NewNotFound(err, "")
	case buffer_pool.IsIOError(err):
		return errors.Annotate(err, "page store I/O")
	}
	return err
}

// parseSchema turns "name:type[:length]" defs into a schema.
func parseSchema(defs []string, keys []string) (*basic.Schema, error) {
	names := make([]string, len(defs))
	types := make([]basic.DataType, len(defs))
	lengths := make([]int, len(defs))
	index := make(map[string]int, len(defs))

	for i, def := range defs {
		parts := strings.Split(def, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, errors.NewNotValid(nil, fmt.Sprintf("attribute %q", def))
		}
		dt, err := basic.ParseDataType(parts[1])
		if err != nil {
			return nil, errors.Annotatef(err, "attribute %q", def)
		}
		switch {
		case dt == basic.DT_STRING && len(parts) != 3:
			return nil, errors.NewNotValid(nil, fmt.Sprintf("string attribute %q needs a length", def))
		case dt != basic.DT_STRING && len(parts) == 3:
			return nil, errors.NewNotValid(nil, fmt.Sprintf("only strings take a length: %q", def))
		case len(parts) == 3:
			n, err := strconv.Atoi(parts[2])
			if err != nil || n <= 0 {
				return nil, errors.NewNotValid(err, fmt.Sprintf("length in %q", def))
			}
			lengths[i] = n
		}
		if _, dup := index[parts[0]]; dup {
			return nil, errors.NewNotValid(nil, fmt.Sprintf("duplicate attribute %q", parts[0]))
		}
		index[parts[0]] = i
		names[i] = parts[0]
		types[i] = dt
	}

	keyAttrs := make([]int, 0, len(keys))
	for _, k := range keys {
		i, ok := index[k]
		if !ok {
			return nil, errors.NotFoundf("key attribute %q", k)
		}
		keyAttrs = append(keyAttrs, i)
	}
	return basic.NewSchema(names, types, lengths, keyAttrs)
}

func formatSchema(schema *basic.Schema) string {
	parts := make([]string, schema.NumAttr())
	for i, name := range schema.AttrNames {
		parts[i] = name + ":" + schema.DataTypes[i].String()
		if schema.DataTypes[i] == basic.DT_STRING {
			parts[i] += ":" + strconv.Itoa(schema.TypeLength[i])
		}
	}
	out := strings.Join(parts, " ")
	if len(schema.KeyAttrs) > 0 {
		keys := make([]string, len(schema.KeyAttrs))
		for i, k := range schema.KeyAttrs {
			keys[i] = schema.AttrNames[k]
		}
		out += " key(" + strings.Join(keys, ",") + ")"
	}
	return out
}

func parseRID(text string) (basic.RID, error) {
	page, slot, ok := strings.Cut(text, ":")
	if !ok {
		return basic.InvalidRID, errors.NewNotValid(nil, fmt.Sprintf("rid %q", text))
	}
	p, err := strconv.Atoi(page)
	if err != nil {
		return basic.InvalidRID, errors.NewNotValid(err, fmt.Sprintf("rid page %q", page))
	}
	s, err := strconv.Atoi(slot)
	if err != nil {
		return basic.InvalidRID, errors.NewNotValid(err, fmt.Sprintf("rid slot %q", slot))
	}
	return basic.RID{Page: p, Slot: s}, nil
}

// buildRecord parses one textual value per attribute.
func buildRecord(schema *basic.Schema, values []string) (*basic.Record, error) {
	if len(values) != schema.NumAttr() {
		return nil, errors.NewNotValid(nil,
			fmt.Sprintf("want %d values, got %d", schema.NumAttr(), len(values)))
	}
	rec, err := record.CreateRecord(schema)
	if err != nil {
		return nil, err
	}
	for i, text := range values {
		v, err := basic.ParseValue(schema.DataTypes[i], text)
		if err != nil {
			return nil, errors.Annotatef(err, "value %q for %s", text, schema.AttrNames[i])
		}
		if err := record.SetAttr(rec, schema, i, v); err != nil {
			return nil, errors.Annotatef(err, "attribute %s", schema.AttrNames[i])
		}
	}
	return rec, nil
}

// parseFilter builds an equality predicate from "attr=value". An empty
// expression matches every record.
func parseFilter(schema *basic.Schema, expr string) (func(*basic.Record) bool, error) {
	if expr == "" {
		return nil, nil
	}
	name, text, ok := strings.Cut(expr, "=")
	if !ok {
		return nil, errors.NewNotValid(nil, "expected attr=value")
	}
	attr := -1
	for i, n := range schema.AttrNames {
		if n == name {
			attr = i
			break
		}
	}
	if attr < 0 {
		return nil, errors.NotFoundf("attribute %q", name)
	}
	want, err := basic.ParseValue(schema.DataTypes[attr], text)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if want.DT == basic.DT_STRING && len(want.StringV) > schema.TypeLength[attr] {
		want.StringV = want.StringV[:schema.TypeLength[attr]]
	}
	return func(rec *basic.Record) bool {
		got, err := record.GetAttr(rec, schema, attr)
		return err == nil && got.Equal(want)
	}, nil
}
