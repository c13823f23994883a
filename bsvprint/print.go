package bsvprint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protobsv/protobsv/bsvname"
	"github.com/protobsv/protobsv/internal"
	"github.com/protobsv/protobsv/internal/fielddefault"
	"github.com/protobsv/protobsv/internal/optionval"
	"github.com/protobsv/protobsv/protodescs"
)

// ErrWriteFailed is returned when the output could not be written. Whatever
// was written before the failure is not a usable module.
var ErrWriteFailed = errors.New("failed to write generated module")

// Printer knows how to format file descriptors as BSV descriptor modules. Its
// fields provide some control over how the output is formatted.
//
// A Printer is not modified by printing, so the same Printer may be used from
// multiple goroutines at once.
type Printer struct {
	// The indentation used for nested JSON values. If unset/empty, four spaces
	// will be used. Ignored when Compact is set.
	Indent string

	// If true, the module is written as a single line of JSON.
	Compact bool

	// The name of the sentinel "no payload" message. Messages with this name,
	// at any depth, are left out of the output (along with any messages nested
	// inside them). If unset, "Empty" is used.
	SentinelName protoreflect.Name

	// If true, the serialized file descriptor and the per-message offsets into
	// it are omitted.
	OmitSerialized bool
}

// PrintBSVFiles prints all the given file descriptors. The given open function
// is given a file name and is responsible for creating the outputs and
// returning the corresponding writer. Each writer is closed once its module is
// printed; a failed close is reported as ErrWriteFailed.
func (p *Printer) PrintBSVFiles(fds []protoreflect.FileDescriptor, open func(name string) (io.WriteCloser, error)) error {
	for _, fd := range fds {
		name := bsvname.OutputFilename(fd.Path())
		w, err := open(name)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
		err = p.PrintBSVFile(fd, w)
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrWriteFailed, closeErr)
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// PrintBSVToFileSystem prints all of the given file descriptors to files in
// the given directory. Output file names are derived from the module names,
// so "foo/bar.proto" is written to "<rootDir>/foo/bar_pb.json".
func (p *Printer) PrintBSVToFileSystem(fds []protoreflect.FileDescriptor, rootDir string) error {
	return p.PrintBSVFiles(fds, func(name string) (io.WriteCloser, error) {
		fullPath := filepath.Join(rootDir, filepath.FromSlash(name))
		dir := filepath.Dir(fullPath)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
		return os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	})
}

// PrintBSVToBytes prints the given file descriptor and returns the resulting
// module.
func (p *Printer) PrintBSVToBytes(fd protoreflect.FileDescriptor) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.PrintBSVFile(fd, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PrintBSVFile prints the module for the given file descriptor to the given
// writer.
//
// It returns an error wrapping ErrNameCollision if two descriptors in the
// file would be bound to the same module-level name, in which case nothing is
// written, or ErrWriteFailed if the module cannot be encoded or out reports
// an error.
//
// It panics if the file uses a syntax other than proto2 or proto3, or if a
// field has a type that cannot be represented. These indicate descriptors
// that violate the generator's assumptions, not recoverable conditions.
func (p *Printer) PrintBSVFile(fd protoreflect.FileDescriptor, out io.Writer) error {
	c := p.newContext(fd)
	if err := checkNameCollisions(c); err != nil {
		return err
	}

	return p.encode(c.document(), out)
}

func (p *Printer) encode(v any, out io.Writer) error {
	w := newWriter(out)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !p.Compact {
		indent := p.Indent
		if indent == "" {
			indent = "    "
		}
		enc.SetIndent("", indent)
	}
	err := enc.Encode(v)
	if w.err != nil {
		err = w.err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// genContext is the state of a single generation. It is built once, before
// anything is emitted, and not changed afterwards.
type genContext struct {
	file  protoreflect.FileDescriptor
	names bsvname.Resolver
	// fileBytes is the serialized file descriptor, nil if omitted
	fileBytes []byte
	// elided holds the sentinel messages (and everything nested in them)
	elided map[protoreflect.FullName]struct{}
	// selfDescribing is true when generating descriptor.proto itself
	selfDescribing bool
}

func (p *Printer) newContext(fd protoreflect.FileDescriptor) *genContext {
	sentinel := p.SentinelName
	if sentinel == "" {
		sentinel = internal.DefaultSentinelName
	}
	c := &genContext{
		file:           fd,
		names:          bsvname.NewResolver(fd),
		elided:         map[protoreflect.FullName]struct{}{},
		selfDescribing: fd.Path() == internal.DescriptorProtoPath,
	}
	if !p.OmitSerialized {
		c.fileBytes = protodescs.FileBytes(fd)
	}
	collectElided(fd.Messages(), sentinel, false, c.elided)
	return c
}

func collectElided(msgs protoreflect.MessageDescriptors, sentinel protoreflect.Name, inElided bool, elided map[protoreflect.FullName]struct{}) {
	for i, length := 0, msgs.Len(); i < length; i++ {
		md := msgs.Get(i)
		skip := inElided || md.Name() == sentinel
		if skip {
			elided[md.FullName()] = struct{}{}
		}
		collectElided(md.Messages(), sentinel, skip, elided)
	}
}

func (c *genContext) isElided(md protoreflect.MessageDescriptor) bool {
	_, ok := c.elided[md.FullName()]
	return ok
}

func (c *genContext) options(opts protoreflect.ProtoMessage) string {
	return optionval.Of(opts, c.selfDescribing)
}

// document walks the file and builds the module. The order in which the
// sections are filled in matters: each one may refer only to names defined by
// the ones before it.
func (c *genContext) document() *document {
	fd := c.file
	doc := &document{
		Module:      bsvname.ModuleName(fd.Path()),
		Source:      fd.Path(),
		Package:     string(fd.Package()),
		Syntax:      protodescs.SyntaxName(fd),
		GlobalDecls: []typeDef{},
		Constants:   []constant{},
		Extensions:  []extensionDecl{},
		Interfaces:  []iface{},
	}
	doc.Imports, doc.Reexports = c.imports()

	// enums nested in messages, then top-level enums
	msgs := fd.Messages()
	for i, length := 0, msgs.Len(); i < length; i++ {
		doc.GlobalDecls = c.appendNestedEnums(doc.GlobalDecls, msgs.Get(i))
	}
	enums := fd.Enums()
	for i, length := 0, enums.Len(); i < length; i++ {
		ed := enums.Get(i)
		doc.GlobalDecls = append(doc.GlobalDecls, c.enumDef(ed))
		// top-level enum values are also visible unqualified
		vals := ed.Values()
		for j, vlen := 0, vals.Len(); j < vlen; j++ {
			v := vals.Get(j)
			doc.Constants = append(doc.Constants, constant{Name: string(v.Name()), Value: int64(v.Number())})
		}
	}

	exts := fd.Extensions()
	for i, length := 0, exts.Len(); i < length; i++ {
		xd := exts.Get(i)
		constName := bsvname.FieldNumberConstant(xd)
		doc.Constants = append(doc.Constants, constant{Name: constName, Value: int64(xd.Number())})
		doc.Extensions = append(doc.Extensions, extensionDecl{
			Constant: constName,
			Field:    c.fieldRecord(xd),
		})
	}

	for i, length := 0, msgs.Len(); i < length; i++ {
		doc.GlobalDecls = c.appendMessageDefs(doc.GlobalDecls, msgs.Get(i))
	}

	svcs := fd.Services()
	for i, length := 0, svcs.Len(); i < length; i++ {
		doc.Interfaces = append(doc.Interfaces, c.serviceDef(svcs.Get(i)))
	}

	doc.Options = c.optionFixes()

	if c.fileBytes != nil {
		doc.SerializedPb = internal.BytesLiteral(c.fileBytes, '\'')
	}
	return doc
}

// appendNestedEnums appends the enums declared anywhere inside md, innermost
// first, followed by md's own enums.
func (c *genContext) appendNestedEnums(decls []typeDef, md protoreflect.MessageDescriptor) []typeDef {
	msgs := md.Messages()
	for i, length := 0, msgs.Len(); i < length; i++ {
		decls = c.appendNestedEnums(decls, msgs.Get(i))
	}
	enums := md.Enums()
	for i, length := 0, enums.Len(); i < length; i++ {
		decls = append(decls, c.enumDef(enums.Get(i)))
	}
	return decls
}

func (c *genContext) enumDef(ed protoreflect.EnumDescriptor) typeDef {
	vals := ed.Values()
	et := &enumType{
		Type:     "Enum",
		Name:     string(ed.Name()),
		FullName: string(ed.FullName()),
		Elements: make([]string, 0, vals.Len()),
		Values:   make([]enumValue, 0, vals.Len()),
	}
	for i, length := 0, vals.Len(); i < length; i++ {
		v := vals.Get(i)
		et.Elements = append(et.Elements, string(v.Name()))
		et.Values = append(et.Values, enumValue{
			Name:    string(v.Name()),
			Number:  int32(v.Number()),
			Index:   v.Index(),
			Options: c.options(v.Options()),
		})
	}
	return typeDef{
		DType:      "TypeDef",
		TName:      string(ed.Name()),
		Descriptor: c.names.DescriptorName(ed),
		TDType:     et,
		Options:    c.options(ed.Options()),
	}
}

// appendMessageDefs appends the definitions of the messages nested in md,
// innermost first, followed by md itself. Sentinel messages are skipped along
// with everything nested in them.
func (c *genContext) appendMessageDefs(decls []typeDef, md protoreflect.MessageDescriptor) []typeDef {
	if c.isElided(md) {
		return decls
	}
	msgs := md.Messages()
	for i, length := 0, msgs.Len(); i < length; i++ {
		decls = c.appendMessageDefs(decls, msgs.Get(i))
	}
	return append(decls, c.messageDef(md))
}

func (c *genContext) messageDef(md protoreflect.MessageDescriptor) typeDef {
	fields := md.Fields()
	st := &structType{
		Type:     "Struct",
		Name:     string(md.Name()),
		FullName: string(md.FullName()),
		Elements: make([]fieldRecord, 0, fields.Len()),
	}
	for i, length := 0, fields.Len(); i < length; i++ {
		st.Elements = append(st.Elements, c.fieldRecord(fields.Get(i)))
	}
	exts := md.Extensions()
	for i, length := 0, exts.Len(); i < length; i++ {
		st.Extensions = append(st.Extensions, c.fieldRecord(exts.Get(i)))
	}
	ranges := md.ExtensionRanges()
	for i, length := 0, ranges.Len(); i < length; i++ {
		rng := ranges.Get(i)
		st.ExtensionRanges = append(st.ExtensionRanges, [2]int32{int32(rng[0]), int32(rng[1])})
	}
	oneofs := md.Oneofs()
	for i, length := 0, oneofs.Len(); i < length; i++ {
		od := oneofs.Get(i)
		st.Oneofs = append(st.Oneofs, oneof{Name: string(od.Name()), Index: od.Index()})
	}

	def := typeDef{
		DType:      "TypeDef",
		TName:      string(md.Name()),
		Descriptor: c.names.DescriptorName(md),
		TDType:     st,
		Options:    c.options(md.Options()),
	}
	if c.fileBytes != nil {
		start, end := protodescs.MessageInterval(c.fileBytes, md)
		def.Serialized = &interval{Start: start, End: end}
	}
	return def
}

func (c *genContext) fieldRecord(fld protoreflect.FieldDescriptor) fieldRecord {
	rec := fieldRecord{
		PName:       string(fld.Name()),
		Number:      int32(fld.Number()),
		Label:       int(fld.Cardinality()),
		HasDefault:  fld.HasDefault(),
		Default:     fielddefault.DefaultValue(fld),
		IsExtension: fld.IsExtension(),
		Options:     c.options(fld.Options()),
	}
	switch {
	case fld.Message() != nil:
		rec.PType.Name = string(fld.Message().Name())
		rec.TypeRef = c.names.DescriptorName(fld.Message())
	case fld.Enum() != nil:
		rec.PType.Name = string(fld.Enum().Name())
		rec.TypeRef = c.names.DescriptorName(fld.Enum())
	default:
		rec.PType.Name = fld.Kind().String()
	}
	if fld.IsExtension() {
		rec.Extendee = c.names.DescriptorName(fld.ContainingMessage())
	}
	return rec
}

func (c *genContext) serviceDef(sd protoreflect.ServiceDescriptor) iface {
	mtds := sd.Methods()
	svc := iface{
		CName:      string(sd.Name()),
		Descriptor: c.names.DescriptorName(sd),
		Options:    c.options(sd.Options()),
		CDecls:     make([]method, 0, mtds.Len()),
	}
	for i, length := 0, mtds.Len(); i < length; i++ {
		mtd := mtds.Get(i)
		svc.CDecls = append(svc.CDecls, method{
			DName: string(mtd.Name()),
			DParams: []param{{
				PName: "v",
				PType: typeRef{Name: string(mtd.Input().Name())},
			}},
			Options: c.options(mtd.Options()),
		})
	}
	return svc
}

// writer remembers the first error reported by the underlying writer and
// drops everything written after it. Printing checks it once at the end.
type writer struct {
	io.Writer
	err error
}

func newWriter(w io.Writer) *writer {
	return &writer{Writer: w}
}

func (w *writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	num, err := w.Writer.Write(p)
	if err == nil && num < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = err
	}
	return num, err
}
