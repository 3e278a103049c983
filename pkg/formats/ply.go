package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidPLYMagic       = errors.New("invalid PLY magic: expected 'ply'")
	ErrUnsupportedPLYFormat  = errors.New("unsupported PLY format")
	ErrMalformedPLYHeader    = errors.New("malformed PLY header")
	ErrTruncatedPLYData      = errors.New("truncated PLY data")
	ErrInvalidPLYValue       = errors.New("invalid PLY value")
	ErrUnexpectedPLYProperty = errors.New("unexpected PLY property type")
)

// maxPLYListLen bounds a single list property, so a corrupt count cannot
// trigger a huge allocation.
const maxPLYListLen = 1 << 16

// PLYFormat is the body encoding declared in the header.
type PLYFormat int

// Body encodings.
const (
	PLYASCII PLYFormat = iota
	PLYBinaryLittleEndian
	PLYBinaryBigEndian
)

// String returns the header spelling of the format.
func (f PLYFormat) String() string {
	switch f {
	case PLYASCII:
		return "ascii"
	case PLYBinaryLittleEndian:
		return "binary_little_endian"
	case PLYBinaryBigEndian:
		return "binary_big_endian"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// PLYScalarType is the storage type of a property value.
type PLYScalarType uint8

// Scalar types.
const (
	PLYChar PLYScalarType = iota + 1
	PLYUChar
	PLYShort
	PLYUShort
	PLYInt
	PLYUInt
	PLYFloat
	PLYDouble
)

var plyTypeNames = map[string]PLYScalarType{
	"char": PLYChar, "int8": PLYChar,
	"uchar": PLYUChar, "uint8": PLYUChar,
	"short": PLYShort, "int16": PLYShort,
	"ushort": PLYUShort, "uint16": PLYUShort,
	"int": PLYInt, "int32": PLYInt,
	"uint": PLYUInt, "uint32": PLYUInt,
	"float": PLYFloat, "float32": PLYFloat,
	"double": PLYDouble, "float64": PLYDouble,
}

// Size returns the encoded size in bytes.
func (t PLYScalarType) Size() int {
	switch t {
	case PLYChar, PLYUChar:
		return 1
	case PLYShort, PLYUShort:
		return 2
	case PLYInt, PLYUInt, PLYFloat:
		return 4
	case PLYDouble:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether t is a floating point type.
func (t PLYScalarType) IsFloat() bool {
	return t == PLYFloat || t == PLYDouble
}

// String returns the canonical type name.
func (t PLYScalarType) String() string {
	switch t {
	case PLYChar:
		return "char"
	case PLYUChar:
		return "uchar"
	case PLYShort:
		return "short"
	case PLYUShort:
		return "ushort"
	case PLYInt:
		return "int"
	case PLYUInt:
		return "uint"
	case PLYFloat:
		return "float"
	case PLYDouble:
		return "double"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// PLYProperty describes one property of an element.
type PLYProperty struct {
	Name      string
	Type      PLYScalarType // value type; item type for lists
	IsList    bool
	CountType PLYScalarType // list length type
}

// PLYElement describes one element block.
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYHeader is the parsed header.
type PLYHeader struct {
	Format   PLYFormat
	Version  string
	Comments []string
	Elements []PLYElement
}

// PLYVertex is one vertex record.
type PLYVertex struct {
	Position [3]float32
	Color    [3]float32 // normalized to [0, 1]
}

// PLY represents a parsed PLY file reduced to vertices and polygons.
type PLY struct {
	Header   PLYHeader
	Vertices []PLYVertex
	Faces    [][]uint32
	HasColor bool
	// Ignored lists "element.property" names that were present but not used.
	Ignored []string
}

// ParsePLYFile parses a PLY file from disk.
func ParsePLYFile(path string) (*PLY, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PLY file: %w", err)
	}
	defer f.Close()
	return ParsePLY(f)
}

// ParsePLY parses a PLY stream. Vertices read x/y/z from any numeric type and
// red/green/blue from uchar (scaled by 1/255) or float. Faces read the
// vertex_indices (or vertex_index) list. Other properties and elements are
// skipped and reported in Ignored.
func ParsePLY(r io.Reader) (*PLY, error) {
	br := bufio.NewReader(r)

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	var vr plyValueReader
	switch header.Format {
	case PLYASCII:
		vr = newPLYASCIIReader(br)
	case PLYBinaryLittleEndian:
		vr = &plyBinaryReader{r: br, order: binary.LittleEndian}
	case PLYBinaryBigEndian:
		vr = &plyBinaryReader{r: br, order: binary.BigEndian}
	}

	ply := &PLY{Header: header}
	for i := range header.Elements {
		el := &header.Elements[i]
		switch el.Name {
		case "vertex":
			err = ply.readVertices(vr, el)
		case "face":
			err = ply.readFaces(vr, el)
		default:
			ply.Ignored = append(ply.Ignored, el.Name)
			err = skipPLYElement(vr, el)
		}
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", el.Name, err)
		}
	}

	return ply, nil
}

func parsePLYHeader(br *bufio.Reader) (PLYHeader, error) {
	var h PLYHeader

	line, err := readPLYHeaderLine(br)
	if err != nil || line != "ply" {
		return h, ErrInvalidPLYMagic
	}

	sawFormat := false
	for {
		line, err = readPLYHeaderLine(br)
		if err != nil {
			return h, fmt.Errorf("%w: missing end_header", ErrMalformedPLYHeader)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return h, fmt.Errorf("%w: %q", ErrMalformedPLYHeader, line)
			}
			switch fields[1] {
			case "ascii":
				h.Format = PLYASCII
			case "binary_little_endian":
				h.Format = PLYBinaryLittleEndian
			case "binary_big_endian":
				h.Format = PLYBinaryBigEndian
			default:
				return h, fmt.Errorf("%w: %s", ErrUnsupportedPLYFormat, fields[1])
			}
			h.Version = fields[2]
			sawFormat = true

		case "comment", "obj_info":
			h.Comments = append(h.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))

		case "element":
			if len(fields) != 3 {
				return h, fmt.Errorf("%w: %q", ErrMalformedPLYHeader, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return h, fmt.Errorf("%w: bad element count %q", ErrMalformedPLYHeader, fields[2])
			}
			h.Elements = append(h.Elements, PLYElement{Name: fields[1], Count: count})

		case "property":
			if len(h.Elements) == 0 {
				return h, fmt.Errorf("%w: property before element", ErrMalformedPLYHeader)
			}
			prop, err := parsePLYProperty(fields)
			if err != nil {
				return h, err
			}
			el := &h.Elements[len(h.Elements)-1]
			el.Properties = append(el.Properties, prop)

		case "end_header":
			if !sawFormat {
				return h, fmt.Errorf("%w: missing format line", ErrMalformedPLYHeader)
			}
			return h, nil

		default:
			return h, fmt.Errorf("%w: unknown keyword %q", ErrMalformedPLYHeader, fields[0])
		}
	}
}

func parsePLYProperty(fields []string) (PLYProperty, error) {
	if len(fields) == 5 && fields[1] == "list" {
		ct, ok1 := plyTypeNames[fields[2]]
		it, ok2 := plyTypeNames[fields[3]]
		if !ok1 || !ok2 || ct.IsFloat() {
			return PLYProperty{}, fmt.Errorf("%w: bad list types %s %s", ErrMalformedPLYHeader, fields[2], fields[3])
		}
		return PLYProperty{Name: fields[4], Type: it, IsList: true, CountType: ct}, nil
	}
	if len(fields) == 3 {
		t, ok := plyTypeNames[fields[1]]
		if !ok {
			return PLYProperty{}, fmt.Errorf("%w: unknown type %s", ErrMalformedPLYHeader, fields[1])
		}
		return PLYProperty{Name: fields[2], Type: t}, nil
	}
	return PLYProperty{}, fmt.Errorf("%w: %q", ErrMalformedPLYHeader, strings.Join(fields, " "))
}

func readPLYHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// vertexSlot maps a vertex property to its destination.
type vertexSlot int

const (
	slotIgnore vertexSlot = iota
	slotX
	slotY
	slotZ
	slotRed
	slotGreen
	slotBlue
)

var vertexSlots = map[string]vertexSlot{
	"x": slotX, "y": slotY, "z": slotZ,
	"red": slotRed, "green": slotGreen, "blue": slotBlue,
	"r": slotRed, "g": slotGreen, "b": slotBlue,
}

func (p *PLY) readVertices(vr plyValueReader, el *PLYElement) error {
	slots := make([]vertexSlot, len(el.Properties))
	seen := make(map[vertexSlot]bool)
	for i, prop := range el.Properties {
		slot := vertexSlots[prop.Name]
		if slot == slotIgnore {
			p.Ignored = append(p.Ignored, el.Name+"."+prop.Name)
			continue
		}
		if prop.IsList {
			return fmt.Errorf("%w: %s is a list", ErrUnexpectedPLYProperty, prop.Name)
		}
		if slot >= slotRed && !(prop.Type == PLYUChar || prop.Type.IsFloat()) {
			return fmt.Errorf("%w: color %s has type %s, want uchar or float", ErrUnexpectedPLYProperty, prop.Name, prop.Type)
		}
		slots[i] = slot
		seen[slot] = true
	}
	if !seen[slotX] || !seen[slotY] || !seen[slotZ] {
		return fmt.Errorf("%w: vertex needs x, y and z", ErrUnexpectedPLYProperty)
	}
	p.HasColor = seen[slotRed] || seen[slotGreen] || seen[slotBlue]

	p.Vertices = make([]PLYVertex, 0, min(el.Count, 1<<20))
	for n := 0; n < el.Count; n++ {
		v := PLYVertex{Color: [3]float32{1, 1, 1}}
		for i, prop := range el.Properties {
			if slots[i] == slotIgnore {
				if err := skipPLYProperty(vr, prop); err != nil {
					return fmt.Errorf("vertex %d: %w", n, err)
				}
				continue
			}
			val, err := vr.read(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d %s: %w", n, prop.Name, err)
			}
			switch s := slots[i]; s {
			case slotX, slotY, slotZ:
				v.Position[s-slotX] = float32(val)
			default:
				v.Color[s-slotRed] = plyColor(prop.Type, val)
			}
		}
		p.Vertices = append(p.Vertices, v)
	}
	return nil
}

func plyColor(t PLYScalarType, v float64) float32 {
	if t == PLYUChar {
		return float32(v) / 255
	}
	return float32(math.Min(1, math.Max(0, v)))
}

func (p *PLY) readFaces(vr plyValueReader, el *PLYElement) error {
	indexProp := -1
	for i, prop := range el.Properties {
		if prop.Name == "vertex_indices" || prop.Name == "vertex_index" {
			if !prop.IsList || prop.Type.IsFloat() {
				return fmt.Errorf("%w: %s must be an integer list", ErrUnexpectedPLYProperty, prop.Name)
			}
			indexProp = i
			continue
		}
		p.Ignored = append(p.Ignored, el.Name+"."+prop.Name)
	}
	if indexProp < 0 {
		return fmt.Errorf("%w: face has no vertex_indices list", ErrUnexpectedPLYProperty)
	}

	p.Faces = make([][]uint32, 0, min(el.Count, 1<<20))
	for n := 0; n < el.Count; n++ {
		var face []uint32
		for i, prop := range el.Properties {
			if i != indexProp {
				if err := skipPLYProperty(vr, prop); err != nil {
					return fmt.Errorf("face %d: %w", n, err)
				}
				continue
			}
			count, err := readPLYListCount(vr, prop)
			if err != nil {
				return fmt.Errorf("face %d: %w", n, err)
			}
			face = make([]uint32, count)
			for k := range face {
				val, err := vr.read(prop.Type)
				if err != nil {
					return fmt.Errorf("face %d index %d: %w", n, k, err)
				}
				if val < 0 || val > math.MaxUint32 {
					return fmt.Errorf("%w: face %d index %v", ErrInvalidPLYValue, n, val)
				}
				face[k] = uint32(val)
			}
		}
		p.Faces = append(p.Faces, face)
	}
	return nil
}

func readPLYListCount(vr plyValueReader, prop PLYProperty) (int, error) {
	c, err := vr.read(prop.CountType)
	if err != nil {
		return 0, err
	}
	if c < 0 || c > maxPLYListLen {
		return 0, fmt.Errorf("%w: list length %v", ErrInvalidPLYValue, c)
	}
	return int(c), nil
}

func skipPLYProperty(vr plyValueReader, prop PLYProperty) error {
	n := 1
	if prop.IsList {
		c, err := readPLYListCount(vr, prop)
		if err != nil {
			return err
		}
		n = c
	}
	for i := 0; i < n; i++ {
		if _, err := vr.read(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

func skipPLYElement(vr plyValueReader, el *PLYElement) error {
	for n := 0; n < el.Count; n++ {
		for _, prop := range el.Properties {
			if err := skipPLYProperty(vr, prop); err != nil {
				return fmt.Errorf("record %d: %w", n, err)
			}
		}
	}
	return nil
}

// plyValueReader decodes one scalar of the given type from the body.
type plyValueReader interface {
	read(t PLYScalarType) (float64, error)
}

type plyBinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *plyBinaryReader) read(t PLYScalarType) (float64, error) {
	size := t.Size()
	if _, err := io.ReadFull(b.r, b.buf[:size]); err != nil {
		return 0, ErrTruncatedPLYData
	}
	buf := b.buf[:size]
	switch t {
	case PLYChar:
		return float64(int8(buf[0])), nil
	case PLYUChar:
		return float64(buf[0]), nil
	case PLYShort:
		return float64(int16(b.order.Uint16(buf))), nil
	case PLYUShort:
		return float64(b.order.Uint16(buf)), nil
	case PLYInt:
		return float64(int32(b.order.Uint32(buf))), nil
	case PLYUInt:
		return float64(b.order.Uint32(buf)), nil
	case PLYFloat:
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

type plyASCIIReader struct {
	s *bufio.Scanner
}

func newPLYASCIIReader(r io.Reader) *plyASCIIReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &plyASCIIReader{s: s}
}

func (a *plyASCIIReader) read(t PLYScalarType) (float64, error) {
	if !a.s.Scan() {
		if err := a.s.Err(); err != nil {
			return 0, err
		}
		return 0, ErrTruncatedPLYData
	}
	tok := a.s.Text()

	if t.IsFloat() {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a %s", ErrInvalidPLYValue, tok, t)
		}
		return v, nil
	}

	bits := t.Size() * 8
	if t == PLYUChar || t == PLYUShort || t == PLYUInt {
		v, err := strconv.ParseUint(tok, 10, bits)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a %s", ErrInvalidPLYValue, tok, t)
		}
		return float64(v), nil
	}
	v, err := strconv.ParseInt(tok, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a %s", ErrInvalidPLYValue, tok, t)
	}
	return float64(v), nil
}
