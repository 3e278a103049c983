// Package importer turns a file on disk into something the viewer can show:
// a point/face dataset or a still image. The kind is chosen by extension.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/ennona/internal/geometry"
	"github.com/Faultbox/ennona/pkg/formats"
	"github.com/Faultbox/ennona/pkg/math"
)

// ErrUnsupportedExtension is returned for files whose extension has no importer.
var ErrUnsupportedExtension = errors.New("unknown file extension")

// ErrNotAnImage is returned when an image extension holds other content.
var ErrNotAnImage = errors.New("file content is not an image")

// sniffLen is how much of a file filetype needs to recognise it.
const sniffLen = 262

var (
	geometryExtensions = []string{".ply"}
	imageExtensions    = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".tga"}
)

// Result is the outcome of an import: a *GeometryImport or an *ImageImport.
type Result interface {
	// Source is the path the result was read from.
	Source() string
	isResult()
}

// GeometryImport is a point/face dataset read from a geometry file.
type GeometryImport struct {
	Path    string
	Dataset geometry.Dataset
	// Ignored lists file properties that were skipped.
	Ignored []string
}

// ImageImport is a decoded still image.
type ImageImport struct {
	Path   string
	Image  image.Image
	Format string // decoder name, e.g. "png"
}

func (g *GeometryImport) Source() string { return g.Path }
func (g *GeometryImport) isResult()      {}
func (i *ImageImport) Source() string    { return i.Path }
func (i *ImageImport) isResult()         {}

// Extensions returns every supported extension, with the leading dot.
func Extensions() []string {
	return slices.Concat(geometryExtensions, imageExtensions)
}

// Supported reports whether path has an importable extension.
func Supported(path string) bool {
	return slices.Contains(Extensions(), ext(path))
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// File imports the file at path.
func File(path string) (Result, error) {
	e := ext(path)
	switch {
	case slices.Contains(geometryExtensions, e):
		return importGeometry(path)
	case slices.Contains(imageExtensions, e):
		return importImage(path)
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedExtension, e)
	}
}

func importGeometry(path string) (*GeometryImport, error) {
	ply, err := formats.ParsePLYFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromPLY(path, ply)
}

// FromPLY splits a parsed PLY into unconnected points and triangulated faces.
func FromPLY(path string, ply *formats.PLY) (*GeometryImport, error) {
	vertices := make([]geometry.Vertex, len(ply.Vertices))
	for i, v := range ply.Vertices {
		vertices[i] = geometry.Vertex{
			Position: vec3(v.Position),
			Color:    vec3(v.Color),
		}
	}
	ds, err := geometry.Build(vertices, ply.Faces)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &GeometryImport{Path: path, Dataset: ds, Ignored: ply.Ignored}, nil
}

func importImage(path string) (*ImageImport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if ext(path) == ".tga" {
		return DecodeTGA(path, f)
	}
	return DecodeImage(path, f)
}

// DecodeTGA decodes a TGA stream. TGA carries no signature to sniff.
func DecodeTGA(path string, r io.Reader) (*ImageImport, error) {
	img, err := formats.DecodeTGA(r)
	if err != nil {
		return nil, fmt.Errorf("%s: decode image: %w", path, err)
	}
	return &ImageImport{Path: path, Image: img, Format: "tga"}, nil
}

// DecodeImage sniffs and decodes an image stream.
func DecodeImage(path string, r io.Reader) (*ImageImport, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	head = head[:n]

	if kind, _ := filetype.Match(head); kind != filetype.Unknown && kind.MIME.Type != "image" {
		return nil, fmt.Errorf("%s: %w (looks like %s)", path, ErrNotAnImage, kind.MIME.Value)
	}

	img, format, err := image.Decode(io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return nil, fmt.Errorf("%s: decode image: %w", path, err)
	}
	return &ImageImport{Path: path, Image: img, Format: format}, nil
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
