// Package glrender paints ui2d draw lists with OpenGL.
package glrender

import (
	"fmt"
	"image"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/ennona/internal/engine/shader"
	"github.com/Faultbox/ennona/internal/engine/ui2d"
)

// Renderer paints the draw lists of a frame with OpenGL. It implements ui2d.Painter.
type Renderer struct {
	screenWidth  int
	screenHeight int

	solidShader uint32
	textShader  uint32
	imageShader uint32

	solidVAO, solidVBO uint32
	texVAO, texVBO     uint32

	// pos2 + color4
	solidVertices []float32
	// pos2 + uv2 + color4
	textVertices []float32
	images       []imageQuad

	font    *ui2d.Font
	fontTex uint32

	uploads []*ImageTexture
}

type imageQuad struct {
	tex      *ImageTexture
	vertices [6 * 8]float32
}

// ImageTexture is an RGBA texture uploaded for display in the panel.
type ImageTexture struct {
	id     uint32
	width  int
	height int
}

// Size implements ui2d.Texture.
func (t *ImageTexture) Size() (int, int) { return t.width, t.height }

// Delete releases the texture.
func (t *ImageTexture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// New creates a renderer. Requires a current GL context.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{
		screenWidth:   width,
		screenHeight:  height,
		solidVertices: make([]float32, 0, 4096),
		textVertices:  make([]float32, 0, 4096),
		font:          ui2d.NewFont(),
	}

	var err error
	if r.solidShader, err = shader.CompileProgram(solidVert, solidFrag); err != nil {
		return nil, fmt.Errorf("create solid shader: %w", err)
	}
	if r.textShader, err = shader.CompileProgram(texturedVert, textFrag); err != nil {
		return nil, fmt.Errorf("create text shader: %w", err)
	}
	if r.imageShader, err = shader.CompileProgram(texturedVert, imageFrag); err != nil {
		return nil, fmt.Errorf("create image shader: %w", err)
	}

	r.solidVAO, r.solidVBO = newQuadBuffers(2, 4)
	r.texVAO, r.texVBO = newQuadBuffers(2, 2, 4)

	r.uploadFont()
	return r, nil
}

// newQuadBuffers creates a VAO/VBO pair with consecutive float attributes of
// the given component counts.
func newQuadBuffers(components ...int32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	var stride int32
	for _, n := range components {
		stride += n * 4
	}
	offset := 0
	for loc, n := range components {
		gl.VertexAttribPointerWithOffset(uint32(loc), n, gl.FLOAT, false, stride, uintptr(offset))
		gl.EnableVertexAttribArray(uint32(loc))
		offset += int(n) * 4
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, vbo
}

func (r *Renderer) uploadFont() {
	atlas := r.font.Atlas()
	b := atlas.Bounds()
	gl.GenTextures(1, &r.fontTex)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(b.Dx()), int32(b.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Pix))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// UploadImage copies img into a new texture owned by the renderer. It is
// released by Close.
func (r *Renderer) UploadImage(img image.Image) (ui2d.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("upload image: empty bounds %v", b)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	t := &ImageTexture{width: b.Dx(), height: b.Dy()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(t.width), int32(t.height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		t.Delete()
		return nil, fmt.Errorf("upload image %dx%d: gl error 0x%x", t.width, t.height, e)
	}
	r.uploads = append(r.uploads, t)
	return t, nil
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// ScreenSize implements ui2d.Painter.
func (r *Renderer) ScreenSize() (int, int) {
	return r.screenWidth, r.screenHeight
}

// Begin clears the draw lists.
func (r *Renderer) Begin() {
	r.solidVertices = r.solidVertices[:0]
	r.textVertices = r.textVertices[:0]
	r.images = r.images[:0]
}

// End paints the queued elements into the bound framebuffer.
func (r *Renderer) End() {
	gl.Viewport(0, 0, int32(r.screenWidth), int32(r.screenHeight))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	proj := ortho(float32(r.screenWidth), float32(r.screenHeight))

	if len(r.solidVertices) > 0 {
		gl.UseProgram(r.solidShader)
		gl.UniformMatrix4fv(shader.Uniform(r.solidShader, "uProjection"), 1, false, &proj[0])
		stream(r.solidVAO, r.solidVBO, r.solidVertices)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.solidVertices)/6))
	}

	if len(r.images) > 0 {
		gl.UseProgram(r.imageShader)
		gl.UniformMatrix4fv(shader.Uniform(r.imageShader, "uProjection"), 1, false, &proj[0])
		gl.Uniform1i(shader.Uniform(r.imageShader, "uTexture"), 0)
		gl.ActiveTexture(gl.TEXTURE0)
		for i := range r.images {
			q := &r.images[i]
			gl.BindTexture(gl.TEXTURE_2D, q.tex.id)
			stream(r.texVAO, r.texVBO, q.vertices[:])
			gl.DrawArrays(gl.TRIANGLES, 0, 6)
		}
	}

	if len(r.textVertices) > 0 {
		gl.UseProgram(r.textShader)
		gl.UniformMatrix4fv(shader.Uniform(r.textShader, "uProjection"), 1, false, &proj[0])
		gl.Uniform1i(shader.Uniform(r.textShader, "uTexture"), 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.fontTex)
		stream(r.texVAO, r.texVBO, r.textVertices)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.textVertices)/8))
	}

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	gl.Disable(gl.BLEND)
}

func stream(vao, vbo uint32, data []float32) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	for _, t := range r.uploads {
		t.Delete()
	}
	r.uploads = nil
	if r.fontTex != 0 {
		gl.DeleteTextures(1, &r.fontTex)
	}
	for _, vao := range []*uint32{&r.solidVAO, &r.texVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
		}
	}
	for _, vbo := range []*uint32{&r.solidVBO, &r.texVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
		}
	}
	for _, p := range []uint32{r.solidShader, r.textShader, r.imageShader} {
		if p != 0 {
			gl.DeleteProgram(p)
		}
	}
}

// DrawRect implements ui2d.Painter.
func (r *Renderer) DrawRect(x, y, w, h float32, c ui2d.Color) {
	r.solidVertices = append(r.solidVertices,
		x, y, c.R, c.G, c.B, c.A,
		x+w, y, c.R, c.G, c.B, c.A,
		x+w, y+h, c.R, c.G, c.B, c.A,
		x, y, c.R, c.G, c.B, c.A,
		x+w, y+h, c.R, c.G, c.B, c.A,
		x, y+h, c.R, c.G, c.B, c.A,
	)
}

// DrawRectOutline implements ui2d.Painter.
func (r *Renderer) DrawRectOutline(x, y, w, h, t float32, c ui2d.Color) {
	r.DrawRect(x, y, w, t, c)
	r.DrawRect(x, y+h-t, w, t, c)
	r.DrawRect(x, y+t, t, h-2*t, c)
	r.DrawRect(x+w-t, y+t, t, h-2*t, c)
}

// DrawText implements ui2d.Painter.
func (r *Renderer) DrawText(x, y float32, text string, scale float32, c ui2d.Color) {
	gw, gh := r.font.GlyphSize()
	cw, ch := float32(gw)*scale, float32(gh)*scale

	curX := x
	for _, char := range text {
		if char == '\n' {
			curX = x
			y += ch
			continue
		}
		u0, v0, u1, v1 := r.font.GlyphUV(char)
		r.textVertices = appendTexturedQuad(r.textVertices, curX, y, cw, ch, u0, v0, u1, v1, c)
		curX += cw
	}
}

// MeasureText implements ui2d.Painter.
func (r *Renderer) MeasureText(text string, scale float32) (float32, float32) {
	return r.font.MeasureText(text, scale)
}

// DrawImage implements ui2d.Painter. Textures not created by UploadImage are ignored.
func (r *Renderer) DrawImage(x, y, w, h float32, tex ui2d.Texture) {
	t, ok := tex.(*ImageTexture)
	if !ok || t.id == 0 {
		return
	}
	q := imageQuad{tex: t}
	appendTexturedQuad(q.vertices[:0], x, y, w, h, 0, 0, 1, 1, ui2d.ColorWhite)
	r.images = append(r.images, q)
}

func appendTexturedQuad(dst []float32, x, y, w, h, u0, v0, u1, v1 float32, c ui2d.Color) []float32 {
	return append(dst,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)
}

// ortho maps pixel coordinates with a top-left origin to clip space.
func ortho(w, h float32) [16]float32 {
	return [16]float32{
		2 / w, 0, 0, 0,
		0, -2 / h, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
}

const solidVert = `
#version 430 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;
uniform mat4 uProjection;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vColor = aColor;
}
`

const solidFrag = `
#version 430 core
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = vColor;
}
`

const texturedVert = `
#version 430 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;
uniform mat4 uProjection;
out vec2 vTexCoord;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vTexCoord = aTexCoord;
	vColor = aColor;
}
`

const textFrag = `
#version 430 core
uniform sampler2D uTexture;
in vec2 vTexCoord;
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = vec4(vColor.rgb, vColor.a * texture(uTexture, vTexCoord).r);
}
`

const imageFrag = `
#version 430 core
uniform sampler2D uTexture;
in vec2 vTexCoord;
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = texture(uTexture, vTexCoord) * vColor;
}
`
