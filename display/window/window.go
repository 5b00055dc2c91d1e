package window

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/log"
)

var logger = log.New("window")

// Window is an OpenGL backed surface that also acts as an input source.
// Frames are uploaded to a texture and blitted to the default framebuffer.
//
// All methods must be called from the thread that created the window; the
// caller is expected to lock the main go-routine to its OS thread.
type Window struct {
	window *glfw.Window
	title  string

	// opengl handles
	texture uint32
	texFbo  uint32

	width  int
	height int

	// Receives input events.
	post func(input.Event)
}

// Create a new window with the given client area size. Input events are
// passed to post.
func New(width, height int, title string, post func(input.Event)) (*Window, error) {
	var err error
	if err = glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	w := &Window{
		title:  title,
		width:  width,
		height: height,
		post:   post,
	}
	w.window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: could not create opengl window: %w", err)
	}
	w.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("window: could not init opengl: %w", err)
	}

	// Setup texture for frame data and attach it to an FBO we can blit from
	gl.GenTextures(1, &w.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	w.allocTexture()

	gl.GenFramebuffers(1, &w.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, w.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, w.texture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	w.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	w.window.SetKeyCallback(w.onKeyEvent)
	w.window.SetMouseButtonCallback(w.onMouseEvent)
	w.window.SetCursorPosCallback(w.onCursorPosEvent)
	w.window.SetCursorEnterCallback(w.onCursorEnterEvent)

	logger.Debugf("created %dx%d window", width, height)
	return w, nil
}

func (w *Window) allocTexture() {
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w.width), int32(w.height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.Viewport(0, 0, int32(w.width), int32(w.height))
}

// Resize the client area and the backing texture.
func (w *Window) Resize(width, height int) error {
	w.width, w.height = width, height
	w.window.SetSize(width, height)
	w.allocTexture()
	return nil
}

// Upload a frame and display it. Frames are stored top row first so the
// blit flips them vertically.
func (w *Window) Paint(img *image.RGBA) error {
	bounds := img.Bounds()
	if bounds.Dx() != w.width || bounds.Dy() != w.height {
		return fmt.Errorf("window: frame is %dx%d; surface is %dx%d", bounds.Dx(), bounds.Dy(), w.width, w.height)
	}

	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w.width), int32(w.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	fw, fh := int32(w.width), int32(w.height)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, w.texFbo)
	gl.BlitFramebuffer(0, 0, fw, fh, 0, fh, fw, 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	w.window.SwapBuffers()
	return nil
}

// Show the status line in the window title.
func (w *Window) SetStatus(text string) {
	w.window.SetTitle(fmt.Sprintf("%s - %s", w.title, text))
}

// Process pending window events.
func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Returns true once the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

// Destroy the window and release glfw.
func (w *Window) Close() {
	if w.window == nil {
		return
	}
	if w.texFbo != 0 {
		gl.DeleteFramebuffers(1, &w.texFbo)
	}
	if w.texture != 0 {
		gl.DeleteTextures(1, &w.texture)
	}
	w.window.Destroy()
	w.window = nil
	glfw.Terminate()
}

func (w *Window) onKeyEvent(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	// Held keys are tracked as state; repeats carry no new information
	if action == glfw.Repeat {
		return
	}
	label, ok := keyLabel(key)
	if !ok {
		return
	}
	w.post(input.KeyEvent(label, action == glfw.Press))
}

func (w *Window) onMouseEvent(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	x, y := w.normalizedCursor(win)
	w.post(input.PointerButton{X: x, Y: y, Pressed: action == glfw.Press})
}

func (w *Window) onCursorPosEvent(_ *glfw.Window, xPos, yPos float64) {
	x, y := input.Normalize(xPos, yPos, w.width, w.height)
	w.post(input.PointerMove{X: x, Y: y})
}

func (w *Window) onCursorEnterEvent(_ *glfw.Window, entered bool) {
	if !entered {
		w.post(input.PointerLeave{})
	}
}

func (w *Window) normalizedCursor(win *glfw.Window) (float32, float32) {
	xPos, yPos := win.GetCursorPos()
	return input.Normalize(xPos, yPos, w.width, w.height)
}

// Map a glfw key to the label used by the input package.
func keyLabel(key glfw.Key) (string, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return string(rune('a' + int(key-glfw.KeyA))), true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return string(rune('0' + int(key-glfw.Key0))), true
	}

	switch key {
	case glfw.KeyUp:
		return "arrowup", true
	case glfw.KeyDown:
		return "arrowdown", true
	case glfw.KeyLeft:
		return "arrowleft", true
	case glfw.KeyRight:
		return "arrowright", true
	case glfw.KeyTab:
		return "tab", true
	case glfw.KeyEscape:
		return "escape", true
	case glfw.KeyLeftBracket:
		return "[", true
	case glfw.KeyRightBracket:
		return "]", true
	case glfw.KeyMinus:
		return "-", true
	case glfw.KeyEqual:
		return "=", true
	}
	return "", false
}
