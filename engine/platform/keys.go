package platform

import "github.com/go-gl/glfw/v3.3/glfw"

// Key codes carried in core.EventContext.Key.
const (
	KeyEscape = int(glfw.KeyEscape)
	KeySpace  = int(glfw.KeySpace)
	KeyLeft   = int(glfw.KeyLeft)
	KeyRight  = int(glfw.KeyRight)
	KeyUp     = int(glfw.KeyUp)
	KeyDown   = int(glfw.KeyDown)
	KeyPageUp = int(glfw.KeyPageUp)
	KeyPageDn = int(glfw.KeyPageDown)
	KeyW      = int(glfw.KeyW)
	KeyA      = int(glfw.KeyA)
	KeyS      = int(glfw.KeyS)
	KeyD      = int(glfw.KeyD)
	KeyQ      = int(glfw.KeyQ)
	KeyE      = int(glfw.KeyE)
	KeyR      = int(glfw.KeyR)
	KeyF1     = int(glfw.KeyF1)
	KeyF2     = int(glfw.KeyF2)
	KeyF3     = int(glfw.KeyF3)
)
