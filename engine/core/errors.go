package core

import (
	"errors"
)

var (
	ErrMalformedMesh         = errors.New("malformed mesh asset")
	ErrMissingTexture        = errors.New("missing texture")
	ErrBufferAllocation      = errors.New("gpu buffer allocation failed")
	ErrUnsupportedBufferData = errors.New("unsupported buffer data type")
	ErrInvalidContext        = errors.New("invalid render context")
	ErrStackUnderflow        = errors.New("matrix stack underflow")
	ErrShaderCompile         = errors.New("shader compilation failed")
	ErrUnknown               = errors.New("unknown")
)
