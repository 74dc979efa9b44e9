// Package image wires github.com/anthonynsimon/bild into the native
// function ABI: decode a PNG/JPEG byte string into an opaque image
// handle, run a couple of bild's transforms over it, re-encode to PNG.
// Grounded on the teacher's modules/image package, which wraps the same
// bild dependency behind a handful of free functions operating on a
// risor Buffer object; this version operates on a heap-handle image.Image
// instead, since this VM's string Values are immutable byte spans rather
// than risor's mutable Buffer object.
package image

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// ImageTypeID is this module's reserved heap TypeID for decoded-image
// handles (see DESIGN.md's module TypeID registry).
const ImageTypeID uint32 = 7

// Register defines "image_decode", "image_grayscale", "image_blur", and
// "image_encode" in funcs.
func Register(funcs *symbols.FuncTable) {
	funcs.Define("image_decode", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: decode,
	})
	funcs.Define("image_grayscale", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: grayscale,
	})
	funcs.Define("image_blur", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: gaussianBlur,
	})
	funcs.Define("image_encode", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: encode,
	})
}

func decode(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 1 {
		host.Panic("image_decode requires an encoded-bytes argument")
		return value.None
	}
	img, _, err := image.Decode(bytes.NewReader(host.ValueAsString(args[0])))
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.NewHandle(ImageTypeID, img, nil)
}

func grayscale(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	img, ok := imageArg(host, args)
	if !ok {
		return value.None
	}
	return host.NewHandle(ImageTypeID, effect.Grayscale(img), nil)
}

func gaussianBlur(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	img, ok := imageArg(host, args)
	if !ok {
		return value.None
	}
	radius := 2.0
	if len(args) > 1 && args[1].IsNumber() {
		radius = args[1].AsFloat()
	}
	return host.NewHandle(ImageTypeID, blur.Gaussian(img, radius), nil)
}

func encode(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	img, ok := imageArg(host, args)
	if !ok {
		return value.None
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.AllocString(buf.String())
}

func imageArg(host symbols.NativeHost, args []value.Value) (image.Image, bool) {
	if len(args) < 1 {
		host.Panic("expected an image handle argument")
		return nil, false
	}
	native, ok := host.HandleNative(args[0], ImageTypeID)
	if !ok {
		host.Panic("argument is not an image handle")
		return nil, false
	}
	return native.(image.Image), true
}
