package viewer

import (
	"context"
	"image"
)

type fakeSource struct {
	id  string
	img image.Image
	err error
}

func (f fakeSource) ID() string { return f.id }

func (f fakeSource) Decode(context.Context) (image.Image, error) { return f.img, f.err }
