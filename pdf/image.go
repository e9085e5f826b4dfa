package pdf

import (
	"bytes"
	"compress/zlib"
	"image"
	"image/color"
	_ "image/jpeg" // register decoders
	_ "image/png"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// ImageXObject holds an image ready for embedding as a PDF XObject.
type ImageXObject struct {
	Width            int
	Height           int
	ColorSpace       Name
	BitsPerComponent int
	Filter           Name
	Data             []byte
	// SMask carries the alpha channel as a DeviceGray soft mask when the
	// source image has transparency.
	SMask *ImageXObject
}

// DecodeImage converts an encoded page image into an XObject. JPEG input is
// embedded as-is with DCTDecode; everything else is decoded to raw RGB
// samples compressed with FlateDecode.
func DecodeImage(data []byte) (*ImageXObject, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image header")
	}
	if format == "jpeg" {
		return decodeJPEG(data)
	}
	return decodeRaster(data)
}

func decodeJPEG(data []byte) (*ImageXObject, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding jpeg header")
	}
	cs := Name("DeviceRGB")
	if cfg.ColorModel == color.GrayModel {
		cs = "DeviceGray"
	}
	return &ImageXObject{
		Width:            cfg.Width,
		Height:           cfg.Height,
		ColorSpace:       cs,
		BitsPerComponent: 8,
		Filter:           "DCTDecode",
		Data:             data,
	}, nil
}

func decodeRaster(data []byte) (*ImageXObject, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Convert to NRGBA (non-premultiplied alpha) to get raw color values.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, xdraw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &ImageXObject{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Filter:           "FlateDecode",
		Data:             flateEncode(pixels),
	}
	if hasAlpha {
		img.SMask = &ImageXObject{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceGray",
			BitsPerComponent: 8,
			Filter:           "FlateDecode",
			Data:             flateEncode(alpha),
		}
	}
	return img, nil
}

func flateEncode(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// add serializes the XObject (and its soft mask) into the document.
func (img *ImageXObject) add(doc *Document) Ref {
	dict := Dict{
		"Type":             Name("XObject"),
		"Subtype":          Name("Image"),
		"Width":            Integer(img.Width),
		"Height":           Integer(img.Height),
		"ColorSpace":       img.ColorSpace,
		"BitsPerComponent": Integer(img.BitsPerComponent),
		"Filter":           img.Filter,
	}
	if img.SMask != nil {
		dict["SMask"] = img.SMask.add(doc)
	}
	return doc.Add(&Stream{Dict: dict, Data: img.Data})
}
