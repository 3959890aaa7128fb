// Package imgutil は参照画像をモデルへ送る前に縮小・再エンコードします。
package imgutil

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const DefaultQuality = 75

// Options は再エンコードの条件です。MaxDimension が 0 以下なら縮小しません。
type Options struct {
	Quality      int
	MaxDimension int
}

// Recompress は JPEG へ再エンコードした結果と "image/jpeg" を返します。
// 長辺が MaxDimension を超える画像は必ず縮小後の結果を返し、
// 縮小不要な画像は元より小さくなった場合だけ置き換えます。
// デコードできない場合は入力をそのまま返します。
func Recompress(data []byte, mimeType string, opts Options) ([]byte, string) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}
	fitted := Fit(img, opts.MaxDimension)
	resized := fitted.Bounds().Size() != img.Bounds().Size()

	out, err := EncodeJPEG(fitted, opts.Quality)
	if err != nil || (!resized && len(out) >= len(data)) {
		return data, mimeType
	}
	return out, "image/jpeg"
}

// Fit は長辺が maxDim を超える画像を縦横比を保って縮小します。
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodeJPEG は透過部分を白で塗りつぶしてから JPEG にエンコードします。
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
