package source

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/kenburns/internal/renderer"
)

// QRSource renders a single QR code page. Handy for smoke-testing
// pans: the module grid makes sampling artifacts obvious.
type QRSource struct {
	qr   *qrcode.QRCode
	size int
}

func NewQRSource(content string, size int) (*QRSource, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode error: %w", err)
	}
	if size <= 0 {
		size = 1024
	}
	return &QRSource{qr: qr, size: size}, nil
}

func (q *QRSource) PageCount() int {
	return 1
}

func (q *QRSource) Canvas(page int) (*renderer.Canvas, error) {
	if page != 0 {
		return nil, fmt.Errorf("page %d out of range (source has 1)", page)
	}
	return renderer.FromImage(q.qr.Image(q.size)), nil
}

func (q *QRSource) Close() error {
	return nil
}
