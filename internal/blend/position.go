package blend

import "image"

// PositionOverlay places q onto a transparent canvas of size
// canvasW×canvasH at bottom-left offset (x-1, y-1) — BlendIcon's
// positioning rule: (1,1) places q's bottom-left at the canvas's
// bottom-left. Pixels of q that fall outside the canvas are skipped (no
// wraparound, no growth).
func PositionOverlay(canvasW, canvasH int, q *image.NRGBA, x, y int32) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	qb := q.Bounds()
	qw, qh := qb.Dx(), qb.Dy()
	dx, dy := int(x)-1, int(y)-1

	for qy := 0; qy < qh; qy++ {
		for qx := 0; qx < qw; qx++ {
			cbx := qx + dx
			cby := (qh - 1 - qy) + dy
			if cbx < 0 || cbx >= canvasW || cby < 0 || cby >= canvasH {
				continue
			}
			destX := cbx
			destY := canvasH - 1 - cby
			dst.SetNRGBA(destX, destY, q.NRGBAAt(qb.Min.X+qx, qb.Min.Y+qy))
		}
	}
	return dst
}
