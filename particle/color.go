package particle

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Mix moves both colors towards each other. strength is in 1/256 units.
func (c *Color) Mix(other *Color, strength int32) {
	dr := (strength * (int32(other.R) - int32(c.R))) >> 8
	dg := (strength * (int32(other.G) - int32(c.G))) >> 8
	db := (strength * (int32(other.B) - int32(c.B))) >> 8
	da := (strength * (int32(other.A) - int32(c.A))) >> 8
	c.R = uint8(int32(c.R) + dr)
	c.G = uint8(int32(c.G) + dg)
	c.B = uint8(int32(c.B) + db)
	c.A = uint8(int32(c.A) + da)
	other.R = uint8(int32(other.R) - dr)
	other.G = uint8(int32(other.G) - dg)
	other.B = uint8(int32(other.B) - db)
	other.A = uint8(int32(other.A) - da)
}

// IsZero reports whether all channels are zero.
func (c Color) IsZero() bool {
	return c == Color{}
}
