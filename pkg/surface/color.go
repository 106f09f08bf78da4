package surface

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor 表示样式字符串无法解析为颜色
var ErrInvalidColor = errors.New("invalid color style")

// ParseColor 解析 "#rgb" / "#rrggbb" 形式的颜色字符串
func ParseColor(style string) (color.RGBA, error) {
	s := strings.TrimSpace(style)
	if len(s) == 4 && s[0] == '#' {
		// #rgb → #rrggbb
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, style, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Palette 缓存已解析的颜色，避免每帧重复解析同一个样式字符串
// 无法解析的样式回退为 Fallback 并只记录一次
type Palette struct {
	Fallback color.RGBA

	cache   map[string]color.RGBA
	invalid map[string]error
}

// NewPalette 创建颜色缓存，fallback 用于无法解析的样式
func NewPalette(fallback color.RGBA) *Palette {
	return &Palette{
		Fallback: fallback,
		cache:    make(map[string]color.RGBA),
		invalid:  make(map[string]error),
	}
}

// Color 返回样式对应的颜色
func (p *Palette) Color(style string) color.RGBA {
	if c, ok := p.cache[style]; ok {
		return c
	}
	c, err := ParseColor(style)
	if err != nil {
		p.invalid[style] = err
		c = p.Fallback
	}
	p.cache[style] = c
	return c
}

// Invalid 返回解析失败过的样式及其错误（用于日志）
func (p *Palette) Invalid() map[string]error {
	return p.invalid
}

// Darken 将颜色按 factor (0~1) 压暗，用于阴影等派生色
func Darken(style string, factor float64) string {
	c, err := ParseColor(style)
	if err != nil {
		return style
	}
	cf, _ := colorful.MakeColor(c)
	h, s, l := cf.Hsl()
	return colorful.Hsl(h, s, l*(1-factor)).Clamped().Hex()
}
