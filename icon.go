package spellbook

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// transformPixmap draws the three axes: z up in blue, x in red, y in green.
var transformPixmap = []string{
	"                                                                ",
	"                                                                ",
	"                                                                ",
	"                             .                                  ",
	"                            ...                                 ",
	"                           .....                                ",
	"                          .......                               ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                    ##           ",
	"     +                      ...                  ####           ",
	"    ++++                    ...                 #####           ",
	"     +++++                  ...                #######          ",
	"      +++++                 ...              #######            ",
	"        +++++               ...             #####               ",
	"          +++++             ...           #####                 ",
	"           +++++            ...          #####                  ",
	"             +++++          ...        #####                    ",
	"               +++++        ...       #####                     ",
	"                +++++       ...      ####                       ",
	"                  +++++     ...    #####                        ",
	"                    +++++   ...   ####                          ",
	"                     ++++++ ... #####                           ",
	"                       +++++...#####                            ",
	"                         +++...###                              ",
	"                          ++...+#                               ",
	"                           #...++                               ",
	"                         ###...++++                             ",
	"                        ####...++++++                           ",
	"                      ##### ...  +++++                          ",
	"                     ####   ...    +++++                        ",
	"                   #####    ...     ++++++                      ",
	"                  #####     ...       +++++                     ",
	"                #####       ...         +++++                   ",
	"               #####        ...          ++++++                 ",
	"              ####          ...            +++++                ",
	"            #####           ...              +++++              ",
	"           ####             ...               ++++++            ",
	"         #####              ...                 +++++  +        ",
	"        #####               ...                   +++++++       ",
	"      #####                 ...                    +++++++      ",
	"     #####                  ...                      +++++      ",
	"    ####                    ...                      ++++       ",
	"    ###                     ...                        +        ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                            ...                                 ",
	"                                                                ",
	"                                                                ",
	"                                                                ",
	"                                                                ",
	"                                                                ",
	"                                                                ",
}

var transformPalette = map[byte]color.NRGBA{
	'.': {0x18, 0x00, 0xff, 0xff},
	'+': {0xff, 0x03, 0x01, 0xff},
	'#': {0x0d, 0xff, 0x00, 0xff},
	'@': {0xc4, 0x6e, 0xbc, 0xff},
	'$': {0x2b, 0xff, 0xac, 0xff},
}

func pixmapImage(rows []string, palette map[byte]color.NRGBA) *image.NRGBA {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, len(rows)))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if c, ok := palette[r[x]]; ok {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

// MaxIconSize bounds the edge length icons are rendered at.
const MaxIconSize = 512

// TransformIcon renders the transform icon at size x size pixels. Sizes
// above MaxIconSize are clamped; zero or less gives the native 64x64.
func TransformIcon(size int) image.Image {
	src := pixmapImage(transformPixmap, transformPalette)
	size = min(size, MaxIconSize)
	if size <= 0 || size == src.Bounds().Dx() {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
