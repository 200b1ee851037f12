package storage

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"sort"

	"wardrobe/internal/domain/wardrobe"
)

const (
	defaultClusters   = 5
	defaultIterations = 100
	defaultEpsilon    = 0.2
	defaultSampleSide = 64
	defaultColorSeed  = 42
)

// ColorExtractor finds dominant colours with k-means over a downscaled copy
// of the image. Results are deterministic for a given image.
type ColorExtractor struct {
	clusters   int
	iterations int
	epsilon    float64
	sampleSide int
	seed       uint64
}

var _ wardrobe.ColorExtractor = (*ColorExtractor)(nil)

// NewColorExtractor returns an extractor with k=5, 100 iterations and epsilon 0.2
func NewColorExtractor() *ColorExtractor {
	return &ColorExtractor{
		clusters:   defaultClusters,
		iterations: defaultIterations,
		epsilon:    defaultEpsilon,
		sampleSide: defaultSampleSide,
		seed:       defaultColorSeed,
	}
}

type rgb [3]float64

// DominantColors returns #rrggbb cluster centres ordered by cluster size.
// Any failure yields wardrobe.FallbackColors.
func (e *ColorExtractor) DominantColors(ctx context.Context, img image.Image) []string {
	if img == nil || img.Bounds().Empty() {
		return fallbackColors()
	}

	pixels := samplePixels(downscale(img, e.sampleSide))
	if len(pixels) == 0 {
		return fallbackColors()
	}

	rng := rand.New(rand.NewPCG(e.seed, e.seed))
	centres := seedCentres(pixels, min(e.clusters, len(pixels)), rng)
	counts, ok := e.cluster(ctx, pixels, centres)
	if !ok {
		return fallbackColors()
	}

	order := make([]int, len(centres))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })

	colors := make([]string, 0, len(centres))
	for _, i := range order {
		if counts[i] == 0 {
			continue
		}
		colors = append(colors, toHex(centres[i]))
	}
	if len(colors) == 0 {
		return fallbackColors()
	}
	return colors
}

// cluster runs Lloyd iterations in place and returns the final cluster sizes.
// It stops once no centre moves more than epsilon.
func (e *ColorExtractor) cluster(ctx context.Context, pixels []rgb, centres []rgb) ([]int, bool) {
	k := len(centres)
	assign := make([]int, len(pixels))
	counts := make([]int, k)
	sums := make([]rgb, k)

	for iter := 0; iter < e.iterations; iter++ {
		if ctx.Err() != nil {
			return nil, false
		}

		clear(counts)
		clear(sums)
		for i, p := range pixels {
			c := nearest(p, centres)
			assign[i] = c
			counts[c]++
			for d := 0; d < 3; d++ {
				sums[c][d] += p[d]
			}
		}

		shift := 0.0
		for c := range centres {
			// Empty clusters keep their previous centre
			if counts[c] == 0 {
				continue
			}
			var next rgb
			for d := 0; d < 3; d++ {
				next[d] = sums[c][d] / float64(counts[c])
			}
			shift = math.Max(shift, math.Sqrt(distance(next, centres[c])))
			centres[c] = next
		}

		if shift < e.epsilon {
			break
		}
	}

	// Final sizes against the converged centres
	clear(counts)
	for _, p := range pixels {
		counts[nearest(p, centres)]++
	}
	return counts, true
}

// seedCentres picks initial centres with k-means++. It returns fewer than k
// centres when the image has fewer distinct colours.
func seedCentres(pixels []rgb, k int, rng *rand.Rand) []rgb {
	centres := make([]rgb, 0, k)
	centres = append(centres, pixels[rng.IntN(len(pixels))])

	dist := make([]float64, len(pixels))
	for len(centres) < k {
		total := 0.0
		for i, p := range pixels {
			dist[i] = distance(p, centres[nearest(p, centres)])
			total += dist[i]
		}
		if total == 0 {
			break
		}

		target := rng.Float64() * total
		chosen := len(pixels) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 && d > 0 {
				chosen = i
				break
			}
		}
		centres = append(centres, pixels[chosen])
	}
	return centres
}

func samplePixels(img *image.NRGBA) []rgb {
	b := img.Bounds()
	pixels := make([]rgb, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			// Fully transparent pixels carry no colour
			if c.A == 0 {
				continue
			}
			pixels = append(pixels, rgb{float64(c.R), float64(c.G), float64(c.B)})
		}
	}
	return pixels
}

func nearest(p rgb, centres []rgb) int {
	best, bestDist := 0, math.MaxFloat64
	for i, c := range centres {
		if d := distance(p, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distance(a, b rgb) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

func toHex(c rgb) string {
	channel := func(v float64) uint8 {
		return uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c[0]), channel(c[1]), channel(c[2]))
}

func fallbackColors() []string {
	return append([]string(nil), wardrobe.FallbackColors...)
}
