package position

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/banshee-data/movement.trails/internal/trails"
)

// ErrNoTransform is returned when a CSS transform carries no translation
// that can be read.
var ErrNoTransform = errors.New("no usable transform")

var transformRe = regexp.MustCompile(`^\s*(translate3d|translate|matrix3d|matrix)\s*\(([^)]*)\)`)

// ParseTransform reads the position of an element from its computed CSS
// transform. translate(x[, y]), translate3d(x, y, z), matrix(a, b, c, d, e, f)
// and matrix3d(16 values) are understood. Only the first function is used.
func ParseTransform(css string) (trails.Point, error) {
	m := transformRe.FindStringSubmatch(css)
	if m == nil {
		return trails.Point{}, fmt.Errorf("%w: %q", ErrNoTransform, css)
	}
	args, err := parseArgs(m[2])
	if err != nil {
		return trails.Point{}, fmt.Errorf("%w: %v", ErrNoTransform, err)
	}

	switch fn := m[1]; {
	case fn == "translate" && len(args) == 1:
		return trails.Point{X: args[0]}, nil
	case fn == "translate" && len(args) == 2, fn == "translate3d" && len(args) == 3:
		return trails.Point{X: args[0], Y: args[1]}, nil
	case fn == "matrix" && len(args) == 6:
		return trails.Point{X: args[4], Y: args[5]}, nil
	case fn == "matrix3d" && len(args) == 16:
		return trails.Point{X: args[12], Y: args[13]}, nil
	default:
		return trails.Point{}, fmt.Errorf("%w: %s with %d arguments", ErrNoTransform, fn, len(args))
	}
}

// ParseOffset reads an absolutely positioned element's left/top styles.
// A missing value counts as 0; both missing is an error.
func ParseOffset(left, top string) (trails.Point, error) {
	if strings.TrimSpace(left) == "" && strings.TrimSpace(top) == "" {
		return trails.Point{}, fmt.Errorf("%w: no left/top", ErrNoTransform)
	}
	x, err := parseLength(left)
	if err != nil {
		return trails.Point{}, fmt.Errorf("left: %w", err)
	}
	y, err := parseLength(top)
	if err != nil {
		return trails.Point{}, fmt.Errorf("top: %w", err)
	}
	return trails.Point{X: x, Y: y}, nil
}

func parseArgs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := parseLength(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return v, nil
}
