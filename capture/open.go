package capture

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Open maps a source spec to a Source and prepares it at the requested
// capture size. Recognized specs:
//
//	camera    default camera via GStreamer
//	gradient  drifting diagonal gradient
//	noise     random static
//	bouncer   bouncing block
//	<path>    a PNG or JPEG file, played as a still
func Open(spec string, w, h int) (Source, error) {
	var src Source
	switch strings.ToLower(spec) {
	case "", "camera", "gst":
		src = NewGstSource()
	case "gradient":
		src = NewGradient()
	case "noise":
		src = NewNoise(time.Now().UnixNano() ^ rand.Int63())
	case "bouncer":
		src = NewBouncer()
	default:
		if !strings.ContainsAny(spec, "./") {
			return nil, fmt.Errorf("capture: unknown source %q", spec)
		}
		src = NewImageSource(spec)
	}
	if err := src.Init(w, h); err != nil {
		return nil, err
	}
	return src, nil
}
