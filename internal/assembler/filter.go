package assembler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FilterGraph builds the filter_complex that normalizes every input to one
// frame size, rate and audio layout, trims each segment to its probed
// duration, applies the boundary fades and concatenates the segments.
//
// Clip i fades in unless it is first and fades out unless it is last.
// A fade never exceeds half of its clip.
func FilterGraph(durations []float64, width, height, fps int, transition float64) string {
	var b strings.Builder
	n := len(durations)

	for i, d := range durations {
		fade := math.Min(transition, d/2)
		if fade < 0 {
			fade = 0
		}
		fadeIn := fade > 0 && i > 0
		fadeOut := fade > 0 && i < n-1

		fmt.Fprintf(&b, "[%d:v]trim=duration=%s,setpts=PTS-STARTPTS,", i, secs(d))
		fmt.Fprintf(&b, "scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=yuv420p",
			width, height, width, height, fps)
		if fadeIn {
			fmt.Fprintf(&b, ",fade=t=in:st=0:d=%s", secs(fade))
		}
		if fadeOut {
			fmt.Fprintf(&b, ",fade=t=out:st=%s:d=%s", secs(d-fade), secs(fade))
		}
		fmt.Fprintf(&b, "[v%d];", i)

		fmt.Fprintf(&b, "[%d:a]aformat=sample_rates=44100:channel_layouts=stereo,apad,atrim=duration=%s,asetpts=PTS-STARTPTS", i, secs(d))
		if fadeIn {
			fmt.Fprintf(&b, ",afade=t=in:st=0:d=%s", secs(fade))
		}
		if fadeOut {
			fmt.Fprintf(&b, ",afade=t=out:st=%s:d=%s", secs(d-fade), secs(fade))
		}
		fmt.Fprintf(&b, "[a%d];", i)
	}

	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[vout][aout]", n)
	return b.String()
}

func secs(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
