package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelLayout names an arrangement of audio channels.
type ChannelLayout string

// ChannelLayoutInfo maps a layout name to what the engine needs.
type ChannelLayoutInfo struct {
	FFmpegName string
	Channels   int
}

var channelLayouts = map[ChannelLayout]ChannelLayoutInfo{
	"MONO":              {"mono", 1},
	"STEREO":            {"stereo", 2},
	"2POINT1":           {"2.1", 3},
	"2_1":               {"3.0(back)", 3},
	"SURROUND":          {"3.0", 3},
	"3POINT1":           {"3.1", 4},
	"4POINT0":           {"4.0", 4},
	"4POINT1":           {"4.1", 5},
	"2_2":               {"quad(side)", 4},
	"QUAD":              {"quad", 4},
	"5POINT0":           {"5.0(side)", 5},
	"5POINT1":           {"5.1(side)", 6},
	"5POINT0_BACK":      {"5.0", 5},
	"5POINT1_BACK":      {"5.1", 6},
	"6POINT0":           {"6.0", 6},
	"6POINT0_FRONT":     {"6.0(front)", 6},
	"HEXAGONAL":         {"hexagonal", 6},
	"6POINT1":           {"6.1", 7},
	"6POINT1_BACK":      {"6.1(back)", 7},
	"6POINT1_FRONT":     {"6.1(front)", 7},
	"7POINT0":           {"7.0", 7},
	"7POINT0_FRONT":     {"7.0(front)", 7},
	"7POINT1":           {"7.1", 8},
	"7POINT1_WIDE":      {"7.1(wide-side)", 8},
	"7POINT1_WIDE_BACK": {"7.1(wide)", 8},
	"OCTAGONAL":         {"octagonal", 8},
	"HEXADECAGONAL":     {"hexadecagonal", 16},
	"STEREO_DOWNMIX":    {"downmix", 2},
}

// LookupChannelLayout returns the engine details for a layout name.
func LookupChannelLayout(l ChannelLayout) (ChannelLayoutInfo, bool) {
	info, ok := channelLayouts[ChannelLayout(strings.ToUpper(string(l)))]
	return info, ok
}

var frameSizes = map[string][2]int{
	"240p":  {426, 240},
	"360p":  {640, 360},
	"480p":  {854, 480},
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"1440p": {2560, 1440},
	"2160p": {3840, 2160},
	"4k":    {3840, 2160},
}

// ParseFrameSize resolves a frame size token ("720p") or an explicit
// "WxH" size to pixel dimensions.
func ParseFrameSize(s string) (int, int, error) {
	if dims, ok := frameSizes[strings.ToLower(s)]; ok {
		return dims[0], dims[1], nil
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("unknown frame size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("frame size %q has an invalid width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("frame size %q has an invalid height", s)
	}
	return width, height, nil
}
