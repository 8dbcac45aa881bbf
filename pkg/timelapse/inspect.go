package timelapse

import (
	"fmt"
	"io"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// VideoInfo describes the video track of an MP4 file.
type VideoInfo struct {
	Codec     string // sample entry type, e.g. avc1
	Width     int
	Height    int
	Samples   uint32
	Timescale uint32
	Duration  time.Duration
}

// Inspect parses a progressive MP4 and reports its first video track.
func Inspect(r io.ReadSeeker) (VideoInfo, error) {
	f, err := mp4.DecodeFile(r)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	if f.Moov == nil {
		return VideoInfo{}, fmt.Errorf("no moov box found")
	}

	var trak *mp4.TrakBox
	for _, t := range f.Moov.Traks {
		if t.Mdia != nil && t.Mdia.Hdlr != nil && t.Mdia.Hdlr.HandlerType == "vide" {
			trak = t
			break
		}
	}
	if trak == nil {
		return VideoInfo{}, fmt.Errorf("no video track found")
	}

	var info VideoInfo
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		info.Timescale = mdhd.Timescale
		info.Duration = time.Duration(mdhd.Duration) * time.Second / time.Duration(mdhd.Timescale)
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return info, fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz != nil {
		info.Samples = stbl.Stsz.SampleNumber
	}
	if stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				info.Codec = vse.Type()
				info.Width, info.Height = int(vse.Width), int(vse.Height)
				break
			}
		}
	}
	return info, nil
}
