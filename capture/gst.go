package capture

import (
	"fmt"
	"log"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// GstSource captures from the default camera through a GStreamer
// pipeline:
//
//	autovideosrc -> videoconvert -> videoscale -> capsfilter -> appsink
//
// The capsfilter pins BGRx at the requested size so the appsink hands
// us frames in the layout the renderer consumes directly. Samples
// arrive on GStreamer's streaming thread and are copied into the
// mailbox; the call loop polls the mailbox at its own pace.
type GstSource struct {
	pipeline *gst.Pipeline
	sink     *app.Sink
	w, h     int
	box      Mailbox
}

// NewGstSource creates an uninitialized camera source.
func NewGstSource() *GstSource {
	return &GstSource{}
}

func (s *GstSource) Init(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("capture: invalid camera size %dx%d", w, h)
	}
	s.w, s.h = w, h

	// Safe to call multiple times
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("capture: create pipeline: %w", err)
	}

	src, err := gst.NewElement("autovideosrc")
	if err != nil {
		return fmt.Errorf("capture: create autovideosrc: %w", err)
	}

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("capture: create videoconvert: %w", err)
	}

	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return fmt.Errorf("capture: create videoscale: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return fmt.Errorf("capture: create capsfilter: %w", err)
	}
	capsStr := fmt.Sprintf("video/x-raw,format=BGRx,width=%d,height=%d", w, h)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	sink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("capture: create appsink: %w", err)
	}
	sink.SetProperty("sync", false)    // No clock sync, always the freshest frame
	sink.SetProperty("max-buffers", 1) // Keep only the latest
	sink.SetProperty("drop", true)

	pipeline.AddMany(src, convert, scale, capsfilter, sink.Element)
	if err := gst.ElementLinkMany(src, convert, scale, capsfilter, sink.Element); err != nil {
		return fmt.Errorf("capture: link pipeline: %w", err)
	}

	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: s.onNewSample,
	})

	s.pipeline = pipeline
	s.sink = sink
	return nil
}

// onNewSample runs on GStreamer's streaming thread. It copies the
// buffer into the mailbox and returns; no rendering happens here.
func (s *GstSource) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		// A single bad frame should not tear down the pipeline
		log.Printf("capture: failed to pull sample, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		log.Printf("capture: sample without buffer, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) < s.w*s.h*4 {
		buffer.Unmap()
		log.Printf("capture: short buffer %d bytes, want %d", len(data), s.w*s.h*4)
		return gst.FlowOK
	}

	s.box.Publish(s.w, s.h, data[:s.w*s.h*4])
	buffer.Unmap()

	return gst.FlowOK
}

func (s *GstSource) Start() error {
	if s.pipeline == nil {
		return fmt.Errorf("capture: camera not initialized")
	}
	if err := s.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("capture: start pipeline: %w", err)
	}
	return nil
}

func (s *GstSource) Frame(dst *Frame) bool {
	return s.box.Take(dst)
}

func (s *GstSource) Stop() {
	if s.pipeline == nil {
		return
	}
	if err := s.pipeline.SetState(gst.StateNull); err != nil {
		log.Printf("capture: stop pipeline: %v", err)
	}
	s.pipeline = nil
	s.sink = nil
}
