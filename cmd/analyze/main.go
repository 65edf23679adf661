// Command analyze runs the full detection pipeline over a video file
// offline: frames are extracted with ffmpeg, fed through the pose
// estimator and the form metrics printed when playback ends.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"

	"runform-backend/internal/biomech"
	"runform-backend/internal/engine"
	"runform-backend/internal/overlay"
	"runform-backend/internal/pose"
	"runform-backend/internal/source"
	"runform-backend/internal/utils"
)

// progressSource wraps the frame sequence so the bar advances on every
// pulled frame, pose or not.
type progressSource struct {
	*source.VideoFrames
	bar *pb.ProgressBar
}

func (p *progressSource) Frame() (*pose.Frame, error) {
	frame, err := p.VideoFrames.Frame()
	if err == nil {
		p.bar.Increment()
	}
	return frame, err
}

func main() {
	videoPath := flag.String("video", "", "path to the video file to analyze")
	modelURL := flag.String("model", "http://localhost:5000", "pose model server URL")
	fps := flag.Int("fps", 30, "frame extraction rate")
	ffmpegPath := flag.String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	flag.Parse()

	if *videoPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	frameDir, err := os.MkdirTemp("", "runform-frames-")
	if err != nil {
		log.Fatalf("failed to create frame directory: %v", err)
	}
	defer os.RemoveAll(frameDir)

	log.Printf("Extracting frames from %s at %d fps", *videoPath, *fps)
	if err := utils.ExtractFrames(*videoPath, frameDir, *fps, *ffmpegPath); err != nil {
		log.Fatalf("frame extraction failed: %v", err)
	}

	clip, err := source.NewVideoFrames(frameDir, float64(*fps))
	if err != nil {
		log.Fatalf("failed to open extracted frames: %v", err)
	}
	clip.Play()

	frames, _ := filepath.Glob(filepath.Join(frameDir, "*.jpg"))
	bar := pb.StartNew(len(frames))
	src := &progressSource{VideoFrames: clip, bar: bar}

	width, height := clip.Dimensions()
	canvas := overlay.NewImageCanvas(width, height)

	var leanSamples, cadenceSamples []float64
	eng := engine.New(engine.Config{
		Estimator: pose.NewHTTPEstimator(*modelURL, 30*time.Second),
		Source:    src,
		Canvas:    canvas,
		Mode:      engine.ModeVideo,
		// Frame timestamps are synthesized from the extraction rate, so
		// the loop can run as fast as the model server allows.
		FrameInterval: time.Millisecond,
		OnSnapshot: func(snap biomech.Snapshot) {
			leanSamples = append(leanSamples, float64(snap.TorsoLeanDeg))
			if snap.CadenceSpm > 0 {
				cadenceSamples = append(cadenceSamples, float64(snap.CadenceSpm))
			}
		},
	})

	if err := eng.Start(context.Background()); err != nil {
		log.Fatalf("failed to start analysis: %v", err)
	}
	for eng.State() == engine.StateRunning {
		time.Sleep(100 * time.Millisecond)
	}
	bar.Finish()

	snap := eng.Snapshot()
	out, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Printf("Final metrics:\n%s\n", out)

	avgLean, stdLean := utils.CalculateStats(leanSamples)
	avgCadence, _ := utils.CalculateStats(cadenceSamples)
	fmt.Printf("Summary over %d sampled frames:\n", len(leanSamples))
	fmt.Printf("  torso lean: %.1f deg avg (std %.1f)\n", avgLean, stdLean)
	fmt.Printf("  cadence:    %.0f spm avg\n", avgCadence)
}
