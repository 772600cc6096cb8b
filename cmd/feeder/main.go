package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/captionrelay/captionrelay/pkg/caption"
	"github.com/captionrelay/captionrelay/pkg/capture"
	"github.com/captionrelay/captionrelay/pkg/client"
	"github.com/captionrelay/captionrelay/pkg/uploader"
)

// feeder streams a WAV file through the relay the way a live capture
// client would: the file is cut into fixed-duration segments, each
// uploaded as a self-contained chunk, while the push stream prints the
// live English line and confirmed Korean batches.
func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "relay base URL")
		file     = flag.String("file", "", "WAV file to stream (16-bit PCM)")
		segSec   = flag.Float64("segment-sec", 3.0, "segment length in seconds")
		realtime = flag.Bool("realtime", false, "pace frames at recording speed")
		format   = flag.String("export", "txt", "export format after completion (txt, srt, docx)")
		debug    = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := Logger.New(*debug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	src, err := newFileSource(raw, *realtime)
	if err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}

	api := client.New(*server)
	sessionID, err := api.Start(ctx)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	fmt.Printf("session %s\n", sessionID)

	events, err := api.Subscribe(ctx, sessionID)
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	coalescer := caption.NewCoalescer(func(line string) {
		if line != "" {
			fmt.Printf("  live | %s\n", line)
		}
	})
	defer coalescer.Stop()
	transcript := caption.NewAccumulator()

	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		for ev := range events {
			switch ev.Name {
			case types.EventENPartial:
				coalescer.AddFragment(ev.TextEN)
			case types.EventKOBatch:
				coalescer.Confirm()
				batch := types.ConfirmedBatch{TextEN: ev.TextEN, TextKO: ev.TextKO}
				if ev.Window != nil {
					batch.T0, batch.T1 = ev.Window.T0, ev.Window.T1
				}
				transcript.Add(batch)
				fmt.Printf("batch | (%.2f-%.2fs) %s\n", batch.T0, batch.T1, batch.TextEN)
				if batch.TextKO != "" {
					fmt.Printf("      | %s\n", batch.TextKO)
				}
			}
		}
	}()

	coordinator := uploader.NewCoordinator(api, sessionID, logger)
	recorder := capture.NewRecorder(src, time.Duration(*segSec*float64(time.Second)), logger)
	if err := recorder.Run(ctx, func(seg capture.Segment) {
		coordinator.Enqueue(ctx, seg)
	}); err != nil {
		log.Fatalf("stream: %v", err)
	}

	// All segments are emitted; wait for every pending upload to be
	// acknowledged before asking for the lifecycle transition.
	settleCtx, settleCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer settleCancel()
	if err := coordinator.Settle(settleCtx); err != nil {
		log.Fatalf("settle uploads: %v", err)
	}
	accepted, skipped, failed := coordinator.Stats()
	fmt.Printf("uploads: %d accepted, %d skipped, %d failed\n", accepted, skipped, failed)

	if err := api.Complete(ctx, sessionID); err != nil {
		log.Fatalf("complete session: %v", err)
	}

	// Give the final forced window a moment to arrive on the stream.
	select {
	case <-watcherDone:
	case <-time.After(5 * time.Second):
	}

	fmt.Printf("confirmed %d batches\n", transcript.Len())

	text, err := api.Transcript(ctx, sessionID)
	if err != nil {
		log.Fatalf("fetch transcript: %v", err)
	}
	fmt.Printf("\n%s\n", text)

	if *format != "" {
		url, err := api.Export(ctx, sessionID, *format)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("export: %s\n", url)
	}
}
