// Command aispeech segments recordings into speech chunks, recognizes them
// against an external back-end, and writes timeline-aligned results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/datadigshawn/aiSpeech-2026/internal/config"
	"github.com/datadigshawn/aiSpeech-2026/internal/pipeline"
	"github.com/datadigshawn/aiSpeech-2026/internal/recognize"
	"github.com/datadigshawn/aiSpeech-2026/internal/report"
	"github.com/datadigshawn/aiSpeech-2026/internal/store"
)

func main() {
	var (
		inPath  string
		inDir   string
		verbose bool
	)

	flag.StringVar(&inPath, "input", "", "Input WAV file path (-i)")
	flag.StringVar(&inPath, "i", "", "Input WAV file path")
	flag.StringVar(&inDir, "input-dir", "", "Directory of WAV files to process")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if inPath == "" && inDir == "" {
		fmt.Fprintln(os.Stderr, "usage: aispeech -input file.wav | -input-dir dir")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Warn("shutdown signal received")
		cancel()
	}()

	opts := []pipeline.Option{}

	if cfg.SocketPath != "" {
		client, err := recognize.Connect(cfg.SocketPath, cfg.Backend)
		if err != nil {
			log.WithError(err).Fatal("connect recognizer")
		}
		defer client.Close()
		opts = append(opts, pipeline.WithRecognizer(client))
	} else {
		log.Info("no recognizer socket configured, running segmentation only")
	}

	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			log.WithError(err).Fatal("open store")
		}
		defer st.Close()
		opts = append(opts, pipeline.WithStore(st))
	}

	p := pipeline.New(cfg, opts...)

	var summaries []*report.Summary
	if inDir != "" {
		summaries, err = p.ProcessDir(ctx, inDir)
	} else {
		var sum *report.Summary
		sum, err = p.Process(ctx, inPath)
		if sum != nil {
			summaries = append(summaries, sum)
		}
	}
	if err != nil {
		log.WithError(err).Fatal("processing failed")
	}

	for _, sum := range summaries {
		log.WithFields(log.Fields{
			"session_id": sum.SessionID,
			"source":     sum.SourceName,
			"status":     sum.Status,
			"segments":   sum.Segments,
			"degraded":   sum.Degraded,
		}).Info("summary")
	}
}
