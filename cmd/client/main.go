// Command client submits text to a running infographic service and polls the
// status endpoint until the generation finishes, writing the resulting HTML
// to a file. It exercises the same polling state machine the web client uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"infographic-service/internal/models"
	"infographic-service/internal/poller"
)

func main() {
	server := flag.String("server", "http://localhost:8085", "base URL of the infographic service")
	text := flag.String("text", "", "text to turn into an infographic")
	file := flag.String("file", "", "read the text from this file instead of -text")
	mode := flag.String("mode", "", "processing mode: full or summary (default full)")
	size := flag.String("size", "", "output size: 16:9, a4-landscape, a4-portrait, 750 or 1080 (default 16:9)")
	out := flag.String("out", "infographic.html", "file to write the generated HTML to")
	flag.Parse()

	content := *text
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read input file: %v", err)
		}
		content = string(data)
	}
	if content == "" {
		fmt.Println("Usage: client -text \"...\" [-mode summary] [-size a4-portrait] [-out result.html]")
		fmt.Println("       client -file notes.txt -size 750")
		os.Exit(1)
	}

	req := models.GenerateInfographicRequest{
		Content: content,
		Mode:    *mode,
		Size:    *size,
	}

	// Ctrl-C abandons polling; the server finishes the task regardless and
	// the printed task id can be checked again later
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := poller.New(poller.NewClient(*server), poller.Config{})
	log.Printf("Submitting %d characters to %s", len(content), *server)

	result, err := p.Run(ctx, req)
	if err != nil {
		log.Fatalf("Polling aborted: %v", err)
	}

	switch result.State {
	case poller.StateCompleted:
		if err := os.WriteFile(*out, []byte(result.HTML), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		log.Printf("Task %s completed, wrote %s", result.TaskID, *out)
	case poller.StateTimedOut:
		log.Printf("Task %s timed out: %s", result.TaskID, result.Message)
		os.Exit(1)
	default:
		log.Printf("Task %s failed: %s", result.TaskID, result.Message)
		os.Exit(1)
	}
}
