package main

import (
	"FormRecognitionConsole/logic"
	"FormRecognitionConsole/models"
	"FormRecognitionConsole/workers"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func Db() *sql.DB {
	pgUrl := os.Getenv("PG_URL")
	if pgUrl == "" {
		return nil
	}

	db, err := sql.Open("postgres", pgUrl)
	if err != nil {
		log.Fatal(err)
	}

	return db
}

func mustGetenv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("❌ Missing env var: %s", key)
	}
	return value
}

func getenvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, using environment variables")
	}

	recognizer := logic.NewFormRecognizerClient(mustGetenv("FR_ENDPOINT"), mustGetenv("FR_API_KEY"))
	if version := os.Getenv("FR_API_VERSION"); version != "" {
		recognizer.APIVersion = version
	}
	recognizer.PollInterval = time.Duration(getenvInt("FR_POLL_INTERVAL_MS", 1000)) * time.Millisecond
	modelId := mustGetenv("FR_MODEL_ID")

	runId := uuid.NewString()

	sink, err := logic.SinkForMode(os.Getenv("OUTPUT_MODE"))
	if err != nil {
		log.Fatal(err)
	}

	if db := Db(); db != nil {
		defer db.Close()

		archive, err := logic.NewPostgresSink(db, runId)
		if err != nil {
			log.Fatal(err)
		}
		sink = logic.MultiSink{sink, archive}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rl, err := readline.New("> ")
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = rl.Close()
	}()

	pipeline := &workers.Pipeline{
		Recognizer: recognizer,
		ModelId:    modelId,
		Sink:       sink,
		Out:        os.Stdout,
	}

	run(ctx, rl, pipeline, runId, getenvInt("WORKERS", 1))

	logic.WaitForClose(rl, os.Stdout)
}

func run(ctx context.Context, rl logic.LineReader, pipeline *workers.Pipeline, runId string, numWorkers int) {
	session, err := logic.AskSession(rl, os.Stdout)
	if errors.Is(err, logic.ErrUnexpectedInput) {
		fmt.Println("Got unexpected input.")
		return
	}
	if err != nil {
		log.Printf("❌ Unable to read input: %s", err)
		return
	}

	refs, err := listImages(ctx, session)
	if err != nil {
		log.Printf("❌ Unable to list images: %s", err)
		return
	}

	log.Printf("Run %s: %d images, %d workers", runId, len(refs), numWorkers)
	summary := pipeline.Run(ctx, refs, numWorkers)
	logSummary(runId, summary)
}

func listImages(ctx context.Context, session logic.Session) ([]models.ImageRef, error) {
	if session.Mode == logic.ModeLocal {
		return logic.ListLocalImages(session.Source)
	}

	lister, err := logic.NewContainerLister(ctx, session.Source)
	if err != nil {
		return nil, err
	}

	objects, err := lister.ListObjects(ctx)
	if err != nil {
		return nil, err
	}

	return logic.RemoteImageRefs(objects, session.OutputFolder), nil
}

func logSummary(runId string, summary models.BatchSummary) {
	if summary.Failed == 0 && summary.Skipped == 0 {
		log.Printf("✅ Run %s finished: %d/%d images", runId, summary.Succeeded, summary.Total)
		return
	}
	log.Printf("❌ Run %s finished: %d succeeded, %d failed, %d skipped of %d", runId, summary.Succeeded, summary.Failed, summary.Skipped, summary.Total)
}
