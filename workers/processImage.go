package workers

import (
	"FormRecognitionConsole/logic"
	"FormRecognitionConsole/models"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Pipeline holds what every worker needs to turn an image into a saved report.
type Pipeline struct {
	Recognizer logic.Recognizer
	ModelId    string
	Sink       logic.ReportSink
	Out        io.Writer

	outMu sync.Mutex
}

// Run feeds refs to numWorkers workers and waits for all of them. One worker keeps the images strictly in order.
func (p *Pipeline) Run(ctx context.Context, refs []models.ImageRef, numWorkers int) models.BatchSummary {
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobs := make(chan models.ImageRef)
	results := make(chan models.OcrResponse)

	var wg sync.WaitGroup
	for i := 1; i <= numWorkers; i++ {
		wg.Add(1)
		go p.ProcessImage(ctx, i, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for _, ref := range refs {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- ref:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := models.BatchSummary{Total: len(refs)}
	for res := range results {
		if res.Error != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}
	summary.Skipped = summary.Total - summary.Succeeded - summary.Failed

	return summary
}

func (p *Pipeline) ProcessImage(ctx context.Context, id int, jobs <-chan models.ImageRef, results chan<- models.OcrResponse, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		// cancelled batches drain the queue; those images count as skipped
		if ctx.Err() != nil {
			continue
		}

		log.Printf("⌛ Worker %d handle %s", id, job.Name)

		var forms []models.RecognizedForm
		job, err := logic.InspectLocalImage(job)
		if err == nil {
			if job.Pages > 0 {
				log.Printf("Worker %d: %s has %d pages", id, job.Name, job.Pages)
			}
			forms, err = p.recognize(ctx, job)
		}
		if err == nil {
			err = p.Sink.Save(ctx, job, logic.FormatForms(forms))
		}

		if err != nil {
			log.Printf("❌ Worker %d encounter an error on %s : %s", id, job.Name, err)
		} else {
			p.announce(job.Name)
			log.Printf("✅ Worker %d finished %s", id, job.Name)
		}

		results <- models.OcrResponse{Ref: job, Forms: forms, Error: err}
	}
}

func (p *Pipeline) recognize(ctx context.Context, job models.ImageRef) ([]models.RecognizedForm, error) {
	if job.IsRemote() {
		return p.Recognizer.RecognizeFromURL(ctx, p.ModelId, job.URL)
	}

	file, err := os.Open(job.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.Recognizer.RecognizeFromStream(ctx, p.ModelId, file)
}

func (p *Pipeline) announce(name string) {
	p.outMu.Lock()
	defer p.outMu.Unlock()

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Got Analyzed Result: %s\n", name)
}
