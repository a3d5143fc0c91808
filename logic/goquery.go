package logic

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// IndexLister reads a directory listing page (nginx/apache autoindex style) and returns its file links.
type IndexLister struct {
	indexURL string
	client   *http.Client
}

func NewIndexLister(indexURL string) *IndexLister {
	return &IndexLister{
		indexURL: indexURL,
		client:   &http.Client{Timeout: time.Minute},
	}
}

func (l *IndexLister) ListObjects(ctx context.Context) ([]RemoteObject, error) {
	base, err := url.Parse(l.indexURL)
	if err != nil {
		return nil, err
	}

	doc, err := l.getDocFromUrl(ctx)
	if err != nil {
		return nil, err
	}

	return ExtractObjectsFromDoc(doc, base), nil
}

func (l *IndexLister) getDocFromUrl(ctx context.Context) (*goquery.Document, error) {
	log.Printf("Retrieve index from %s", l.indexURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.indexURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve index: %w", err)
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Print("Unable to close body")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned status : %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// ExtractObjectsFromDoc keeps links to files below base. Parent, sort and directory links are skipped.
func ExtractObjectsFromDoc(doc *goquery.Document, base *url.URL) []RemoteObject {
	var objects []RemoteObject
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") || strings.HasSuffix(href, "/") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host || !strings.HasPrefix(resolved.Path, indexDir(base.Path)) {
			return
		}

		name := path.Base(resolved.Path)
		if name == "." || name == "/" || seen[resolved.String()] {
			return
		}
		seen[resolved.String()] = true

		objects = append(objects, RemoteObject{Name: name, URL: resolved.String()})
	})

	return objects
}

func indexDir(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return path.Dir(p) + "/"
}
