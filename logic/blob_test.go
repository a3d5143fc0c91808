package logic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const blobListing = `<?xml version="1.0" encoding="utf-8"?>
<EnumerationResults ServiceEndpoint="http://127.0.0.1/" ContainerName="forms">
  <Blobs>
    <Blob><Name>a.png</Name><Properties><BlobType>BlockBlob</BlobType><Content-Length>10</Content-Length></Properties></Blob>
    <Blob><Name>b.pdf</Name><Properties><BlobType>BlockBlob</BlobType><Content-Length>20</Content-Length></Properties></Blob>
  </Blobs>
  <NextMarker />
</EnumerationResults>`

func TestAzureListerListsBlobsWithSas(t *testing.T) {
	var query string
	mux := http.NewServeMux()
	mux.HandleFunc("/forms", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		values := r.URL.Query()
		if values.Get("restype") != "container" || values.Get("comp") != "list" || values.Get("sig") != "abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("x-ms-version", "2020-10-02")
		_, _ = w.Write([]byte(blobListing))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	lister, err := NewAzureLister(server.URL + "/forms?sv=2020-08-04&sig=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	objects, err := lister.ListObjects(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v (query %q)", err, query)
	}

	if len(objects) != 2 || objects[0].Name != "a.png" || objects[1].Name != "b.pdf" {
		t.Fatalf("unexpected objects %+v", objects)
	}
	for _, object := range objects {
		if !strings.HasPrefix(object.URL, server.URL+"/forms/"+object.Name+"?") {
			t.Errorf("%s: unexpected url %q", object.Name, object.URL)
		}
		if !strings.Contains(object.URL, "sig=abc") {
			t.Errorf("%s: sas token dropped from %q", object.Name, object.URL)
		}
	}
}

const bucketListing = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>forms</Name>
  <Prefix>scans/</Prefix>
  <KeyCount>3</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>scans/</Key><Size>0</Size></Contents>
  <Contents><Key>scans/a.png</Key><Size>10</Size></Contents>
  <Contents><Key>scans/b.jpg</Key><Size>20</Size></Contents>
</ListBucketResult>`

func TestS3ListerPresignsObjects(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	mux := http.NewServeMux()
	mux.HandleFunc("/forms", func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		if values.Get("list-type") != "2" || values.Get("prefix") != "scans/" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !strings.Contains(r.Header.Get("Authorization"), "Credential=AK/") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(bucketListing))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	lister, err := NewS3Lister(context.Background(), "forms", "scans/", S3Config{
		Endpoint:      server.URL,
		Region:        "us-east-1",
		AccessKey:     "AK",
		SecretKey:     "SK",
		PresignExpiry: time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	objects, err := lister.ListObjects(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(objects) != 2 || objects[0].Name != "scans/a.png" || objects[1].Name != "scans/b.jpg" {
		t.Fatalf("directory key should be skipped: %+v", objects)
	}
	for _, object := range objects {
		if !strings.HasPrefix(object.URL, server.URL+"/forms/"+object.Name+"?") {
			t.Errorf("%s: unexpected url %q", object.Name, object.URL)
		}
		if !strings.Contains(object.URL, "X-Amz-Signature=") || !strings.Contains(object.URL, "X-Amz-Expires=60") {
			t.Errorf("%s: url is not presigned: %q", object.Name, object.URL)
		}
	}

	refs := RemoteImageRefs(objects, "out")
	if refs[0].OutputPath != filepath.Join("out", "a.txt") || refs[1].OutputPath != filepath.Join("out", "b.txt") {
		t.Fatalf("unexpected output paths %q %q", refs[0].OutputPath, refs[1].OutputPath)
	}
}

func TestNewS3ListerNeedsBucket(t *testing.T) {
	if _, err := NewS3Lister(context.Background(), "", "scans/", S3Config{}); err == nil {
		t.Fatal("expected an error for an empty bucket")
	}
}
